package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
)

// fakeEmergencyDB keeps emergencies in memory and enforces the version guard
// of SaveWorkflow like the mongo implementation does.
type fakeEmergencyDB struct {
	mu         sync.Mutex
	docs       map[primitive.ObjectID]models.Emergency
	order      []primitive.ObjectID
	saves      int
	beforeSave func(e *models.Emergency)
}

func newFakeEmergencyDB() *fakeEmergencyDB {
	return &fakeEmergencyDB{docs: make(map[primitive.ObjectID]models.Emergency)}
}

func cloneEmergency(e models.Emergency) models.Emergency {
	e.Volunteers = append([]models.VolunteerAssignment{}, e.Volunteers...)
	e.History = append([]models.HistoryEntry{}, e.History...)
	e.Tags = append([]string{}, e.Tags...)
	e.Media = append([]models.MediaItem{}, e.Media...)
	return e
}

func (f *fakeEmergencyDB) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := filter.(bson.M)["_id"].(primitive.ObjectID)
	e, ok := f.docs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	c := cloneEmergency(e)
	return &c, nil
}

func (f *fakeEmergencyDB) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Emergency
	for _, id := range f.order {
		e := f.docs[id]
		if matchEmergency(e, filter.(bson.M)) {
			out = append(out, cloneEmergency(e))
		}
	}
	return out, nil
}

func (f *fakeEmergencyDB) InsertOne(ctx context.Context, e models.Emergency) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.Version = 1
	f.docs[e.ID] = cloneEmergency(e)
	f.order = append(f.order, e.ID)
	return e.ID, nil
}

func (f *fakeEmergencyDB) SaveWorkflow(ctx context.Context, e *models.Emergency) error {
	if f.beforeSave != nil {
		f.beforeSave(e)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.docs[e.ID]
	if !ok || stored.Version != e.Version {
		return databases.ErrVersionConflict
	}
	f.saves++
	e.Version++
	e.UpdatedAt = time.Now().UTC()
	f.docs[e.ID] = cloneEmergency(*e)
	return nil
}

// bump simulates a write from another process.
func (f *fakeEmergencyDB) bump(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.docs[id]
	e.Version++
	f.docs[id] = e
}

func (f *fakeEmergencyDB) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	found, _ := f.Find(ctx, filter)
	return int64(len(found)), nil
}

func (f *fakeEmergencyDB) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	if fieldName != "volunteers.userId" {
		return nil, fmt.Errorf("unsupported distinct field %s", fieldName)
	}
	found, _ := f.Find(ctx, filter)
	seen := map[string]bool{}
	var out []interface{}
	for _, e := range found {
		for _, v := range e.Volunteers {
			if !seen[v.UserID] {
				seen[v.UserID] = true
				out = append(out, v.UserID)
			}
		}
	}
	return out, nil
}

func matchEmergency(e models.Emergency, filter bson.M) bool {
	for key, want := range filter {
		switch key {
		case "status":
			if in, ok := want.(bson.M); ok {
				matched := false
				for _, s := range in["$in"].([]models.EmergencyStatus) {
					matched = matched || e.Status == s
				}
				if !matched {
					return false
				}
			} else if e.Status != want.(models.EmergencyStatus) {
				return false
			}
		case "reportedBy":
			if e.ReportedBy != want.(string) {
				return false
			}
		case "victimApproval":
			if e.VictimApproval != want.(bool) {
				return false
			}
		case "volunteers.userId":
			if a, _ := e.Assignment(want.(string)); a == nil {
				return false
			}
		case "volunteers.status":
			if !e.HasCompletedVolunteer() {
				return false
			}
		case "updatedAt":
			if e.UpdatedAt.Before(want.(bson.M)["$gte"].(time.Time)) {
				return false
			}
		default:
			panic("unsupported filter key " + key)
		}
	}
	return true
}

type fakeIncentiveDB struct {
	mu      sync.Mutex
	entries map[string]models.IncentiveEntry
	fail    error
}

func newFakeIncentiveDB() *fakeIncentiveDB {
	return &fakeIncentiveDB{entries: make(map[string]models.IncentiveEntry)}
}

func (f *fakeIncentiveDB) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.IncentiveEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID := filter.(bson.M)["userId"].(string)
	var out []models.IncentiveEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeIncentiveDB) InsertIfAbsent(ctx context.Context, entry models.IncentiveEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	key := entry.UserID + "/" + entry.EmergencyID
	if _, ok := f.entries[key]; ok {
		return false, nil
	}
	f.entries[key] = entry
	return true, nil
}

func (f *fakeIncentiveDB) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeCoinAccountDB struct {
	mu          sync.Mutex
	coins       map[string]int64
	credited    map[string]bool
	failApply   int
	beforeDebit func()
}

func newFakeCoinAccountDB() *fakeCoinAccountDB {
	return &fakeCoinAccountDB{coins: make(map[string]int64), credited: make(map[string]bool)}
}

func (f *fakeCoinAccountDB) FindOne(ctx context.Context, userID string) (*models.CoinAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.CoinAccount{UserID: userID, Coins: f.coins[userID]}, nil
}

// Increment seeds a balance directly.
func (f *fakeCoinAccountDB) Increment(ctx context.Context, userID string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coins[userID] += delta
	return nil
}

func (f *fakeCoinAccountDB) ApplyCredit(ctx context.Context, userID, emergencyID string, amount int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failApply > 0 {
		f.failApply--
		return false, errors.New("write concern timeout")
	}
	key := userID + "/" + emergencyID
	if f.credited[key] {
		return false, nil
	}
	f.credited[key] = true
	f.coins[userID] += amount
	return true, nil
}

func (f *fakeCoinAccountDB) CompareAndDebit(ctx context.Context, userID string, expected int64, debit int64) (bool, error) {
	if f.beforeDebit != nil {
		f.beforeDebit()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coins[userID] != expected {
		return false, nil
	}
	f.coins[userID] -= debit
	return true, nil
}

func (f *fakeCoinAccountDB) balance(userID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coins[userID]
}

type fakeTransactionDB struct {
	mu  sync.Mutex
	txs []models.Transaction
}

func (f *fakeTransactionDB) InsertOne(ctx context.Context, tx models.Transaction) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = append(f.txs, tx)
	return tx.ID, nil
}

func (f *fakeTransactionDB) FindByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, tx := range f.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakePayoutDB struct {
	mu      sync.Mutex
	details map[string]models.PayoutDetails
}

func newFakePayoutDB() *fakePayoutDB {
	return &fakePayoutDB{details: make(map[string]models.PayoutDetails)}
}

func (f *fakePayoutDB) FindOne(ctx context.Context, userID string) (*models.PayoutDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.details[userID]
	d.UserID = userID
	return &d, nil
}

func (f *fakePayoutDB) Upsert(ctx context.Context, userID string, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.details[userID]
	for k, v := range fields {
		switch k {
		case "accountNumber":
			d.AccountNumber = v.(string)
		case "ifscCode":
			d.IFSCCode = v.(string)
		case "bankName":
			d.BankName = v.(string)
		case "upiId":
			d.UpiID = v.(string)
		case "walletAddress":
			d.WalletAddress = v.(string)
		}
	}
	f.details[userID] = d
	return nil
}

type fakeNotificationDB struct {
	mu    sync.Mutex
	notes []models.Notification
	fail  error
}

func (f *fakeNotificationDB) InsertMany(ctx context.Context, notes []models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.notes = append(f.notes, notes...)
	return nil
}

func (f *fakeNotificationDB) FindByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.notes) - 1; i >= 0; i-- {
		n := f.notes[i]
		if n.UserID == userID && !(unreadOnly && n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationDB) MarkRead(ctx context.Context, userID string, ids []primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.notes {
		for _, id := range ids {
			if f.notes[i].ID == id && f.notes[i].UserID == userID && !f.notes[i].Read {
				f.notes[i].Read = true
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeNotificationDB) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.notes {
		if f.notes[i].UserID == userID && !f.notes[i].Read {
			f.notes[i].Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationDB) CountUnread(ctx context.Context, userID string) (int64, error) {
	unread, _ := f.FindByUser(ctx, userID, true)
	return int64(len(unread)), nil
}

func (f *fakeNotificationDB) forUser(userID string) []models.Notification {
	notes, _ := f.FindByUser(context.Background(), userID, false)
	return notes
}

type fakeUserDB struct {
	mu    sync.Mutex
	users []models.User
	// beforeInsert runs ahead of the next InsertOne, standing in for a
	// concurrent request.
	beforeInsert func()
}

func (f *fakeUserDB) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		for key, want := range filter.(bson.M) {
			switch key {
			case "_id":
				if u.ID == want.(primitive.ObjectID) {
					c := u
					return &c, nil
				}
			case "email":
				if u.Email == want.(string) {
					c := u
					return &c, nil
				}
			case "account":
				if u.Account == want.(string) {
					c := u
					return &c, nil
				}
			}
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserDB) InsertOne(ctx context.Context, user models.User) (primitive.ObjectID, error) {
	if hook := f.beforeInsert; hook != nil {
		f.beforeInsert = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taken(user, primitive.NilObjectID) {
		return primitive.NilObjectID, databases.ErrDuplicateKey
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users = append(f.users, user)
	return user.ID, nil
}

func (f *fakeUserDB) UpdateOne(ctx context.Context, id primitive.ObjectID, update interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID != id {
			continue
		}
		u := f.users[i]
		doc := update.(bson.M)
		if set, ok := doc["$set"].(bson.M); ok {
			for key, v := range set {
				switch key {
				case "name":
					u.Name = v.(string)
				case "mobile":
					u.Mobile = v.(string)
				case "account":
					u.Account = v.(string)
				}
			}
		}
		if unset, ok := doc["$unset"].(bson.M); ok {
			if _, ok := unset["account"]; ok {
				u.Account = ""
			}
		}
		if f.taken(u, id) {
			return databases.ErrDuplicateKey
		}
		f.users[i] = u
		return nil
	}
	return mongo.ErrNoDocuments
}

// taken mirrors the sparse unique indexes on email and account.
func (f *fakeUserDB) taken(user models.User, self primitive.ObjectID) bool {
	for _, u := range f.users {
		if u.ID == self {
			continue
		}
		if (user.Email != "" && u.Email == user.Email) || (user.Account != "" && u.Account == user.Account) {
			return true
		}
	}
	return false
}

func (f *fakeUserDB) ListIDs(ctx context.Context, excludeID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, u := range f.users {
		if u.ID.Hex() != excludeID {
			ids = append(ids, u.ID.Hex())
		}
	}
	return ids, nil
}

func (f *fakeUserDB) add(name, email string) string {
	id, _ := f.InsertOne(context.Background(), models.User{Name: name, Email: email})
	return id.Hex()
}

type recordingChannel struct {
	mu        sync.Mutex
	delivered []models.Notification
	fail      error
}

func (r *recordingChannel) Name() string { return "recording" }

func (r *recordingChannel) Deliver(ctx context.Context, notes []models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, notes...)
	return r.fail
}

func (r *recordingChannel) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delivered)
}

// testEnv wires every service to in-memory stores.
type testEnv struct {
	emergencies   *fakeEmergencyDB
	incentives    *fakeIncentiveDB
	accounts      *fakeCoinAccountDB
	transactions  *fakeTransactionDB
	payouts       *fakePayoutDB
	notifications *fakeNotificationDB
	users         *fakeUserDB
	channel       *recordingChannel

	ledger   *Ledger
	notifier *Notifier
	service  *EmergencyService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		emergencies:   newFakeEmergencyDB(),
		incentives:    newFakeIncentiveDB(),
		accounts:      newFakeCoinAccountDB(),
		transactions:  &fakeTransactionDB{},
		payouts:       newFakePayoutDB(),
		notifications: &fakeNotificationDB{},
		users:         &fakeUserDB{},
		channel:       &recordingChannel{},
	}
	env.ledger = NewLedger(env.incentives, env.accounts, env.transactions, NewPayoutService(env.payouts))
	env.notifier = NewNotifier(env.notifications, env.users, env.channel)
	env.service = NewEmergencyService(env.emergencies, env.ledger, env.notifier, 500)
	return env
}

func (env *testEnv) report(reporterID string, req models.EmergencyRequest) *models.Emergency {
	e, err := env.service.Create(context.Background(), reporterID, req, nil)
	if err != nil {
		panic(err)
	}
	return e
}

func fireReport() models.EmergencyRequest {
	return models.EmergencyRequest{
		Type:        models.TypeFire,
		Severity:    "High",
		Description: "Warehouse fire spreading to the next block",
		Location:    "Sector 21, Chandigarh",
	}
}
