package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/api/handlers"
	"github.com/linesmerrill/relief-api/databases/mocks"
	"github.com/linesmerrill/relief-api/models"
	"github.com/linesmerrill/relief-api/services"
)

const (
	reporterID  = "64b7f0c2a1b2c3d4e5f60001"
	volunteerID = "64b7f0c2a1b2c3d4e5f60002"
)

type envelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(api.WithSession(r.Context(), services.Session{
		UserID:    userID,
		Email:     userID + "@example.org",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	return rr
}

// emergencyDeps are the mocked stores behind an Emergency handler
type emergencyDeps struct {
	edb  *mocks.EmergencyDatabase
	udb  *mocks.UserDatabase
	ndb  *mocks.NotificationDatabase
	idb  *mocks.IncentiveDatabase
	cadb *mocks.CoinAccountDatabase
	tdb  *mocks.TransactionDatabase
}

func newEmergencyDeps() *emergencyDeps {
	return &emergencyDeps{
		edb:  &mocks.EmergencyDatabase{},
		udb:  &mocks.UserDatabase{},
		ndb:  &mocks.NotificationDatabase{},
		idb:  &mocks.IncentiveDatabase{},
		cadb: &mocks.CoinAccountDatabase{},
		tdb:  &mocks.TransactionDatabase{},
	}
}

func (d *emergencyDeps) handler(store services.MediaStore) handlers.Emergency {
	ledger := services.NewLedger(d.idb, d.cadb, d.tdb, nil)
	notifier := services.NewNotifier(d.ndb, d.udb)
	return handlers.Emergency{
		Service: services.NewEmergencyService(d.edb, ledger, notifier, 500),
		Media:   services.NewMediaService(store),
	}
}

func pendingEmergency() *models.Emergency {
	now := time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC)
	return &models.Emergency{
		ID:          primitive.NewObjectID(),
		Type:        models.TypeFlood,
		Severity:    models.SeverityHigh,
		Priority:    models.PriorityNormal,
		Description: "Water entering ground floor homes",
		Location:    models.NamedPlace("Kochi, Kerala"),
		Status:      models.StatusPending,
		ReportedBy:  reporterID,
		Volunteers:  []models.VolunteerAssignment{},
		History:     []models.HistoryEntry{{Action: models.ActionReported, UserID: reporterID, Timestamp: now}},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
