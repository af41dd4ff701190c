package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
)

// EmergencyService owns emergency reports: creation, queries and the
// volunteer and completion workflow.
type EmergencyService struct {
	DB                     databases.EmergencyDatabase
	Ledger                 *Ledger
	Notifier               *Notifier
	IncentivePerCompletion int64
	locks                  *KeyedLocker
	now                    func() time.Time
}

// NewEmergencyService wires the emergency store to the ledger and notifier.
// Every approved volunteer is credited incentivePerCompletion coins.
func NewEmergencyService(db databases.EmergencyDatabase, ledger *Ledger, notifier *Notifier, incentivePerCompletion int64) *EmergencyService {
	return &EmergencyService{
		DB:                     db,
		Ledger:                 ledger,
		Notifier:               notifier,
		IncentivePerCompletion: incentivePerCompletion,
		locks:                  NewKeyedLocker(),
		now:                    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new report by reporterID in the Pending state and notifies
// the other users.
func (s *EmergencyService) Create(ctx context.Context, reporterID string, req models.EmergencyRequest, media []models.MediaItem) (*models.Emergency, error) {
	emergencyType := strings.TrimSpace(req.Type)
	if emergencyType == "" {
		return nil, validationError("type is required")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, validationError("description is required")
	}
	location := models.ParseLocation(req.Location)
	if location.IsZero() {
		return nil, validationError("location is required")
	}

	severity := models.DefaultSeverity(emergencyType)
	if strings.TrimSpace(req.Severity) != "" {
		var ok bool
		if severity, ok = models.ParseSeverity(req.Severity); !ok {
			return nil, validationError("unknown severity %q", req.Severity)
		}
	}

	now := s.now()
	reportedAt := now
	if req.Time != nil && !req.Time.IsZero() {
		reportedAt = req.Time.UTC()
	}
	if media == nil {
		media = []models.MediaItem{}
	}

	e := &models.Emergency{
		Type:             emergencyType,
		CustomType:       strings.TrimSpace(req.CustomType),
		Severity:         severity,
		Priority:         models.DerivePriority(emergencyType, severity),
		Description:      description,
		Location:         location,
		Time:             reportedAt,
		Tags:             models.MergeTags(emergencyType, req.Tags),
		EmergencyNeeds:   req.EmergencyNeeds,
		Contact:          req.Contact,
		EmergencyContact: req.EmergencyContact,
		Media:            media,
		Status:           models.StatusPending,
		ReportedBy:       reporterID,
		Volunteers:       []models.VolunteerAssignment{},
		History:          []models.HistoryEntry{{Action: models.ActionReported, UserID: reporterID, Timestamp: now}},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	id, err := s.DB.InsertOne(ctx, *e)
	if err != nil {
		return nil, err
	}
	e.ID = id
	e.Version = 1

	s.Notifier.EmergencyReported(ctx, e)
	return e, nil
}

// Get returns one emergency with its full history.
func (s *EmergencyService) Get(ctx context.Context, id string) (*models.Emergency, error) {
	oid, err := parseEmergencyID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, oid)
}

// ListAll returns every emergency, newest first.
func (s *EmergencyService) ListAll(ctx context.Context) ([]models.Emergency, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// ListActive returns the Pending and In Progress emergencies matching f.
func (s *EmergencyService) ListActive(ctx context.Context, f models.ActiveFilter) ([]models.Emergency, error) {
	filter := bson.M{"status": bson.M{"$in": []models.EmergencyStatus{models.StatusPending, models.StatusInProgress}}}
	emergencies, err := s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return FilterActive(emergencies, f), nil
}

// ListByReporter returns the reports filed by userID, newest first.
func (s *EmergencyService) ListByReporter(ctx context.Context, userID string) ([]models.Emergency, error) {
	return s.find(ctx, bson.M{"reportedBy": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// AwaitingApproval returns emergencies with completed volunteer work that
// the reporter has not approved yet.
func (s *EmergencyService) AwaitingApproval(ctx context.Context) ([]models.Emergency, error) {
	filter := bson.M{
		"status":            models.StatusInProgress,
		"victimApproval":    false,
		"volunteers.status": models.AssignmentCompleted,
	}
	return s.find(ctx, filter)
}

// DashboardStats counts active and resolved emergencies and the distinct
// volunteers who ever joined one.
func (s *EmergencyService) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.DB.CountDocuments(gctx, bson.M{"status": bson.M{"$in": []models.EmergencyStatus{models.StatusPending, models.StatusInProgress}}})
		stats.ActiveEmergencies = n
		return err
	})
	g.Go(func() error {
		n, err := s.DB.CountDocuments(gctx, bson.M{"status": models.StatusCompleted})
		stats.ResolvedEmergencies = n
		return err
	})
	g.Go(func() error {
		ids, err := s.DB.Distinct(gctx, "volunteers.userId", bson.M{})
		stats.TotalContributors = int64(len(ids))
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}

// VolunteerHistory lists every emergency userID joined with the coins earned
// for it, newest first.
func (s *EmergencyService) VolunteerHistory(ctx context.Context, userID string) ([]models.VolunteerHistoryEntry, error) {
	var (
		emergencies []models.Emergency
		earned      map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emergencies, err = s.find(gctx, bson.M{"volunteers.userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		return err
	})
	g.Go(func() error {
		var err error
		earned, err = s.Ledger.Earned(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]models.VolunteerHistoryEntry, 0, len(emergencies))
	for i := range emergencies {
		e := &emergencies[i]
		a, _ := e.Assignment(userID)
		if a == nil {
			continue
		}
		rows = append(rows, models.VolunteerHistoryEntry{
			EmergencyID:      e.ID.Hex(),
			Type:             e.DisplayType(),
			Status:           a.Status,
			EmergencyStatus:  e.DisplayStatus(),
			JoinedAt:         a.JoinedAt,
			CompletedAt:      a.CompletedAt,
			IncentivesEarned: earned[e.ID.Hex()],
		})
	}
	return rows, nil
}

func (s *EmergencyService) load(ctx context.Context, oid primitive.ObjectID) (*models.Emergency, error) {
	e, err := s.DB.FindOne(ctx, bson.M{"_id": oid})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EmergencyService) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Emergency, error) {
	emergencies, err := s.DB.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if emergencies == nil {
		emergencies = []models.Emergency{}
	}
	return emergencies, nil
}

func parseEmergencyID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}
