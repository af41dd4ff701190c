package databases

// go generate: mockery --name EmergencyDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/relief-api/models"
)

const emergencyName = "emergencies"

// EmergencyDatabase contains the methods to use with the emergency database
type EmergencyDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Emergency, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Emergency, error)
	InsertOne(ctx context.Context, emergency models.Emergency) (primitive.ObjectID, error)
	SaveWorkflow(ctx context.Context, emergency *models.Emergency) error
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
}

type emergencyDatabase struct {
	db DatabaseHelper
}

// NewEmergencyDatabase initializes a new instance of emergency database with the provided db connection
func NewEmergencyDatabase(db DatabaseHelper) EmergencyDatabase {
	return &emergencyDatabase{
		db: db,
	}
}

func (e *emergencyDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Emergency, error) {
	emergency := &models.Emergency{}
	err := e.db.Collection(emergencyName).FindOne(ctx, filter, opts...).Decode(&emergency)
	if err != nil {
		return nil, err
	}
	return emergency, nil
}

func (e *emergencyDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Emergency, error) {
	var emergencies []models.Emergency
	cursor, err := e.db.Collection(emergencyName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&emergencies)
	if err != nil {
		return nil, err
	}
	return emergencies, nil
}

// InsertOne stores a new emergency at version 1 and returns its generated id.
func (e *emergencyDatabase) InsertOne(ctx context.Context, emergency models.Emergency) (primitive.ObjectID, error) {
	if emergency.ID.IsZero() {
		emergency.ID = primitive.NewObjectID()
	}
	emergency.Version = 1
	_, err := e.db.Collection(emergencyName).InsertOne(ctx, emergency)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return emergency.ID, nil
}

// SaveWorkflow writes the volunteer, approval, status and history fields of
// the emergency, guarded by the version it was read at. On success the
// in-memory version is advanced; when another writer has already bumped the
// version ErrVersionConflict is returned and nothing is written.
func (e *emergencyDatabase) SaveWorkflow(ctx context.Context, emergency *models.Emergency) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": emergency.ID, "version": emergency.Version}
	update := bson.M{"$set": bson.M{
		"volunteers":     emergency.Volunteers,
		"victimApproval": emergency.VictimApproval,
		"status":         emergency.Status,
		"history":        emergency.History,
		"updatedAt":      now,
		"version":        emergency.Version + 1,
	}}
	res, err := e.db.Collection(emergencyName).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res == nil || res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	emergency.Version++
	emergency.UpdatedAt = now
	return nil
}

func (e *emergencyDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return e.db.Collection(emergencyName).CountDocuments(ctx, filter, opts...)
}

func (e *emergencyDatabase) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	return e.db.Collection(emergencyName).Distinct(ctx, fieldName, filter)
}
