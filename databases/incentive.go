package databases

// go generate: mockery --name IncentiveDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/relief-api/models"
)

const incentiveName = "incentives"

// IncentiveDatabase contains the methods to use with the incentive database
type IncentiveDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.IncentiveEntry, error)
	InsertIfAbsent(ctx context.Context, entry models.IncentiveEntry) (bool, error)
}

type incentiveDatabase struct {
	db DatabaseHelper
}

// NewIncentiveDatabase initializes a new instance of incentive database with the provided db connection
func NewIncentiveDatabase(db DatabaseHelper) IncentiveDatabase {
	return &incentiveDatabase{
		db: db,
	}
}

func (i *incentiveDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.IncentiveEntry, error) {
	var entries []models.IncentiveEntry
	cursor, err := i.db.Collection(incentiveName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// InsertIfAbsent records the entry keyed by (userId, emergencyId). It reports
// true only when this call created the entry; a second call for the same pair
// leaves the stored entry untouched and reports false.
func (i *incentiveDatabase) InsertIfAbsent(ctx context.Context, entry models.IncentiveEntry) (bool, error) {
	filter := bson.M{"userId": entry.UserID, "emergencyId": entry.EmergencyID}
	update := bson.M{"$setOnInsert": bson.M{
		"userId":           entry.UserID,
		"emergencyId":      entry.EmergencyID,
		"incentivesEarned": entry.IncentivesEarned,
		"completedAt":      entry.CompletedAt,
	}}
	res, err := i.db.Collection(incentiveName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res != nil && res.UpsertedCount == 1, nil
}
