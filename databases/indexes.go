package databases

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// indexPlan lists the indexes each collection needs. The unique index on
// incentives backs the one-credit-per-completion rule.
var indexPlan = map[string][]mongo.IndexModel{
	emergencyName: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "reportedBy", Value: 1}}},
		{Keys: bson.D{{Key: "volunteers.userId", Value: 1}}},
	},
	incentiveName: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "emergencyId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	transactionName: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	notificationName: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	userName: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "account", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	},
	donationName: {
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
	},
}

// EnsureIndexes creates every index in the plan. Creating an index that
// already exists is a no-op in mongo, so this is safe to run on each deploy.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	for collection, models := range indexPlan {
		if err := db.Collection(collection).CreateIndexes(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		zap.S().Infow("ensured indexes", "collection", collection, "count", len(models))
	}
	return nil
}
