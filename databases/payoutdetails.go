package databases

// go generate: mockery --name PayoutDetailsDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/relief-api/models"
)

const payoutDetailsName = "payout_details"

// PayoutDetailsDatabase contains the methods to use with the payout details database
type PayoutDetailsDatabase interface {
	FindOne(ctx context.Context, userID string) (*models.PayoutDetails, error)
	Upsert(ctx context.Context, userID string, fields bson.M) error
}

type payoutDetailsDatabase struct {
	db DatabaseHelper
}

// NewPayoutDetailsDatabase initializes a new instance of payout details database with the provided db connection
func NewPayoutDetailsDatabase(db DatabaseHelper) PayoutDetailsDatabase {
	return &payoutDetailsDatabase{
		db: db,
	}
}

// FindOne returns the saved details, or an empty record when none exist.
func (p *payoutDetailsDatabase) FindOne(ctx context.Context, userID string) (*models.PayoutDetails, error) {
	details := &models.PayoutDetails{}
	err := p.db.Collection(payoutDetailsName).FindOne(ctx, bson.M{"_id": userID}).Decode(&details)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.PayoutDetails{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (p *payoutDetailsDatabase) Upsert(ctx context.Context, userID string, fields bson.M) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	_, err := p.db.Collection(payoutDetailsName).UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	return err
}
