package databases

// go generate: mockery --name CoinAccountDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/relief-api/models"
)

const coinAccountName = "coin_accounts"

// CoinAccountDatabase contains the methods to use with the coin account database
type CoinAccountDatabase interface {
	FindOne(ctx context.Context, userID string) (*models.CoinAccount, error)
	ApplyCredit(ctx context.Context, userID, emergencyID string, amount int64) (bool, error)
	CompareAndDebit(ctx context.Context, userID string, expected int64, debit int64) (bool, error)
}

type coinAccountDatabase struct {
	db DatabaseHelper
}

// NewCoinAccountDatabase initializes a new instance of coin account database with the provided db connection
func NewCoinAccountDatabase(db DatabaseHelper) CoinAccountDatabase {
	return &coinAccountDatabase{
		db: db,
	}
}

// FindOne returns the user's account. A user who has never earned coins has
// an implicit zero balance.
func (c *coinAccountDatabase) FindOne(ctx context.Context, userID string) (*models.CoinAccount, error) {
	account := &models.CoinAccount{}
	err := c.db.Collection(coinAccountName).FindOne(ctx, bson.M{"_id": userID}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.CoinAccount{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ApplyCredit adds amount to the balance once per emergency. The emergency id
// is recorded on the account in the same update, so it reports false without
// changing anything when the credit was already applied.
func (c *coinAccountDatabase) ApplyCredit(ctx context.Context, userID, emergencyID string, amount int64) (bool, error) {
	filter := bson.M{"_id": userID, "credited": bson.M{"$ne": emergencyID}}
	update := bson.M{
		"$inc":      bson.M{"coins": amount},
		"$addToSet": bson.M{"credited": emergencyID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := c.db.Collection(coinAccountName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// the account exists and already lists the emergency
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res != nil && (res.ModifiedCount == 1 || res.UpsertedCount == 1), nil
}

// CompareAndDebit subtracts debit only if the stored balance still equals
// expected. It reports whether the debit was applied.
func (c *coinAccountDatabase) CompareAndDebit(ctx context.Context, userID string, expected int64, debit int64) (bool, error) {
	filter := bson.M{"_id": userID, "coins": expected}
	update := bson.M{
		"$inc": bson.M{"coins": -debit},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := c.db.Collection(coinAccountName).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res != nil && res.MatchedCount == 1, nil
}
