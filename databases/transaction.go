package databases

// go generate: mockery --name TransactionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/relief-api/models"
)

const transactionName = "transactions"

// TransactionDatabase contains the methods to use with the coin transaction database
type TransactionDatabase interface {
	InsertOne(ctx context.Context, tx models.Transaction) (primitive.ObjectID, error)
	FindByUser(ctx context.Context, userID string) ([]models.Transaction, error)
}

type transactionDatabase struct {
	db DatabaseHelper
}

// NewTransactionDatabase initializes a new instance of transaction database with the provided db connection
func NewTransactionDatabase(db DatabaseHelper) TransactionDatabase {
	return &transactionDatabase{
		db: db,
	}
}

func (t *transactionDatabase) InsertOne(ctx context.Context, tx models.Transaction) (primitive.ObjectID, error) {
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	_, err := t.db.Collection(transactionName).InsertOne(ctx, tx)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return tx.ID, nil
}

// FindByUser returns the user's transactions, newest first.
func (t *transactionDatabase) FindByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := t.db.Collection(transactionName).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&txs)
	if err != nil {
		return nil, err
	}
	return txs, nil
}
