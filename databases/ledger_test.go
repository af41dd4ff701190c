package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/databases/mocks"
	"github.com/linesmerrill/relief-api/models"
)

func TestIncentiveDatabase_InsertIfAbsent(t *testing.T) {
	tests := []struct {
		name    string
		result  *mongo.UpdateResult
		err     error
		created bool
	}{
		{"fresh insert", &mongo.UpdateResult{UpsertedCount: 1}, nil, true},
		{"already recorded", &mongo.UpdateResult{MatchedCount: 1}, nil, false},
		{"driver error", nil, errors.New("mocked-error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbHelper := &mocks.DatabaseHelper{}
			collectionHelper := &mocks.CollectionHelper{}
			collectionHelper.On("UpdateOne", context.Background(), bson.M{"userId": "u1", "emergencyId": "e1"}, mock.Anything, mock.Anything).
				Return(tt.result, tt.err)
			dbHelper.On("Collection", "incentives").Return(collectionHelper)

			created, err := databases.NewIncentiveDatabase(dbHelper).InsertIfAbsent(context.Background(), models.IncentiveEntry{
				UserID: "u1", EmergencyID: "e1", IncentivesEarned: 500,
			})
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.created, created)
		})
	}
}

func TestCoinAccountDatabase_FindOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	missing := &mocks.SingleResultHelper{}
	found := &mocks.SingleResultHelper{}

	missing.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	found.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CoinAccount)
		(*arg).UserID = "u2"
		(*arg).Coins = 1500
	})
	collectionHelper.On("FindOne", context.Background(), bson.M{"_id": "u1"}).Return(missing)
	collectionHelper.On("FindOne", context.Background(), bson.M{"_id": "u2"}).Return(found)
	dbHelper.On("Collection", "coin_accounts").Return(collectionHelper)

	accounts := databases.NewCoinAccountDatabase(dbHelper)

	account, err := accounts.FindOne(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, &models.CoinAccount{UserID: "u1"}, account)

	account, err = accounts.FindOne(context.Background(), "u2")
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), account.Coins)
}

func TestCoinAccountDatabase_CompareAndDebit(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	collectionHelper.On("UpdateOne", context.Background(), bson.M{"_id": "u1", "coins": int64(1500)}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	collectionHelper.On("UpdateOne", context.Background(), bson.M{"_id": "u1", "coins": int64(900)}, mock.Anything).
		Return(&mongo.UpdateResult{}, nil)
	dbHelper.On("Collection", "coin_accounts").Return(collectionHelper)

	accounts := databases.NewCoinAccountDatabase(dbHelper)

	ok, err := accounts.CompareAndDebit(context.Background(), "u1", 1500, 1000)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = accounts.CompareAndDebit(context.Background(), "u1", 900, 1000)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestNotificationDatabase_InsertManySkipsEmpty(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}

	err := databases.NewNotificationDatabase(dbHelper).InsertMany(context.Background(), nil)
	assert.NoError(t, err)
	dbHelper.AssertNotCalled(t, "Collection", mock.Anything)
}

func TestNotificationDatabase_MarkAllRead(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	collectionHelper.On("UpdateMany", context.Background(), bson.M{"userId": "u1", "read": false}, bson.M{"$set": bson.M{"read": true}}).
		Return(&mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 2}, nil)
	dbHelper.On("Collection", "notifications").Return(collectionHelper)

	n, err := databases.NewNotificationDatabase(dbHelper).MarkAllRead(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestEnsureIndexes(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	collectionHelper.On("CreateIndexes", mock.Anything, mock.Anything).Return(nil)
	dbHelper.On("Collection", mock.Anything).Return(collectionHelper)

	assert.NoError(t, databases.EnsureIndexes(context.Background(), dbHelper))
	dbHelper.AssertCalled(t, "Collection", "incentives")
	dbHelper.AssertCalled(t, "Collection", "emergencies")
}

func TestEnsureIndexesError(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	collectionHelper.On("CreateIndexes", mock.Anything, mock.Anything).Return(errors.New("mocked-error"))
	dbHelper.On("Collection", mock.Anything).Return(collectionHelper)

	err := databases.EnsureIndexes(context.Background(), dbHelper)
	assert.ErrorContains(t, err, "mocked-error")
}

func TestCoinAccountDatabase_ApplyCredit(t *testing.T) {
	tests := []struct {
		name    string
		result  *mongo.UpdateResult
		err     error
		applied bool
		wantErr error
	}{
		{"existing account", &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil, true, nil},
		{"new account", &mongo.UpdateResult{UpsertedCount: 1}, nil, true, nil},
		{"already credited", nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, false, nil},
		{"driver error", nil, errors.New("mocked-error"), false, errors.New("mocked-error")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbHelper := &mocks.DatabaseHelper{}
			collectionHelper := &mocks.CollectionHelper{}
			collectionHelper.On("UpdateOne", context.Background(), bson.M{"_id": "u1", "credited": bson.M{"$ne": "e1"}}, mock.Anything, mock.Anything).
				Return(tt.result, tt.err)
			dbHelper.On("Collection", "coin_accounts").Return(collectionHelper)

			applied, err := databases.NewCoinAccountDatabase(dbHelper).ApplyCredit(context.Background(), "u1", "e1", 500)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.applied, applied)
		})
	}
}
