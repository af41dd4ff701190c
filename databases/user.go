package databases

// go generate: mockery --name UserDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/relief-api/models"
)

const userName = "users"

// UserDatabase contains the methods to use with the user database
type UserDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.User, error)
	InsertOne(ctx context.Context, user models.User) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, id primitive.ObjectID, update interface{}) error
	ListIDs(ctx context.Context, excludeID string) ([]string, error)
}

type userDatabase struct {
	db DatabaseHelper
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{
		db: db,
	}
}

func (u *userDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.User, error) {
	user := &models.User{}
	err := u.db.Collection(userName).FindOne(ctx, filter, opts...).Decode(&user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userDatabase) InsertOne(ctx context.Context, user models.User) (primitive.ObjectID, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := u.db.Collection(userName).InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrDuplicateKey
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

// UpdateOne applies update to the user with the given id. It returns
// mongo.ErrNoDocuments when no such user exists and ErrDuplicateKey when the
// change collides with another user's email or account.
func (u *userDatabase) UpdateOne(ctx context.Context, id primitive.ObjectID, update interface{}) error {
	res, err := u.db.Collection(userName).UpdateOne(ctx, bson.M{"_id": id}, update)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return err
	}
	if res == nil || res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListIDs returns the hex id of every registered user except excludeID.
func (u *userDatabase) ListIDs(ctx context.Context, excludeID string) ([]string, error) {
	filter := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	var users []models.User
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := u.db.Collection(userName).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&users)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID.Hex())
	}
	return ids, nil
}
