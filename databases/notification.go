package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/relief-api/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification database
type NotificationDatabase interface {
	InsertMany(ctx context.Context, notifications []models.Notification) error
	FindByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) InsertMany(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	docs := make([]interface{}, len(notifications))
	for i := range notifications {
		docs[i] = notifications[i]
	}
	return n.db.Collection(notificationName).InsertMany(ctx, docs)
}

// FindByUser returns the user's notifications, newest first.
func (n *notificationDatabase) FindByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := n.db.Collection(notificationName).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	err = cursor.Decode(&notifications)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags the given notifications as read. Ids that belong to another
// user are ignored.
func (n *notificationDatabase) MarkRead(ctx context.Context, userID string, ids []primitive.ObjectID) (int64, error) {
	filter := bson.M{"userId": userID, "_id": bson.M{"$in": ids}}
	res, err := n.db.Collection(notificationName).UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (n *notificationDatabase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"userId": userID, "read": false}
	res, err := n.db.Collection(notificationName).UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (n *notificationDatabase) CountUnread(ctx context.Context, userID string) (int64, error) {
	return n.db.Collection(notificationName).CountDocuments(ctx, bson.M{"userId": userID, "read": false})
}
