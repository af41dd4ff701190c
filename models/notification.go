package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationKind identifies the event behind a notification
type NotificationKind string

// Notification kinds
const (
	NotificationEmergencyReported  NotificationKind = "emergency_reported"
	NotificationVolunteerJoined    NotificationKind = "volunteer_joined"
	NotificationVolunteerCompleted NotificationKind = "volunteer_completed"
	NotificationCompletionApproved NotificationKind = "completion_approved"
	NotificationCustom             NotificationKind = "custom"
)

// Notification holds the structure for the notifications collection in mongo
type Notification struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	EmergencyID string             `json:"emergencyId,omitempty" bson:"emergencyId,omitempty"`
	Kind        NotificationKind   `json:"type" bson:"kind"`
	Message     string             `json:"message" bson:"message"`
	Read        bool               `json:"read" bson:"read"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// MarkReadRequest is the body of the mark-all-read endpoint. An empty Ids
// list marks every notification of the caller.
type MarkReadRequest struct {
	Ids []string `json:"ids"`
}

// CreateNotificationRequest is the body of an ad hoc notification
type CreateNotificationRequest struct {
	Message     string `json:"message"`
	EmergencyID string `json:"emergencyId"`
}

// UnreadCount is the body of the unread counter endpoint
type UnreadCount struct {
	Unread int64 `json:"unread"`
}
