package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
)

const deliveryTimeout = 5 * time.Second

// Channel delivers notifications that have already been stored.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, notifications []models.Notification) error
}

// Notifier records notifications for emergency transitions and hands them to
// the configured delivery channels. Failures are logged and never returned to
// the operation that triggered them.
type Notifier struct {
	DB       databases.NotificationDatabase
	UDB      databases.UserDatabase
	channels []Channel
	now      func() time.Time
}

// NewNotifier returns a notifier writing to db and fanning out to channels
func NewNotifier(db databases.NotificationDatabase, udb databases.UserDatabase, channels ...Channel) *Notifier {
	return &Notifier{
		DB:       db,
		UDB:      udb,
		channels: channels,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddChannel registers another delivery channel.
func (n *Notifier) AddChannel(c Channel) {
	n.channels = append(n.channels, c)
}

// EmergencyReported notifies every registered user except the reporter.
func (n *Notifier) EmergencyReported(ctx context.Context, e *models.Emergency) {
	recipients, err := n.UDB.ListIDs(ctx, e.ReportedBy)
	if err != nil {
		zap.S().Errorw("failed to list notification recipients", "emergencyId", e.ID.Hex(), "error", err)
		return
	}
	msg := fmt.Sprintf("New %s emergency reported at %s", strings.ToLower(e.DisplayType()), e.Location)
	notes := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		notes = append(notes, n.build(userID, e, models.NotificationEmergencyReported, msg))
	}
	n.emit(ctx, notes)
}

// VolunteerJoined tells the reporter someone is on the way.
func (n *Notifier) VolunteerJoined(ctx context.Context, e *models.Emergency, volunteerID string) {
	msg := fmt.Sprintf("A volunteer has joined your %s emergency", strings.ToLower(e.DisplayType()))
	n.emit(ctx, []models.Notification{n.build(e.ReportedBy, e, models.NotificationVolunteerJoined, msg)})
}

// VolunteerCompleted asks the reporter to review and approve the work.
func (n *Notifier) VolunteerCompleted(ctx context.Context, e *models.Emergency, volunteerID string) {
	msg := fmt.Sprintf("A volunteer marked your %s emergency as completed and is awaiting your approval", strings.ToLower(e.DisplayType()))
	n.emit(ctx, []models.Notification{n.build(e.ReportedBy, e, models.NotificationVolunteerCompleted, msg)})
}

// CompletionApproved tells each credited volunteer the reporter signed off.
func (n *Notifier) CompletionApproved(ctx context.Context, e *models.Emergency, volunteerIDs []string, amount int64) {
	msg := fmt.Sprintf("The %s emergency you helped with was approved. %d coins were added to your balance", strings.ToLower(e.DisplayType()), amount)
	notes := make([]models.Notification, 0, len(volunteerIDs))
	for _, userID := range volunteerIDs {
		notes = append(notes, n.build(userID, e, models.NotificationCompletionApproved, msg))
	}
	n.emit(ctx, notes)
}

// Create stores an ad hoc notification for userID. Unlike the transition
// notifications a storage failure is returned to the caller.
func (n *Notifier) Create(ctx context.Context, userID, emergencyID, message string) (models.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Notification{}, validationError("message is required")
	}
	note := models.Notification{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		EmergencyID: emergencyID,
		Kind:        models.NotificationCustom,
		Message:     message,
		CreatedAt:   n.now(),
	}
	if err := n.DB.InsertMany(ctx, []models.Notification{note}); err != nil {
		return models.Notification{}, err
	}
	n.deliver(ctx, []models.Notification{note})
	return note, nil
}

// List returns the user's notifications, newest first.
func (n *Notifier) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	notes, err := n.DB.FindByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	return notes, nil
}

// MarkRead marks the given ids as read, or every unread notification of the
// user when ids is empty. Marking twice is harmless.
func (n *Notifier) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return n.DB.MarkAllRead(ctx, userID)
	}
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return 0, validationError("invalid notification id %q", id)
		}
		oids = append(oids, oid)
	}
	return n.DB.MarkRead(ctx, userID, oids)
}

// UnreadCount returns how many notifications the user has not read yet.
func (n *Notifier) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return n.DB.CountUnread(ctx, userID)
}

func (n *Notifier) build(userID string, e *models.Emergency, kind models.NotificationKind, msg string) models.Notification {
	return models.Notification{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		EmergencyID: e.ID.Hex(),
		Kind:        kind,
		Message:     msg,
		CreatedAt:   n.now(),
	}
}

func (n *Notifier) emit(ctx context.Context, notes []models.Notification) {
	if len(notes) == 0 {
		return
	}
	if err := n.DB.InsertMany(ctx, notes); err != nil {
		zap.S().Errorw("failed to store notifications", "kind", notes[0].Kind, "count", len(notes), "error", err)
		return
	}
	n.deliver(ctx, notes)
}

func (n *Notifier) deliver(ctx context.Context, notes []models.Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()
	for _, c := range n.channels {
		if err := c.Deliver(ctx, notes); err != nil {
			zap.S().Warnw("notification delivery failed", "channel", c.Name(), "count", len(notes), "error", err)
		}
	}
}
