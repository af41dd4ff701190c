package handlers

import (
	"net/http"
	"strconv"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/models"
	"github.com/linesmerrill/relief-api/services"
)

// Notification exposes the caller's notification feed
type Notification struct {
	Notifier *services.Notifier
}

// NotificationsHandler lists the caller's notifications, newest first.
// ?unread=true limits the list to unread ones.
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notes, err := n.Notifier.List(ctx, s.UserID, unreadOnly)
	if err != nil {
		writeError(w, "failed to get notifications", err)
		return
	}
	config.WriteData(w, http.StatusOK, notes)
}

// CreateNotificationHandler stores an ad hoc notification for the caller
func (n Notification) CreateNotificationHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req models.CreateNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to create notification", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	note, err := n.Notifier.Create(ctx, s.UserID, req.EmergencyID, req.Message)
	if err != nil {
		writeError(w, "failed to create notification", err)
		return
	}
	config.WriteData(w, http.StatusCreated, note)
}

// MarkAllReadHandler marks the listed ids, or every notification when none
// are given, as read
func (n Notification) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var req models.MarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "failed to mark notifications read", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	modified, err := n.Notifier.MarkRead(ctx, s.UserID, req.Ids)
	if err != nil {
		writeError(w, "failed to mark notifications read", err)
		return
	}
	config.WriteData(w, http.StatusOK, map[string]int64{"modified": modified})
}

// UnreadCountHandler returns how many notifications the caller has not read
func (n Notification) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := n.Notifier.UnreadCount(ctx, s.UserID)
	if err != nil {
		writeError(w, "failed to count notifications", err)
		return
	}
	config.WriteData(w, http.StatusOK, models.UnreadCount{Unread: count})
}
