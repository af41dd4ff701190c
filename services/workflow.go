package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/models"
)

const workflowAttempts = 5

// Volunteer adds userID to the emergency. The first volunteer moves a
// Pending emergency to In Progress.
func (s *EmergencyService) Volunteer(ctx context.Context, id, userID string) (*models.Emergency, error) {
	e, err := s.mutate(ctx, id, func(e *models.Emergency) error {
		if e.ReportedBy == userID {
			return fmt.Errorf("%w: you cannot volunteer for your own report", ErrForbidden)
		}
		if a, _ := e.Assignment(userID); a != nil {
			return ErrAlreadyAssigned
		}
		if !e.Status.Active() {
			return ErrNotPending
		}
		now := s.now()
		e.Volunteers = append(e.Volunteers, models.VolunteerAssignment{
			UserID:   userID,
			Status:   models.AssignmentPending,
			JoinedAt: now,
		})
		if e.Status == models.StatusPending {
			e.Status = models.StatusInProgress
		}
		e.History = append(e.History, models.HistoryEntry{Action: models.ActionVolunteered, UserID: userID, Timestamp: now})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Notifier.VolunteerJoined(ctx, e, userID)
	return e, nil
}

// MarkCompleted records that userID finished their part. The emergency
// itself stays In Progress until the reporter approves.
func (s *EmergencyService) MarkCompleted(ctx context.Context, id, userID string) (*models.Emergency, error) {
	e, err := s.mutate(ctx, id, func(e *models.Emergency) error {
		a, i := e.Assignment(userID)
		if a == nil {
			return fmt.Errorf("%w: you have not volunteered for this emergency", ErrForbidden)
		}
		if a.Status == models.AssignmentCompleted {
			return fmt.Errorf("%w: you already marked this emergency as completed", ErrInvalidState)
		}
		if e.Status == models.StatusCompleted {
			return fmt.Errorf("%w: emergency is already completed", ErrInvalidState)
		}
		now := s.now()
		e.Volunteers[i].Status = models.AssignmentCompleted
		e.Volunteers[i].CompletedAt = &now
		e.History = append(e.History, models.HistoryEntry{Action: models.ActionMarkedCompleted, UserID: userID, Timestamp: now})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Notifier.VolunteerCompleted(ctx, e, userID)
	return e, nil
}

// Approve lets the reporter sign off completed work. The emergency becomes
// Completed and every volunteer who marked completion is credited once.
func (s *EmergencyService) Approve(ctx context.Context, id, approverID string) (*models.Emergency, error) {
	e, err := s.mutate(ctx, id, func(e *models.Emergency) error {
		if e.ReportedBy != approverID {
			return fmt.Errorf("%w: only the reporter can approve completion", ErrForbidden)
		}
		if e.VictimApproval || e.Status == models.StatusCompleted {
			return fmt.Errorf("%w: completion was already approved", ErrInvalidState)
		}
		if !e.HasCompletedVolunteer() {
			return fmt.Errorf("%w: no volunteer has marked this emergency as completed", ErrInvalidState)
		}
		e.VictimApproval = true
		e.Status = models.StatusCompleted
		e.History = append(e.History, models.HistoryEntry{Action: models.ActionApprovedCompletion, UserID: approverID, Timestamp: s.now()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	credited := s.creditVolunteers(ctx, e)
	s.Notifier.CompletionApproved(ctx, e, credited, s.IncentivePerCompletion)
	return e, nil
}

// ReconcileCredits re-applies credits for emergencies completed since the
// given time. Credits are idempotent, so only credits whose entry or balance
// update was lost to an earlier failure change anything. It returns how many
// balances were raised.
func (s *EmergencyService) ReconcileCredits(ctx context.Context, since time.Time) (int, error) {
	emergencies, err := s.find(ctx, bson.M{
		"status":    models.StatusCompleted,
		"updatedAt": bson.M{"$gte": since},
	})
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range emergencies {
		for _, v := range emergencies[i].Volunteers {
			if v.Status != models.AssignmentCompleted {
				continue
			}
			created, err := s.Ledger.Credit(ctx, v.UserID, emergencies[i].ID.Hex(), s.IncentivePerCompletion)
			if err != nil {
				return total, err
			}
			if created {
				total++
			}
		}
	}
	return total, nil
}

func (s *EmergencyService) creditVolunteers(ctx context.Context, e *models.Emergency) []string {
	var credited []string
	for _, v := range e.Volunteers {
		if v.Status != models.AssignmentCompleted {
			continue
		}
		if _, err := s.Ledger.Credit(ctx, v.UserID, e.ID.Hex(), s.IncentivePerCompletion); err != nil {
			zap.S().Errorw("failed to credit volunteer", "emergencyId", e.ID.Hex(), "userId", v.UserID, "error", err)
			continue
		}
		credited = append(credited, v.UserID)
	}
	return credited
}

// mutate applies fn to a fresh copy of the emergency and saves it guarded by
// the version it was read at. Writers in this process are serialized per
// emergency; a conflict with another process re-reads and re-applies fn.
func (s *EmergencyService) mutate(ctx context.Context, id string, fn func(e *models.Emergency) error) (*models.Emergency, error) {
	oid, err := parseEmergencyID(id)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(oid.Hex())
	defer unlock()

	for attempt := 0; attempt < workflowAttempts; attempt++ {
		e, err := s.load(ctx, oid)
		if err != nil {
			return nil, err
		}
		if err := fn(e); err != nil {
			return nil, err
		}
		err = s.DB.SaveWorkflow(ctx, e)
		if errors.Is(err, ErrVersionConflict) {
			zap.S().Debugw("emergency changed during update, retrying", "emergencyId", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, ErrVersionConflict
}
