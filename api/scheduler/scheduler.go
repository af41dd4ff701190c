package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/models"
	"github.com/linesmerrill/relief-api/services"
)

const (
	jobTimeout        = 5 * time.Minute
	reconcileSchedule = "@hourly"
	reconcileWindow   = 24 * time.Hour
)

// Scheduler runs the periodic background jobs: approval reminders to
// reporters and the incentive credit reconciliation.
type Scheduler struct {
	cron        *cron.Cron
	Emergencies *services.EmergencyService
	UDB         databases.UserDatabase
	Mailer      services.Mailer
	schedule    string
	now         func() time.Time
}

// NewScheduler creates a scheduler sending reminders on the given cron
// schedule. A nil mailer disables the reminders.
func NewScheduler(emergencies *services.EmergencyService, udb databases.UserDatabase, mailer services.Mailer, schedule string) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		Emergencies: emergencies,
		UDB:         udb,
		Mailer:      mailer,
		schedule:    schedule,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and begins running them
func (s *Scheduler) Start() error {
	if s.Mailer != nil {
		if _, err := s.cron.AddFunc(s.schedule, s.runApprovalReminders); err != nil {
			return fmt.Errorf("invalid reminder schedule %q: %w", s.schedule, err)
		}
	} else {
		zap.S().Warn("no mailer configured, approval reminders are disabled")
	}
	if _, err := s.cron.AddFunc(reconcileSchedule, s.runReconcile); err != nil {
		return err
	}

	s.cron.Start()
	zap.S().Infow("scheduler started", "reminders", s.schedule, "reconcile", reconcileSchedule)
	return nil
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

func (s *Scheduler) runApprovalReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := s.SendApprovalReminders(ctx)
	if err != nil {
		zap.S().Errorw("approval reminder job failed", "sent", sent, "error", err)
		return
	}
	zap.S().Infow("approval reminder job complete", "sent", sent)
}

func (s *Scheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	credited, err := s.Emergencies.ReconcileCredits(ctx, s.now().Add(-reconcileWindow))
	if err != nil {
		zap.S().Errorw("credit reconciliation failed", "credited", credited, "error", err)
		return
	}
	if credited > 0 {
		zap.S().Warnw("credit reconciliation restored missing credits", "credited", credited)
	}
}

// SendApprovalReminders emails the reporter of every emergency whose
// completed work still waits for approval. A failed recipient is logged and
// skipped. It returns how many emails were sent.
func (s *Scheduler) SendApprovalReminders(ctx context.Context) (int, error) {
	emergencies, err := s.Emergencies.AwaitingApproval(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range emergencies {
		e := &emergencies[i]
		user, err := s.reporter(ctx, e.ReportedBy)
		if err != nil {
			zap.S().Warnw("failed to look up reporter", "emergencyId", e.ID.Hex(), "userId", e.ReportedBy, "error", err)
			continue
		}
		if user.Email == "" {
			continue
		}
		if err := s.Mailer.Send(ctx, user.Name, user.Email, "Your emergency is awaiting approval", reminderBody(e)); err != nil {
			zap.S().Errorw("failed to send approval reminder", "emergencyId", e.ID.Hex(), "userId", e.ReportedBy, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Scheduler) reporter(ctx context.Context, userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	return s.UDB.FindOne(ctx, bson.M{"_id": oid})
}

func reminderBody(e *models.Emergency) string {
	completed := 0
	for _, v := range e.Volunteers {
		if v.Status == models.AssignmentCompleted {
			completed++
		}
	}
	return fmt.Sprintf(
		"%d volunteer(s) marked your %s emergency at %s as completed. Please review the work and approve it so they receive their incentive.",
		completed, e.DisplayType(), e.Location.String(),
	)
}
