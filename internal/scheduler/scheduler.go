// Package scheduler runs the periodic due-review reminder job.
package scheduler

import (
	"context"
	"time"

	"github.com/accaprep/backend/internal/models"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// DueReviewSource finds users who currently have reviews due.
type DueReviewSource interface {
	// Method GetUsersWithDue retrieves the per-user count of review items
	// whose next review time is at or before the given moment. If some
	// error occurs during data retrieval, the error will be returned
	// together with "nil" value.
	GetUsersWithDue(ctx context.Context, asOf time.Time) ([]models.UserDueCount, error)
}

// NotificationSink records a pending reminder for a user.
type NotificationSink interface {
	// Method Create stores a reminder for the user carrying the current
	// due count. If some error occurs during saving, the error will be
	// returned.
	Create(ctx context.Context, userID string, dueCount int) error
}

// Scheduler checks for due reviews every hour and produces reminder
// notifications inside the configured local-time window.
type Scheduler struct {
	cron      *gocron.Scheduler
	reviews   DueReviewSource
	sink      NotificationSink
	startHour int
	endHour   int
	logger    *zap.Logger
}

// New creates a new reminder scheduler. Hours are inclusive bounds of
// the window in which reminders may be produced.
func New(reviews DueReviewSource, sink NotificationSink, startHour, endHour int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      gocron.NewScheduler(time.UTC),
		reviews:   reviews,
		sink:      sink,
		startHour: startHour,
		endHour:   endHour,
		logger:    logger,
	}
}

// Start schedules the hourly reminder check and begins running it
// without blocking the caller.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(1).Hour().Do(s.runReminderCheck); err != nil {
		return err
	}
	s.cron.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunReminderCheck forces an immediate reminder pass. Exposed for the
// scheduler binary's startup run and for tests.
func (s *Scheduler) RunReminderCheck(ctx context.Context, now time.Time) error {
	users, err := s.reviews.GetUsersWithDue(ctx, now)
	if err != nil {
		return err
	}

	for _, u := range users {
		if u.DueCount == 0 {
			continue
		}
		if err := s.sink.Create(ctx, u.UserID, u.DueCount); err != nil {
			s.logger.Error("Failed to create reminder",
				zap.String("user_id", u.UserID),
				zap.Error(err))
			continue
		}
	}

	s.logger.Info("Reminder check finished", zap.Int("users_with_due", len(users)))
	return nil
}

func (s *Scheduler) runReminderCheck() {
	now := time.Now().UTC()

	// Reminders are only produced inside the configured window
	if now.Hour() < s.startHour || now.Hour() > s.endHour {
		s.logger.Debug("Outside reminder window, skipping",
			zap.Int("hour", now.Hour()),
			zap.Int("start_hour", s.startHour),
			zap.Int("end_hour", s.endHour))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	if err := s.RunReminderCheck(ctx, now); err != nil {
		s.logger.Error("Reminder check failed", zap.Error(err))
	}
}
