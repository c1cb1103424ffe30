package services

import (
	"context"
	"fmt"
	"time"

	"github.com/accaprep/backend/internal/models"
	"github.com/accaprep/backend/internal/srs"
	"go.uber.org/zap"
)

// ReviewRepository is the interface that wraps methods for review record data access
type ReviewRepository interface {
	// Method GetByUserAndQuestion retrieves the review record for a (user, question) pair.
	//
	// A missing record is a valid "never reviewed" state and is returned as (nil, nil), not an error.
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.ReviewRecord, error)
	// Method Upsert creates the review record for its (user, question) pair or replaces the existing one.
	//
	// If some error occurs during the upsert, the error will be returned.
	Upsert(ctx context.Context, rec *models.ReviewRecord) error
	// Method GetDueQuestions retrieves the IDs of questions due at or before "asOf",
	// ordered ascending by next review time (most overdue first).
	//
	// If the user has no due questions, an empty slice will be returned.
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetDueQuestions(ctx context.Context, userID string, asOf time.Time) ([]string, error)
	// Method GetStats aggregates review state for a user as of "now".
	//
	// If the user has no review records, (nil, nil) will be returned.
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetStats(ctx context.Context, userID string, now time.Time) (*models.ReviewStats, error)
}

type reviewService struct {
	repo   ReviewRepository
	clock  Clock
	logger *zap.Logger
}

// NewReviewService creates a new review scheduling service
func NewReviewService(repo ReviewRepository, clock Clock, logger *zap.Logger) *reviewService {
	return &reviewService{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

// RecordReview grades a single answer outcome and reschedules the question.
//
// The existing record (or the default state, when the question has never been
// reviewed) is advanced through the SM-2 transition and written back in one
// upsert, together with the lifetime counters. Two calls with the same outcome
// advance the schedule twice: they represent two real review events.
func (s *reviewService) RecordReview(ctx context.Context, userID, questionID string, isCorrect bool) error {
	if userID == "" || questionID == "" {
		return fmt.Errorf("%w: user and question IDs must be non-empty", ErrInvalidArgument)
	}

	rec, err := s.repo.GetByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	state := srs.NewState()
	var timesSeen, timesCorrect, timesIncorrect int
	if rec != nil {
		state = srs.State{
			EaseFactor:     rec.EaseFactor,
			IntervalDays:   rec.IntervalDays,
			Repetitions:    rec.Repetitions,
			LastReviewedAt: rec.LastReviewedAt,
			NextReviewAt:   rec.NextReviewAt,
		}
		timesSeen = rec.TimesSeen
		timesCorrect = rec.TimesCorrect
		timesIncorrect = rec.TimesIncorrect
	}

	now := s.clock.Now()
	next := srs.Advance(state, srs.QualityForResult(isCorrect), now)

	updated := &models.ReviewRecord{
		UserID:         userID,
		QuestionID:     questionID,
		LastReviewedAt: next.LastReviewedAt,
		NextReviewAt:   next.NextReviewAt,
		EaseFactor:     next.EaseFactor,
		IntervalDays:   next.IntervalDays,
		Repetitions:    next.Repetitions,
		TimesSeen:      timesSeen + 1,
		TimesCorrect:   timesCorrect,
		TimesIncorrect: timesIncorrect,
	}
	if isCorrect {
		updated.TimesCorrect++
	} else {
		updated.TimesIncorrect++
	}

	if err := s.repo.Upsert(ctx, updated); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// RecordBatchReviews applies RecordReview for each outcome in input order.
//
// The batch is not atomic: a failure partway through leaves earlier updates
// committed and aborts the rest. The returned error names the failed position
// so the caller can re-submit the remaining outcomes.
func (s *reviewService) RecordBatchReviews(ctx context.Context, userID string, outcomes []models.ReviewOutcome) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID must be non-empty", ErrInvalidArgument)
	}

	for i, outcome := range outcomes {
		if err := s.RecordReview(ctx, userID, outcome.QuestionID, outcome.IsCorrect); err != nil {
			return fmt.Errorf("outcome %d (question %s): %w", i, outcome.QuestionID, err)
		}
	}

	return nil
}

// GetDueQuestions returns the IDs of every question due for the user at
// "asOf", most overdue first. A zero asOf means "now".
func (s *reviewService) GetDueQuestions(ctx context.Context, userID string, asOf time.Time) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID must be non-empty", ErrInvalidArgument)
	}

	if asOf.IsZero() {
		asOf = s.clock.Now()
	}

	due, err := s.repo.GetDueQuestions(ctx, userID, asOf)
	if err != nil {
		s.logger.Error("failed to get due questions", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return due, nil
}

// GetReviewStats returns the user's review summary, or nil when the user has
// never reviewed anything
func (s *reviewService) GetReviewStats(ctx context.Context, userID string) (*models.ReviewStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID must be non-empty", ErrInvalidArgument)
	}

	stats, err := s.repo.GetStats(ctx, userID, s.clock.Now())
	if err != nil {
		s.logger.Error("failed to get review stats", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return stats, nil
}
