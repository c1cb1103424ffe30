package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/accaprep/backend/internal/models"
	"go.uber.org/zap"
)

type reviewRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReviewRepository creates a new review record repository
func NewReviewRepository(db *sql.DB, logger *zap.Logger) *reviewRepository {
	return &reviewRepository{
		db:     db,
		logger: logger,
	}
}

// GetByUserAndQuestion retrieves the review record for a (user, question) pair.
// A missing record is not an error: it returns (nil, nil) so the caller can
// treat the review as the first one for that pair.
func (r *reviewRepository) GetByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.ReviewRecord, error) {
	query := `
		SELECT user_id, question_id, last_reviewed_at, next_review_at,
		       ease_factor, interval_days, repetitions,
		       times_seen, times_correct, times_incorrect
		FROM review_records
		WHERE user_id = ? AND question_id = ?
	`

	var rec models.ReviewRecord
	err := r.db.QueryRowContext(ctx, query, userID, questionID).Scan(
		&rec.UserID,
		&rec.QuestionID,
		&rec.LastReviewedAt,
		&rec.NextReviewAt,
		&rec.EaseFactor,
		&rec.IntervalDays,
		&rec.Repetitions,
		&rec.TimesSeen,
		&rec.TimesCorrect,
		&rec.TimesIncorrect,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to query review record", zap.Error(err),
			zap.String("user_id", userID), zap.String("question_id", questionID))
		return nil, fmt.Errorf("failed to query review record: %w", err)
	}

	return &rec, nil
}

// Upsert inserts a review record or, if one already exists for the (user,
// question) pair, replaces its scheduling state and counters in place
func (r *reviewRepository) Upsert(ctx context.Context, rec *models.ReviewRecord) error {
	query := `
		INSERT INTO review_records
		(user_id, question_id, last_reviewed_at, next_review_at,
		 ease_factor, interval_days, repetitions,
		 times_seen, times_correct, times_incorrect)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			last_reviewed_at = VALUES(last_reviewed_at),
			next_review_at = VALUES(next_review_at),
			ease_factor = VALUES(ease_factor),
			interval_days = VALUES(interval_days),
			repetitions = VALUES(repetitions),
			times_seen = VALUES(times_seen),
			times_correct = VALUES(times_correct),
			times_incorrect = VALUES(times_incorrect)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.UserID,
		rec.QuestionID,
		rec.LastReviewedAt,
		rec.NextReviewAt,
		rec.EaseFactor,
		rec.IntervalDays,
		rec.Repetitions,
		rec.TimesSeen,
		rec.TimesCorrect,
		rec.TimesIncorrect,
	)
	if err != nil {
		r.logger.Error("failed to upsert review record", zap.Error(err),
			zap.String("user_id", rec.UserID), zap.String("question_id", rec.QuestionID))
		return fmt.Errorf("failed to upsert review record: %w", err)
	}

	return nil
}

// GetDueQuestions returns the IDs of every question whose next review time is
// at or before asOf, most overdue first
func (r *reviewRepository) GetDueQuestions(ctx context.Context, userID string, asOf time.Time) ([]string, error) {
	query := `
		SELECT question_id
		FROM review_records
		WHERE user_id = ? AND next_review_at <= ?
		ORDER BY next_review_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, asOf)
	if err != nil {
		r.logger.Error("failed to query due questions", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to query due questions: %w", err)
	}
	defer rows.Close()

	// Empty slice, not nil: "no due questions" is a valid result
	questionIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			r.logger.Error("failed to scan due question", zap.Error(err))
			return nil, fmt.Errorf("failed to scan due question: %w", err)
		}
		questionIDs = append(questionIDs, id)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questionIDs, nil
}

// GetStats aggregates review state for a user. Returns (nil, nil) when the
// user has no review records, so "no data" stays distinguishable from a
// zero-accuracy user.
func (r *reviewRepository) GetStats(ctx context.Context, userID string, now time.Time) (*models.ReviewStats, error) {
	// times_seen is always > 0 on persisted rows, so the per-question ratio is safe
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(next_review_at <= ?), 0),
		       COALESCE(AVG(times_correct / times_seen), 0)
		FROM review_records
		WHERE user_id = ?
	`

	var stats models.ReviewStats
	err := r.db.QueryRowContext(ctx, query, now, userID).Scan(
		&stats.TotalReviewed,
		&stats.DueCount,
		&stats.AvgAccuracy,
	)
	if err != nil {
		r.logger.Error("failed to query review stats", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to query review stats: %w", err)
	}

	if stats.TotalReviewed == 0 {
		return nil, nil
	}

	return &stats, nil
}

// GetUsersWithDue returns, for every user with at least one due review, the
// user ID and the due count. Used by the reminder scheduler.
func (r *reviewRepository) GetUsersWithDue(ctx context.Context, asOf time.Time) ([]models.UserDueCount, error) {
	query := `
		SELECT user_id, COUNT(*)
		FROM review_records
		WHERE next_review_at <= ?
		GROUP BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		r.logger.Error("failed to query users with due reviews", zap.Error(err))
		return nil, fmt.Errorf("failed to query users with due reviews: %w", err)
	}
	defer rows.Close()

	var users []models.UserDueCount
	for rows.Next() {
		var u models.UserDueCount
		if err := rows.Scan(&u.UserID, &u.DueCount); err != nil {
			r.logger.Error("failed to scan user due count", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user due count: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}
