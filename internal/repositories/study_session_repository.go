package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/accaprep/backend/internal/models"
	"go.uber.org/zap"
)

type studySessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStudySessionRepository creates a new study session repository
func NewStudySessionRepository(db *sql.DB, logger *zap.Logger) *studySessionRepository {
	return &studySessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new study session record
func (r *studySessionRepository) Create(ctx context.Context, s *models.StudySession) error {
	query := `
		INSERT INTO study_sessions
		(user_id, started_at, finished_at, total_questions, correct, incorrect, xp_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		s.UserID, s.StartedAt, s.FinishedAt, s.TotalQuestions, s.Correct, s.Incorrect, s.XPEarned)
	if err != nil {
		r.logger.Error("failed to create study session", zap.Error(err), zap.String("user_id", s.UserID))
		return fmt.Errorf("failed to create study session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get study session id: %w", err)
	}
	s.ID = id

	return nil
}

// GetLeaderboard returns up to limit users ranked by total XP earned
func (r *studySessionRepository) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT user_id, SUM(xp_earned), COUNT(*)
		FROM study_sessions
		GROUP BY user_id
		ORDER BY SUM(xp_earned) DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("failed to query leaderboard", zap.Error(err))
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.XP, &e.Sessions); err != nil {
			r.logger.Error("failed to scan leaderboard entry", zap.Error(err))
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// GetUserXP returns the total XP a user has earned across all sessions
func (r *studySessionRepository) GetUserXP(ctx context.Context, userID string) (int, error) {
	var xp int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(xp_earned), 0) FROM study_sessions WHERE user_id = ?`, userID).Scan(&xp)
	if err != nil {
		r.logger.Error("failed to query user xp", zap.Error(err), zap.String("user_id", userID))
		return 0, fmt.Errorf("failed to query user xp: %w", err)
	}
	return xp, nil
}

type notificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *notificationRepository {
	return &notificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a pending due-review reminder for a user. At most one
// unsent reminder per user is kept: an existing unsent row only has its due
// count refreshed.
func (r *notificationRepository) Create(ctx context.Context, userID string, dueCount int) error {
	var existingID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM notifications WHERE user_id = ? AND sent_at IS NULL`, userID).Scan(&existingID)
	if err == nil {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE notifications SET due_count = ? WHERE id = ?`, dueCount, existingID); err != nil {
			r.logger.Error("failed to update notification", zap.Error(err), zap.String("user_id", userID))
			return fmt.Errorf("failed to update notification: %w", err)
		}
		return nil
	}
	if err != sql.ErrNoRows {
		r.logger.Error("failed to query notification", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("failed to query notification: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, due_count) VALUES (?, ?)`, userID, dueCount); err != nil {
		r.logger.Error("failed to create notification", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}
