package services

import (
	"context"
	"fmt"

	"github.com/accaprep/backend/internal/models"
	"go.uber.org/zap"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// LeaderboardRepository is the interface that wraps methods for leaderboard data access
type LeaderboardRepository interface {
	// Method GetLeaderboard retrieves up to "limit" users ranked by total XP earned.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	// Method GetUserXP retrieves the total XP a user has earned across all sessions.
	//
	// If some error occurs during data retrieval, the error will be returned.
	GetUserXP(ctx context.Context, userID string) (int, error)
}

type leaderboardService struct {
	repo   LeaderboardRepository
	logger *zap.Logger
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(repo LeaderboardRepository, logger *zap.Logger) *leaderboardService {
	return &leaderboardService{
		repo:   repo,
		logger: logger,
	}
}

// GetLeaderboard returns the top users by earned XP
func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	entries, err := s.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		s.logger.Error("failed to get leaderboard", zap.Error(err))
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return entries, nil
}

// GetUserXP returns the total XP earned by a user
func (s *leaderboardService) GetUserXP(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user ID must be non-empty", ErrInvalidArgument)
	}

	xp, err := s.repo.GetUserXP(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user xp", zap.Error(err), zap.String("user_id", userID))
		return 0, fmt.Errorf("failed to get user xp: %w", err)
	}

	return xp, nil
}
