package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/accaprep/backend/internal/middleware"
	"github.com/accaprep/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LeaderboardService is the interface that wraps methods for gamification business logic.
type LeaderboardService interface {
	// Method GetLeaderboard retrieves the top users by earned XP.
	//
	// "limit" is clamped to a sane range.
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	// Method GetUserXP retrieves the total XP earned by a user.
	//
	// If some error occurs during data retrieval, the error will be returned.
	GetUserXP(ctx context.Context, userID string) (int, error)
}

// LeaderboardHandler handles HTTP requests for the XP leaderboard
type LeaderboardHandler struct {
	BaseHandler
	service LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(svc LeaderboardService, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all leaderboard handler routes
func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.GetLeaderboard)
	r.Get("/xp", h.GetUserXP)
}

// GetLeaderboard handles GET /api/v1/leaderboard
// @Summary Get the XP leaderboard
// @Description Get the top users ranked by total XP earned
// @Tags gamification
// @Accept json
// @Produce json
// @Param limit query int false "Number of entries, default: 10, max: 100"
// @Success 200 {array} models.LeaderboardEntry
// @Failure 500 {object} map[string]string
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.service.GetLeaderboard(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to get leaderboard", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}

	h.respondJSON(w, http.StatusOK, entries)
}

// GetUserXP handles GET /api/v1/xp
// @Summary Get own XP total
// @Description Get the total XP the authenticated user has earned. Requires authentication.
// @Tags gamification
// @Accept json
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string
// @Router /api/v1/xp [get]
func (h *LeaderboardHandler) GetUserXP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	xp, err := h.service.GetUserXP(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get user xp", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get xp")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int{"xp": xp})
}
