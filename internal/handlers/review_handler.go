package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/accaprep/backend/internal/middleware"
	"github.com/accaprep/backend/internal/models"
	"github.com/accaprep/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewService is the interface that wraps methods for spaced-repetition business logic.
type ReviewService interface {
	// Method RecordReview grades a single answer outcome and reschedules the question.
	//
	// "userID" and "questionID" parameters identify the review record; both must be non-empty.
	// "isCorrect" parameter is the outcome of the attempt.
	// If the parameters are invalid or the store rejects the update, the error will be returned.
	RecordReview(ctx context.Context, userID, questionID string, isCorrect bool) error
	// Method RecordBatchReviews applies RecordReview for each outcome in input order.
	//
	// The batch is not atomic: a failure aborts the remaining outcomes and earlier
	// updates stay committed. The returned error names the failed position.
	RecordBatchReviews(ctx context.Context, userID string, outcomes []models.ReviewOutcome) error
	// Method GetDueQuestions retrieves the IDs of questions due for review at "asOf",
	// most overdue first. A zero "asOf" means "now".
	//
	// If the user has no due questions, an empty slice will be returned.
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetDueQuestions(ctx context.Context, userID string, asOf time.Time) ([]string, error)
	// Method GetReviewStats retrieves the user's review summary.
	//
	// If the user has no review records, (nil, nil) will be returned so the client
	// can distinguish "no data" from a zero-accuracy user.
	GetReviewStats(ctx context.Context, userID string) (*models.ReviewStats, error)
}

// ReviewHandler handles HTTP requests for review scheduling
type ReviewHandler struct {
	BaseHandler
	service ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(svc ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all review handler routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Post("/", h.RecordReview)
		r.Post("/batch", h.RecordBatchReviews)
		r.Get("/due", h.GetDueQuestions)
		r.Get("/stats", h.GetReviewStats)
	})
}

// RecordReviewRequest represents a single review submission
type RecordReviewRequest struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
}

// BatchReviewsRequest represents a batch review submission
type BatchReviewsRequest struct {
	Outcomes []models.ReviewOutcome `json:"outcomes"`
}

// RecordReview handles POST /api/v1/reviews
// @Summary Record a review outcome
// @Description Grade a single answer outcome and reschedule the question. Requires authentication.
// @Tags reviews
// @Accept json
// @Produce json
// @Param outcome body RecordReviewRequest true "Review outcome"
// @Success 200 {object} map[string]string "Review recorded"
// @Failure 400 {object} map[string]string "Bad request - invalid body or empty question ID"
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string "Internal server error - storage failure"
// @Router /api/v1/reviews [post]
func (h *ReviewHandler) RecordReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req RecordReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.RecordReview(r.Context(), userID, req.QuestionID, req.IsCorrect); err != nil {
		h.logger.Error("failed to record review", zap.Error(err))
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "review recorded"})
}

// RecordBatchReviews handles POST /api/v1/reviews/batch
// @Summary Record a batch of review outcomes
// @Description Apply review outcomes sequentially in input order. The batch is not atomic: on failure, earlier updates stay committed. Requires authentication.
// @Tags reviews
// @Accept json
// @Produce json
// @Param outcomes body BatchReviewsRequest true "Review outcomes"
// @Success 200 {object} map[string]string "Reviews recorded"
// @Failure 400 {object} map[string]string "Bad request - invalid body or empty outcomes"
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string "Internal server error - storage failure (partial application possible)"
// @Router /api/v1/reviews/batch [post]
func (h *ReviewHandler) RecordBatchReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req BatchReviewsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Outcomes) == 0 {
		h.respondError(w, http.StatusBadRequest, "outcomes array cannot be empty")
		return
	}

	if err := h.service.RecordBatchReviews(r.Context(), userID, req.Outcomes); err != nil {
		h.logger.Error("failed to record batch reviews", zap.Error(err))
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "reviews recorded"})
}

// GetDueQuestions handles GET /api/v1/reviews/due
// @Summary Get due questions
// @Description Get the IDs of all questions due for review, most overdue first. Requires authentication.
// @Tags reviews
// @Accept json
// @Produce json
// @Param asOf query string false "Due cutoff as RFC3339 timestamp, default: now"
// @Success 200 {array} string
// @Failure 400 {object} map[string]string "Bad request - malformed asOf timestamp"
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reviews/due [get]
func (h *ReviewHandler) GetDueQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var asOf time.Time
	if asOfParam := r.URL.Query().Get("asOf"); asOfParam != "" {
		parsed, err := time.Parse(time.RFC3339, asOfParam)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "asOf must be an RFC3339 timestamp")
			return
		}
		asOf = parsed
	}

	due, err := h.service.GetDueQuestions(r.Context(), userID, asOf)
	if err != nil {
		h.logger.Error("failed to get due questions", zap.Error(err))
		h.respondError(w, statusForError(err), "failed to get due questions")
		return
	}

	h.respondJSON(w, http.StatusOK, due)
}

// GetReviewStats handles GET /api/v1/reviews/stats
// @Summary Get review statistics
// @Description Get the due count, total reviewed count and average per-question accuracy. Returns null when the user has never reviewed anything. Requires authentication.
// @Tags reviews
// @Accept json
// @Produce json
// @Success 200 {object} models.ReviewStats
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reviews/stats [get]
func (h *ReviewHandler) GetReviewStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	stats, err := h.service.GetReviewStats(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get review stats", zap.Error(err))
		h.respondError(w, statusForError(err), "failed to get review stats")
		return
	}

	// stats is nil for users with no review history; the client receives null
	h.respondJSON(w, http.StatusOK, stats)
}

// statusForError maps service errors to HTTP status codes
func statusForError(err error) int {
	if errors.Is(err, services.ErrInvalidArgument) {
		return http.StatusBadRequest
	}
	if errors.Is(err, services.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
