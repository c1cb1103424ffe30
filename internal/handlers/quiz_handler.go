package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/accaprep/backend/internal/middleware"
	"github.com/accaprep/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps methods for practice quiz business logic.
type QuizService interface {
	// Method GetTopics retrieves all syllabus topics.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetTopics(ctx context.Context) ([]models.Topic, error)
	// Method BuildQuiz assembles a practice quiz for a user and topic: due review
	// questions for the topic first (most overdue first), random topic questions after.
	//
	// "topicID" must identify an existing topic; "count" is clamped to a sane range.
	// If the parameters are invalid or some error occurs during data retrieval,
	// the error will be returned together with "nil" value.
	BuildQuiz(ctx context.Context, userID string, topicID, count int) ([]models.QuestionResponse, error)
	// Method SubmitQuiz grades a finished quiz, routes every answer into the
	// spaced-repetition schedule in input order and records one study session.
	//
	// Scheduling updates are not atomic across the batch; a failure aborts the
	// remaining answers and is returned together with "nil" value.
	SubmitQuiz(ctx context.Context, userID string, answers []models.ReviewOutcome, startedAt time.Time) (*models.QuizResult, error)
}

// QuizHandler handles HTTP requests for practice quizzes
type QuizHandler struct {
	BaseHandler
	service QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router) {
	r.Get("/topics", h.GetTopics)
	r.Route("/quiz", func(r chi.Router) {
		r.Get("/", h.BuildQuiz)
		r.Post("/submit", h.SubmitQuiz)
	})
}

// SubmitQuizRequest represents a quiz submission
type SubmitQuizRequest struct {
	Answers   []models.ReviewOutcome `json:"answers"`
	StartedAt time.Time              `json:"startedAt"`
}

// GetTopics handles GET /api/v1/topics
// @Summary Get all topics
// @Description Get the list of exam syllabus topics
// @Tags quiz
// @Accept json
// @Produce json
// @Success 200 {array} models.Topic
// @Failure 500 {object} map[string]string
// @Router /api/v1/topics [get]
func (h *QuizHandler) GetTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.service.GetTopics(r.Context())
	if err != nil {
		h.logger.Error("failed to get topics", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get topics")
		return
	}

	h.respondJSON(w, http.StatusOK, topics)
}

// BuildQuiz handles GET /api/v1/quiz
// @Summary Build a practice quiz
// @Description Build a quiz for a topic: due review questions first, random questions after. Requires authentication.
// @Tags quiz
// @Accept json
// @Produce json
// @Param topic query int true "Topic ID"
// @Param count query int false "Number of questions, default: 10, max: 50"
// @Success 200 {array} models.QuestionResponse
// @Failure 400 {object} map[string]string "Bad request - missing or invalid topic ID"
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/quiz [get]
func (h *QuizHandler) BuildQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	topicID, err := strconv.Atoi(r.URL.Query().Get("topic"))
	if err != nil || topicID <= 0 {
		h.respondError(w, http.StatusBadRequest, "topic must be a positive integer")
		return
	}

	count := 0
	if countParam := r.URL.Query().Get("count"); countParam != "" {
		count, err = strconv.Atoi(countParam)
		if err != nil || count <= 0 {
			h.respondError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
	}

	quiz, err := h.service.BuildQuiz(r.Context(), userID, topicID, count)
	if err != nil {
		h.logger.Error("failed to build quiz", zap.Error(err))
		h.respondError(w, statusForError(err), "failed to build quiz")
		return
	}

	h.respondJSON(w, http.StatusOK, quiz)
}

// SubmitQuiz handles POST /api/v1/quiz/submit
// @Summary Submit quiz answers
// @Description Grade a finished quiz, update the review schedule for every answer and record the study session. Requires authentication.
// @Tags quiz
// @Accept json
// @Produce json
// @Param submission body SubmitQuizRequest true "Quiz answers"
// @Success 200 {object} models.QuizResult
// @Failure 400 {object} map[string]string "Bad request - invalid body or empty answers"
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string "Internal server error - storage failure (partial application possible)"
// @Router /api/v1/quiz/submit [post]
func (h *QuizHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req SubmitQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Answers) == 0 {
		h.respondError(w, http.StatusBadRequest, "answers array cannot be empty")
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), userID, req.Answers, req.StartedAt)
	if err != nil {
		h.logger.Error("failed to submit quiz", zap.Error(err))
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
