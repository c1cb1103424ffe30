package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/accaprep/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// QuestionService is the interface that wraps methods for question bank business logic.
type QuestionService interface {
	// Method GetQuestionsByTopic retrieves the client-safe view of every
	// question in a topic, correct options and explanations stripped.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetQuestionsByTopic(ctx context.Context, topicID int) ([]models.QuestionResponse, error)
	// Method GetQuestion retrieves the full question, correct option included.
	//
	// If no question exists with the given ID, or some error occurs during data
	// retrieval, the error will be returned together with "nil" value.
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	// Method CreateQuestion validates and stores a new question, assigning its ID.
	//
	// If the question is invalid or some error occurs during the insert, the
	// error will be returned.
	CreateQuestion(ctx context.Context, q *models.Question) error
	// Method UpdateQuestion validates and stores changes to an existing question.
	//
	// If the question is invalid, does not exist, or some error occurs during
	// the update, the error will be returned.
	UpdateQuestion(ctx context.Context, q *models.Question) error
	// Method DeleteQuestion removes a question from the bank.
	//
	// If no question exists with the given ID or some error occurs during the
	// delete, the error will be returned.
	DeleteQuestion(ctx context.Context, id string) error
}

// QuestionHandler handles HTTP requests for the question bank
type QuestionHandler struct {
	BaseHandler
	service QuestionService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(svc QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers the learner-facing question routes
func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/questions", h.GetQuestionsByTopic)
}

// RegisterAdminRoutes registers the question bank management routes. Routes
// are registered flat because /admin/questions/import lives on the same
// router.
func (h *QuestionHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/admin/questions", h.CreateQuestion)
	r.Get("/admin/questions/{id}", h.GetQuestion)
	r.Put("/admin/questions/{id}", h.UpdateQuestion)
	r.Delete("/admin/questions/{id}", h.DeleteQuestion)
}

// GetQuestionsByTopic handles GET /api/v1/questions
// @Summary List topic questions
// @Description List every question in a topic without correct options or explanations. Requires authentication.
// @Tags questions
// @Accept json
// @Produce json
// @Param topic query int true "Topic ID"
// @Success 200 {array} models.QuestionResponse
// @Failure 400 {object} map[string]string "Bad request - missing or invalid topic ID"
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/questions [get]
func (h *QuestionHandler) GetQuestionsByTopic(w http.ResponseWriter, r *http.Request) {
	topicID, err := strconv.Atoi(r.URL.Query().Get("topic"))
	if err != nil || topicID <= 0 {
		h.respondError(w, http.StatusBadRequest, "topic must be a positive integer")
		return
	}

	questions, err := h.service.GetQuestionsByTopic(r.Context(), topicID)
	if err != nil {
		h.logger.Error("failed to get questions", zap.Error(err), zap.Int("topic_id", topicID))
		h.respondError(w, statusForError(err), "failed to get questions")
		return
	}

	h.respondJSON(w, http.StatusOK, questions)
}

// GetQuestion handles GET /api/v1/admin/questions/{id}
// @Summary Get a question
// @Description Get the full question including the correct option and explanation. Requires the admin API key.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Question ID"
// @Success 200 {object} models.Question
// @Failure 401 {object} map[string]string "Unauthorized - invalid or missing API key"
// @Failure 404 {object} map[string]string "Not found - unknown question ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/questions/{id} [get]
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	question, err := h.service.GetQuestion(r.Context(), id)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, question)
}

// CreateQuestion handles POST /api/v1/admin/questions
// @Summary Create a question
// @Description Add a question to the bank. Requires the admin API key.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param question body models.Question true "Question to create (ID is assigned by the server)"
// @Success 201 {object} models.Question
// @Failure 400 {object} map[string]string "Bad request - invalid question"
// @Failure 401 {object} map[string]string "Unauthorized - invalid or missing API key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/questions [post]
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var question models.Question
	if err := decodeJSON(r, &question); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.CreateQuestion(r.Context(), &question); err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.logger.Info("question created", zap.String("id", question.ID), zap.Int("topic_id", question.TopicID))
	h.respondJSON(w, http.StatusCreated, question)
}

// UpdateQuestion handles PUT /api/v1/admin/questions/{id}
// @Summary Update a question
// @Description Replace an existing question. Requires the admin API key.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Question ID"
// @Param question body models.Question true "New question content"
// @Success 200 {object} models.Question
// @Failure 400 {object} map[string]string "Bad request - invalid question"
// @Failure 401 {object} map[string]string "Unauthorized - invalid or missing API key"
// @Failure 404 {object} map[string]string "Not found - unknown question ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var question models.Question
	if err := decodeJSON(r, &question); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	question.ID = chi.URLParam(r, "id")

	if err := h.service.UpdateQuestion(r.Context(), &question); err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, question)
}

// DeleteQuestion handles DELETE /api/v1/admin/questions/{id}
// @Summary Delete a question
// @Description Remove a question from the bank. Requires the admin API key.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Question ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized - invalid or missing API key"
// @Failure 404 {object} map[string]string "Not found - unknown question ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/admin/questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteQuestion(r.Context(), id); err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "question deleted"})
}
