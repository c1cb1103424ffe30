package handlers

import (
	"context"
	"net/http"

	"github.com/accaprep/backend/internal/ai"
	"github.com/accaprep/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CoachService is the interface that wraps methods for the AI exam coach relay.
type CoachService interface {
	// Method Chat sends the conversation to the model and returns the assistant reply.
	//
	// "messages" must be non-empty.
	// If some error occurs during the relay, the error will be returned.
	Chat(ctx context.Context, messages []ai.Message) (string, error)
	// Method ExplainQuestion asks the model to explain a practice question,
	// including why the student's chosen option is right or wrong.
	//
	// If some error occurs during the relay, the error will be returned.
	ExplainQuestion(ctx context.Context, q *models.Question, chosenOption string) (string, error)
}

// QuestionGetter is the interface the chat handler uses to load questions for explanation
type QuestionGetter interface {
	// Method GetByID retrieves a question by its ID. A nil question with a nil
	// error means no question exists with that ID.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.Question, error)
}

// ChatHandler handles HTTP requests for the AI exam coach
type ChatHandler struct {
	BaseHandler
	coach     CoachService
	questions QuestionGetter
}

// NewChatHandler creates a new chat handler
func NewChatHandler(coach CoachService, questions QuestionGetter, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		coach:       coach,
		questions:   questions,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all chat handler routes
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/coach", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Post("/explain", h.Explain)
	})
}

// ChatRequest represents a coach conversation request
type ChatRequest struct {
	Messages []ai.Message `json:"messages"`
}

// ExplainRequest represents a question explanation request
type ExplainRequest struct {
	QuestionID   string `json:"questionId"`
	ChosenOption string `json:"chosenOption"`
}

// CoachResponse represents a coach reply
type CoachResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /api/v1/coach/chat
// @Summary Chat with the exam coach
// @Description Relay a conversation to the AI exam coach and return its reply. Requires authentication.
// @Tags coach
// @Accept json
// @Produce json
// @Param conversation body ChatRequest true "Conversation messages"
// @Success 200 {object} CoachResponse
// @Failure 400 {object} map[string]string "Bad request - invalid body or empty messages"
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 502 {object} map[string]string "Bad gateway - the model endpoint failed"
// @Router /api/v1/coach/chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		h.respondError(w, http.StatusBadRequest, "messages array cannot be empty")
		return
	}

	reply, err := h.coach.Chat(r.Context(), req.Messages)
	if err != nil {
		h.logger.Error("coach chat failed", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "coach is unavailable")
		return
	}

	h.respondJSON(w, http.StatusOK, CoachResponse{Reply: reply})
}

// Explain handles POST /api/v1/coach/explain
// @Summary Explain a practice question
// @Description Ask the AI exam coach to explain a question and the student's chosen option. Requires authentication.
// @Tags coach
// @Accept json
// @Produce json
// @Param request body ExplainRequest true "Question and chosen option"
// @Success 200 {object} CoachResponse
// @Failure 400 {object} map[string]string "Bad request - invalid body or unknown question"
// @Failure 401 {object} map[string]string "Unauthorized - user identity missing"
// @Failure 500 {object} map[string]string "Internal server error"
// @Failure 502 {object} map[string]string "Bad gateway - the model endpoint failed"
// @Router /api/v1/coach/explain [post]
func (h *ChatHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		h.respondError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	question, err := h.questions.GetByID(r.Context(), req.QuestionID)
	if err != nil {
		h.logger.Error("failed to load question for explanation", zap.Error(err), zap.String("question_id", req.QuestionID))
		h.respondError(w, http.StatusInternalServerError, "failed to load question")
		return
	}
	if question == nil {
		h.respondError(w, http.StatusBadRequest, "question not found")
		return
	}

	reply, err := h.coach.ExplainQuestion(r.Context(), question, req.ChosenOption)
	if err != nil {
		h.logger.Error("coach explain failed", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "coach is unavailable")
		return
	}

	h.respondJSON(w, http.StatusOK, CoachResponse{Reply: reply})
}
