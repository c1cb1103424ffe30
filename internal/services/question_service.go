package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/accaprep/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuestionBankRepository is the interface that wraps methods for managing the
// question bank
type QuestionBankRepository interface {
	// Method GetByID retrieves a question by its ID. A nil question with a nil
	// error means no question exists with that ID.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.Question, error)
	// Method GetByTopic retrieves all questions for a topic ordered by ID.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetByTopic(ctx context.Context, topicID int) ([]models.Question, error)
	// Method Create inserts a new question.
	//
	// If some error occurs during the insert, the error will be returned.
	Create(ctx context.Context, q *models.Question) error
	// Method Update modifies an existing question.
	//
	// If some error occurs during the update, the error will be returned.
	Update(ctx context.Context, q *models.Question) error
	// Method Delete removes a question. The returned bool reports whether a
	// row was actually deleted.
	//
	// If some error occurs during the delete, the error will be returned.
	Delete(ctx context.Context, id string) (bool, error)
}

type questionService struct {
	questions QuestionBankRepository
	logger    *zap.Logger
}

// NewQuestionService creates a new question bank service
func NewQuestionService(questions QuestionBankRepository, logger *zap.Logger) *questionService {
	return &questionService{
		questions: questions,
		logger:    logger,
	}
}

// GetQuestionsByTopic retrieves the client-safe view of every question in a
// topic. Correct options and explanations are stripped.
func (s *questionService) GetQuestionsByTopic(ctx context.Context, topicID int) ([]models.QuestionResponse, error) {
	if topicID <= 0 {
		return nil, fmt.Errorf("%w: invalid topic id", ErrInvalidArgument)
	}

	questions, err := s.questions.GetByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	responses := make([]models.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, q.ToResponse())
	}
	return responses, nil
}

// GetQuestion retrieves the full question, correct option included. Admin use
// only; learner-facing endpoints go through GetQuestionsByTopic.
func (s *questionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: question ID must be non-empty", ErrInvalidArgument)
	}

	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if q == nil {
		return nil, fmt.Errorf("%w: question %s", ErrNotFound, id)
	}
	return q, nil
}

// CreateQuestion validates and stores a new question, assigning its ID
func (s *questionService) CreateQuestion(ctx context.Context, q *models.Question) error {
	if err := validateQuestion(q); err != nil {
		return err
	}

	q.ID = uuid.New().String()
	if err := s.questions.Create(ctx, q); err != nil {
		s.logger.Error("failed to create question", zap.Error(err), zap.Int("topic_id", q.TopicID))
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// UpdateQuestion validates and stores changes to an existing question
func (s *questionService) UpdateQuestion(ctx context.Context, q *models.Question) error {
	if q.ID == "" {
		return fmt.Errorf("%w: question ID must be non-empty", ErrInvalidArgument)
	}
	if err := validateQuestion(q); err != nil {
		return err
	}

	existing, err := s.questions.GetByID(ctx, q.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: question %s", ErrNotFound, q.ID)
	}

	if err := s.questions.Update(ctx, q); err != nil {
		s.logger.Error("failed to update question", zap.Error(err), zap.String("id", q.ID))
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// DeleteQuestion removes a question from the bank
func (s *questionService) DeleteQuestion(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: question ID must be non-empty", ErrInvalidArgument)
	}

	deleted, err := s.questions.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete question", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !deleted {
		return fmt.Errorf("%w: question %s", ErrNotFound, id)
	}

	return nil
}

// validateQuestion checks the fields shared by create and update. The correct
// option is normalized to upper case in place.
func validateQuestion(q *models.Question) error {
	if q.TopicID <= 0 {
		return fmt.Errorf("%w: invalid topic id", ErrInvalidArgument)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text must be non-empty", ErrInvalidArgument)
	}
	for _, opt := range []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD} {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: all four options must be non-empty", ErrInvalidArgument)
		}
	}

	q.CorrectOption = strings.ToUpper(strings.TrimSpace(q.CorrectOption))
	switch q.CorrectOption {
	case "A", "B", "C", "D":
	default:
		return fmt.Errorf("%w: correct option must be A, B, C or D", ErrInvalidArgument)
	}

	if q.Difficulty == 0 {
		q.Difficulty = 1
	}
	if q.Difficulty < 1 || q.Difficulty > 3 {
		return fmt.Errorf("%w: difficulty must be between 1 and 3", ErrInvalidArgument)
	}

	return nil
}
