package services

import (
	"context"
	"fmt"
	"time"

	"github.com/accaprep/backend/internal/models"
	"go.uber.org/zap"
)

const (
	defaultQuizSize = 10
	maxQuizSize     = 50
	xpPerCorrect    = 10
	xpSessionBonus  = 20 // awarded when every answer in the session is correct
)

// QuestionRepository is the interface that wraps methods for question bank data access
type QuestionRepository interface {
	// Method GetByID retrieves a question by its ID. A nil question with a nil
	// error means no question exists with that ID.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.Question, error)
	// Method GetByIDs retrieves a set of questions by ID.
	//
	// Unknown IDs are silently skipped. If some error occurs during data
	// retrieval, the error will be returned together with "nil" value.
	GetByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	// Method GetRandomByTopic retrieves up to "count" random questions for a topic,
	// excluding the given question IDs.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetRandomByTopic(ctx context.Context, topicID int, excludeIDs []string, count int) ([]models.Question, error)
	// Method GetTopics retrieves all topics.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetTopics(ctx context.Context) ([]models.Topic, error)
}

// ReviewScheduler is the interface the quiz service uses to route answer
// outcomes into the spaced-repetition schedule
type ReviewScheduler interface {
	// Method RecordReview grades a single answer outcome and reschedules the question.
	//
	// If some error occurs during the update, the error will be returned.
	RecordReview(ctx context.Context, userID, questionID string, isCorrect bool) error
	// Method GetDueQuestions retrieves the IDs of questions due for the user at "asOf",
	// most overdue first. A zero "asOf" means "now".
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetDueQuestions(ctx context.Context, userID string, asOf time.Time) ([]string, error)
}

// StudySessionRepository is the interface that wraps methods for study session data access
type StudySessionRepository interface {
	// Method Create inserts a new study session record and sets its ID.
	//
	// If some error occurs during the insert, the error will be returned.
	Create(ctx context.Context, s *models.StudySession) error
}

type quizService struct {
	questions QuestionRepository
	scheduler ReviewScheduler
	sessions  StudySessionRepository
	clock     Clock
	logger    *zap.Logger
}

// NewQuizService creates a new practice quiz service
func NewQuizService(questions QuestionRepository, scheduler ReviewScheduler, sessions StudySessionRepository, clock Clock, logger *zap.Logger) *quizService {
	return &quizService{
		questions: questions,
		scheduler: scheduler,
		sessions:  sessions,
		clock:     clock,
		logger:    logger,
	}
}

// GetTopics retrieves all syllabus topics
func (s *quizService) GetTopics(ctx context.Context) ([]models.Topic, error) {
	topics, err := s.questions.GetTopics(ctx)
	if err != nil {
		s.logger.Error("failed to get topics", zap.Error(err))
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	return topics, nil
}

// BuildQuiz assembles a practice quiz for a user and topic.
//
// Due review questions belonging to the topic come first, most overdue first,
// then random topic questions fill the quiz up to "count". Correct options and
// explanations are stripped from the result.
func (s *quizService) BuildQuiz(ctx context.Context, userID string, topicID, count int) ([]models.QuestionResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID must be non-empty", ErrInvalidArgument)
	}
	if topicID <= 0 {
		return nil, fmt.Errorf("%w: invalid topic id", ErrInvalidArgument)
	}
	if count <= 0 {
		count = defaultQuizSize
	}
	if count > maxQuizSize {
		count = maxQuizSize
	}

	dueIDs, err := s.scheduler.GetDueQuestions(ctx, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to get due questions: %w", err)
	}

	dueQuestions, err := s.questions.GetByIDs(ctx, dueIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// GetByIDs does not preserve order; restore the most-overdue-first ordering
	byID := make(map[string]models.Question, len(dueQuestions))
	for _, q := range dueQuestions {
		byID[q.ID] = q
	}

	quiz := make([]models.QuestionResponse, 0, count)
	taken := make([]string, 0, count)
	for _, id := range dueIDs {
		if len(quiz) == count {
			break
		}
		q, ok := byID[id]
		if !ok || q.TopicID != topicID {
			continue
		}
		quiz = append(quiz, q.ToResponse())
		taken = append(taken, q.ID)
	}

	if len(quiz) < count {
		fresh, err := s.questions.GetRandomByTopic(ctx, topicID, taken, count-len(quiz))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		for _, q := range fresh {
			quiz = append(quiz, q.ToResponse())
		}
	}

	return quiz, nil
}

// SubmitQuiz grades a finished quiz: every answer is routed into the
// spaced-repetition schedule in input order and one study session row is
// written with the aggregate counts and earned XP.
//
// Scheduling updates are applied sequentially and are not atomic across the
// batch; a storage failure aborts the remaining answers and is returned to the
// caller.
func (s *quizService) SubmitQuiz(ctx context.Context, userID string, answers []models.ReviewOutcome, startedAt time.Time) (*models.QuizResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID must be non-empty", ErrInvalidArgument)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers must be non-empty", ErrInvalidArgument)
	}

	result := &models.QuizResult{TotalQuestions: len(answers)}
	for i, answer := range answers {
		if err := s.scheduler.RecordReview(ctx, userID, answer.QuestionID, answer.IsCorrect); err != nil {
			return nil, fmt.Errorf("answer %d (question %s): %w", i, answer.QuestionID, err)
		}
		if answer.IsCorrect {
			result.Correct++
		} else {
			result.Incorrect++
		}
	}

	result.XPEarned = result.Correct * xpPerCorrect
	if result.Incorrect == 0 {
		result.XPEarned += xpSessionBonus
	}

	now := s.clock.Now()
	if startedAt.IsZero() || startedAt.After(now) {
		startedAt = now
	}

	session := &models.StudySession{
		UserID:         userID,
		StartedAt:      startedAt,
		FinishedAt:     now,
		TotalQuestions: result.TotalQuestions,
		Correct:        result.Correct,
		Incorrect:      result.Incorrect,
		XPEarned:       result.XPEarned,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		// The schedule updates are already committed; surface the session
		// failure rather than hiding it.
		s.logger.Error("failed to record study session", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return result, nil
}
