package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/accaprep/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockQuestionRepository is a mock implementation of QuestionRepository
type mockQuestionRepository struct {
	questions map[string]models.Question
	random    []models.Question
	topics    []models.Topic
	err       error

	lastExcludeIDs []string
	lastRandomN    int
}

func (m *mockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (m *mockQuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Question
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepository) GetRandomByTopic(ctx context.Context, topicID int, excludeIDs []string, count int) ([]models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastExcludeIDs = excludeIDs
	m.lastRandomN = count
	if count > len(m.random) {
		count = len(m.random)
	}
	return m.random[:count], nil
}

func (m *mockQuestionRepository) GetTopics(ctx context.Context) ([]models.Topic, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.topics, nil
}

// mockScheduler is a mock implementation of ReviewScheduler
type mockScheduler struct {
	due       []string
	dueErr    error
	recordErr error
	recorded  []models.ReviewOutcome
}

func (m *mockScheduler) RecordReview(ctx context.Context, userID, questionID string, isCorrect bool) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, models.ReviewOutcome{QuestionID: questionID, IsCorrect: isCorrect})
	return nil
}

func (m *mockScheduler) GetDueQuestions(ctx context.Context, userID string, asOf time.Time) ([]string, error) {
	if m.dueErr != nil {
		return nil, m.dueErr
	}
	return m.due, nil
}

// mockSessionRepository is a mock implementation of StudySessionRepository
type mockSessionRepository struct {
	err     error
	created *models.StudySession
}

func (m *mockSessionRepository) Create(ctx context.Context, s *models.StudySession) error {
	if m.err != nil {
		return m.err
	}
	s.ID = 1
	m.created = s
	return nil
}

func quizQuestion(id string, topicID int) models.Question {
	return models.Question{
		ID:            id,
		TopicID:       topicID,
		Text:          "Question " + id,
		OptionA:       "A",
		OptionB:       "B",
		OptionC:       "C",
		OptionD:       "D",
		CorrectOption: "A",
		Explanation:   "because",
		Difficulty:    1,
	}
}

func newTestQuizService(questions *mockQuestionRepository, scheduler *mockScheduler, sessions *mockSessionRepository) *quizService {
	logger, _ := zap.NewDevelopment()
	return NewQuizService(questions, scheduler, sessions, fixedClock{now: testClockTime}, logger)
}

func TestQuizService_GetTopics(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		questions := &mockQuestionRepository{topics: []models.Topic{{ID: 1, Name: "Financial Accounting"}}}
		svc := newTestQuizService(questions, &mockScheduler{}, &mockSessionRepository{})

		topics, err := svc.GetTopics(context.Background())

		require.NoError(t, err)
		assert.Len(t, topics, 1)
	})

	t.Run("storage error", func(t *testing.T) {
		questions := &mockQuestionRepository{err: errors.New("database error")}
		svc := newTestQuizService(questions, &mockScheduler{}, &mockSessionRepository{})

		topics, err := svc.GetTopics(context.Background())

		assert.Error(t, err)
		assert.Nil(t, topics)
	})
}

func TestQuizService_BuildQuiz(t *testing.T) {
	t.Run("due questions come first then random fill", func(t *testing.T) {
		questions := &mockQuestionRepository{
			questions: map[string]models.Question{
				"due-1": quizQuestion("due-1", 1),
				"due-2": quizQuestion("due-2", 1),
				"other": quizQuestion("other", 2), // different topic, filtered out
			},
			random: []models.Question{
				quizQuestion("fresh-1", 1),
				quizQuestion("fresh-2", 1),
			},
		}
		scheduler := &mockScheduler{due: []string{"due-2", "due-1", "other"}}
		svc := newTestQuizService(questions, scheduler, &mockSessionRepository{})

		quiz, err := svc.BuildQuiz(context.Background(), "user-1", 1, 4)

		require.NoError(t, err)
		require.Len(t, quiz, 4)
		// Most overdue first, then the random fill
		assert.Equal(t, "due-2", quiz[0].ID)
		assert.Equal(t, "due-1", quiz[1].ID)
		assert.Equal(t, "fresh-1", quiz[2].ID)
		assert.Equal(t, "fresh-2", quiz[3].ID)
		assert.Equal(t, []string{"due-2", "due-1"}, questions.lastExcludeIDs)
		assert.Equal(t, 2, questions.lastRandomN)
	})

	t.Run("due questions are capped at the requested count", func(t *testing.T) {
		questions := &mockQuestionRepository{
			questions: map[string]models.Question{
				"due-1": quizQuestion("due-1", 1),
				"due-2": quizQuestion("due-2", 1),
				"due-3": quizQuestion("due-3", 1),
			},
		}
		scheduler := &mockScheduler{due: []string{"due-1", "due-2", "due-3"}}
		svc := newTestQuizService(questions, scheduler, &mockSessionRepository{})

		quiz, err := svc.BuildQuiz(context.Background(), "user-1", 1, 2)

		require.NoError(t, err)
		assert.Len(t, quiz, 2)
	})

	t.Run("answers are never exposed", func(t *testing.T) {
		questions := &mockQuestionRepository{
			questions: map[string]models.Question{"due-1": quizQuestion("due-1", 1)},
		}
		scheduler := &mockScheduler{due: []string{"due-1"}}
		svc := newTestQuizService(questions, scheduler, &mockSessionRepository{})

		quiz, err := svc.BuildQuiz(context.Background(), "user-1", 1, 1)

		require.NoError(t, err)
		require.Len(t, quiz, 1)
		assert.Equal(t, "Question due-1", quiz[0].Text)
		assert.NotEmpty(t, quiz[0].OptionA)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestQuizService(&mockQuestionRepository{}, &mockScheduler{}, &mockSessionRepository{})

		_, err := svc.BuildQuiz(context.Background(), "", 1, 10)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = svc.BuildQuiz(context.Background(), "user-1", 0, 10)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("due lookup failure", func(t *testing.T) {
		scheduler := &mockScheduler{dueErr: errors.New("database error")}
		svc := newTestQuizService(&mockQuestionRepository{}, scheduler, &mockSessionRepository{})

		quiz, err := svc.BuildQuiz(context.Background(), "user-1", 1, 10)

		assert.Error(t, err)
		assert.Nil(t, quiz)
	})
}

func TestQuizService_SubmitQuiz(t *testing.T) {
	answers := []models.ReviewOutcome{
		{QuestionID: "question-1", IsCorrect: true},
		{QuestionID: "question-2", IsCorrect: true},
		{QuestionID: "question-3", IsCorrect: false},
	}

	t.Run("grades answers and records a session", func(t *testing.T) {
		scheduler := &mockScheduler{}
		sessions := &mockSessionRepository{}
		svc := newTestQuizService(&mockQuestionRepository{}, scheduler, sessions)

		startedAt := testClockTime.Add(-10 * time.Minute)
		result, err := svc.SubmitQuiz(context.Background(), "user-1", answers, startedAt)

		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalQuestions)
		assert.Equal(t, 2, result.Correct)
		assert.Equal(t, 1, result.Incorrect)
		assert.Equal(t, 20, result.XPEarned)

		assert.Equal(t, answers, scheduler.recorded)
		require.NotNil(t, sessions.created)
		assert.Equal(t, startedAt, sessions.created.StartedAt)
		assert.Equal(t, testClockTime, sessions.created.FinishedAt)
		assert.Equal(t, 20, sessions.created.XPEarned)
	})

	t.Run("perfect session earns the bonus", func(t *testing.T) {
		scheduler := &mockScheduler{}
		sessions := &mockSessionRepository{}
		svc := newTestQuizService(&mockQuestionRepository{}, scheduler, sessions)

		perfect := []models.ReviewOutcome{
			{QuestionID: "question-1", IsCorrect: true},
			{QuestionID: "question-2", IsCorrect: true},
		}
		result, err := svc.SubmitQuiz(context.Background(), "user-1", perfect, testClockTime)

		require.NoError(t, err)
		assert.Equal(t, 40, result.XPEarned)
	})

	t.Run("future startedAt is clamped to now", func(t *testing.T) {
		sessions := &mockSessionRepository{}
		svc := newTestQuizService(&mockQuestionRepository{}, &mockScheduler{}, sessions)

		_, err := svc.SubmitQuiz(context.Background(), "user-1", answers, testClockTime.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, testClockTime, sessions.created.StartedAt)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestQuizService(&mockQuestionRepository{}, &mockScheduler{}, &mockSessionRepository{})

		_, err := svc.SubmitQuiz(context.Background(), "", answers, testClockTime)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = svc.SubmitQuiz(context.Background(), "user-1", nil, testClockTime)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("scheduling failure aborts the submit", func(t *testing.T) {
		scheduler := &mockScheduler{recordErr: errors.New("database error")}
		sessions := &mockSessionRepository{}
		svc := newTestQuizService(&mockQuestionRepository{}, scheduler, sessions)

		result, err := svc.SubmitQuiz(context.Background(), "user-1", answers, testClockTime)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Nil(t, sessions.created)
	})

	t.Run("session write failure is surfaced", func(t *testing.T) {
		sessions := &mockSessionRepository{err: errors.New("database error")}
		svc := newTestQuizService(&mockQuestionRepository{}, &mockScheduler{}, sessions)

		result, err := svc.SubmitQuiz(context.Background(), "user-1", answers, testClockTime)

		assert.ErrorIs(t, err, ErrStorage)
		assert.Nil(t, result)
	})
}

func TestLeaderboardService(t *testing.T) {
	t.Run("limit defaults and caps", func(t *testing.T) {
		repo := &mockLeaderboardRepository{entries: []models.LeaderboardEntry{{UserID: "user-1", XP: 100, Sessions: 2}}}
		logger, _ := zap.NewDevelopment()
		svc := NewLeaderboardService(repo, logger)

		_, err := svc.GetLeaderboard(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, defaultLeaderboardSize, repo.lastLimit)

		_, err = svc.GetLeaderboard(context.Background(), 1000)
		require.NoError(t, err)
		assert.Equal(t, maxLeaderboardSize, repo.lastLimit)
	})

	t.Run("user xp requires a user id", func(t *testing.T) {
		logger, _ := zap.NewDevelopment()
		svc := NewLeaderboardService(&mockLeaderboardRepository{}, logger)

		_, err := svc.GetUserXP(context.Background(), "")

		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

// mockLeaderboardRepository is a mock implementation of LeaderboardRepository
type mockLeaderboardRepository struct {
	entries   []models.LeaderboardEntry
	xp        int
	err       error
	lastLimit int
}

func (m *mockLeaderboardRepository) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastLimit = limit
	return m.entries, nil
}

func (m *mockLeaderboardRepository) GetUserXP(ctx context.Context, userID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.xp, nil
}
