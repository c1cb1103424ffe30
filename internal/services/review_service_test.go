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

// fixedClock returns a constant instant
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// mockReviewRepository is an in-memory mock implementation of ReviewRepository
type mockReviewRepository struct {
	records map[string]*models.ReviewRecord
	due     []string
	stats   *models.ReviewStats

	getErr    error
	upsertErr error
	dueErr    error
	statsErr  error

	upserts     int
	lastDueAsOf time.Time
}

func newMockReviewRepository() *mockReviewRepository {
	return &mockReviewRepository{records: make(map[string]*models.ReviewRecord)}
}

func (m *mockReviewRepository) GetByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.ReviewRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[userID+"/"+questionID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (m *mockReviewRepository) Upsert(ctx context.Context, rec *models.ReviewRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	copied := *rec
	m.records[rec.UserID+"/"+rec.QuestionID] = &copied
	m.upserts++
	return nil
}

func (m *mockReviewRepository) GetDueQuestions(ctx context.Context, userID string, asOf time.Time) ([]string, error) {
	if m.dueErr != nil {
		return nil, m.dueErr
	}
	m.lastDueAsOf = asOf
	return m.due, nil
}

func (m *mockReviewRepository) GetStats(ctx context.Context, userID string, now time.Time) (*models.ReviewStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

var testClockTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestReviewService(repo *mockReviewRepository) *reviewService {
	logger, _ := zap.NewDevelopment()
	return NewReviewService(repo, fixedClock{now: testClockTime}, logger)
}

func TestNewReviewService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := newMockReviewRepository()

	svc := NewReviewService(repo, SystemClock{}, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.repo)
	assert.Equal(t, logger, svc.logger)
}

func TestReviewService_RecordReview_FirstCorrect(t *testing.T) {
	repo := newMockReviewRepository()
	svc := newTestReviewService(repo)

	err := svc.RecordReview(context.Background(), "user-1", "question-1", true)
	require.NoError(t, err)

	rec := repo.records["user-1/question-1"]
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.Repetitions)
	assert.Equal(t, 1, rec.IntervalDays)
	assert.InDelta(t, 2.5, rec.EaseFactor, 0.0001)
	assert.Equal(t, testClockTime, rec.LastReviewedAt)
	assert.Equal(t, testClockTime.AddDate(0, 0, 1), rec.NextReviewAt)
	assert.Equal(t, 1, rec.TimesSeen)
	assert.Equal(t, 1, rec.TimesCorrect)
	assert.Equal(t, 0, rec.TimesIncorrect)
}

func TestReviewService_RecordReview_CorrectSequence(t *testing.T) {
	repo := newMockReviewRepository()
	svc := newTestReviewService(repo)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordReview(context.Background(), "user-1", "question-1", true))
	}

	rec := repo.records["user-1/question-1"]
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.Repetitions)
	// Second pass gives 6 days, third multiplies by the ease factor
	assert.Equal(t, 15, rec.IntervalDays)
	assert.Equal(t, 3, rec.TimesSeen)
	assert.Equal(t, 3, rec.TimesCorrect)
}

func TestReviewService_RecordReview_FailureResets(t *testing.T) {
	repo := newMockReviewRepository()
	repo.records["user-1/question-1"] = &models.ReviewRecord{
		UserID:         "user-1",
		QuestionID:     "question-1",
		LastReviewedAt: testClockTime.AddDate(0, 0, -20),
		NextReviewAt:   testClockTime,
		EaseFactor:     2.6,
		IntervalDays:   20,
		Repetitions:    5,
		TimesSeen:      5,
		TimesCorrect:   5,
	}
	svc := newTestReviewService(repo)

	err := svc.RecordReview(context.Background(), "user-1", "question-1", false)
	require.NoError(t, err)

	rec := repo.records["user-1/question-1"]
	require.NotNil(t, rec)
	assert.Equal(t, 0, rec.Repetitions)
	assert.Equal(t, 1, rec.IntervalDays)
	// An incorrect answer still lowers the ease factor
	assert.InDelta(t, 2.06, rec.EaseFactor, 0.0001)
	assert.Equal(t, testClockTime.AddDate(0, 0, 1), rec.NextReviewAt)
	assert.Equal(t, 6, rec.TimesSeen)
	assert.Equal(t, 5, rec.TimesCorrect)
	assert.Equal(t, 1, rec.TimesIncorrect)
}

func TestReviewService_RecordReview_Validation(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		questionID string
	}{
		{name: "empty user id", userID: "", questionID: "question-1"},
		{name: "empty question id", userID: "user-1", questionID: ""},
		{name: "both empty", userID: "", questionID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockReviewRepository()
			svc := newTestReviewService(repo)

			err := svc.RecordReview(context.Background(), tt.userID, tt.questionID, true)

			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, 0, repo.upserts)
		})
	}
}

func TestReviewService_RecordReview_StorageErrors(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		repo := newMockReviewRepository()
		repo.getErr = errors.New("database error")
		svc := newTestReviewService(repo)

		err := svc.RecordReview(context.Background(), "user-1", "question-1", true)

		assert.ErrorIs(t, err, ErrStorage)
	})

	t.Run("upsert failure", func(t *testing.T) {
		repo := newMockReviewRepository()
		repo.upsertErr = errors.New("database error")
		svc := newTestReviewService(repo)

		err := svc.RecordReview(context.Background(), "user-1", "question-1", true)

		assert.ErrorIs(t, err, ErrStorage)
	})
}

func TestReviewService_RecordBatchReviews(t *testing.T) {
	t.Run("applies outcomes in order", func(t *testing.T) {
		repo := newMockReviewRepository()
		svc := newTestReviewService(repo)

		outcomes := []models.ReviewOutcome{
			{QuestionID: "question-1", IsCorrect: true},
			{QuestionID: "question-2", IsCorrect: false},
			{QuestionID: "question-1", IsCorrect: true},
		}

		err := svc.RecordBatchReviews(context.Background(), "user-1", outcomes)

		require.NoError(t, err)
		assert.Equal(t, 3, repo.upserts)
		assert.Equal(t, 2, repo.records["user-1/question-1"].Repetitions)
		assert.Equal(t, 0, repo.records["user-1/question-2"].Repetitions)
	})

	t.Run("stops at first failure and names the position", func(t *testing.T) {
		repo := newMockReviewRepository()
		svc := newTestReviewService(repo)

		outcomes := []models.ReviewOutcome{
			{QuestionID: "question-1", IsCorrect: true},
			{QuestionID: "", IsCorrect: true},
			{QuestionID: "question-3", IsCorrect: true},
		}

		err := svc.RecordBatchReviews(context.Background(), "user-1", outcomes)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Contains(t, err.Error(), "outcome 1")
		// The first outcome is already committed
		assert.Equal(t, 1, repo.upserts)
	})

	t.Run("empty user id", func(t *testing.T) {
		repo := newMockReviewRepository()
		svc := newTestReviewService(repo)

		err := svc.RecordBatchReviews(context.Background(), "", nil)

		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		repo := newMockReviewRepository()
		svc := newTestReviewService(repo)

		err := svc.RecordBatchReviews(context.Background(), "user-1", nil)

		assert.NoError(t, err)
		assert.Equal(t, 0, repo.upserts)
	})
}

func TestReviewService_GetDueQuestions(t *testing.T) {
	t.Run("zero asOf uses the clock", func(t *testing.T) {
		repo := newMockReviewRepository()
		repo.due = []string{"question-2", "question-1"}
		svc := newTestReviewService(repo)

		due, err := svc.GetDueQuestions(context.Background(), "user-1", time.Time{})

		require.NoError(t, err)
		assert.Equal(t, []string{"question-2", "question-1"}, due)
		assert.Equal(t, testClockTime, repo.lastDueAsOf)
	})

	t.Run("explicit asOf is passed through", func(t *testing.T) {
		repo := newMockReviewRepository()
		repo.due = []string{}
		svc := newTestReviewService(repo)

		asOf := testClockTime.AddDate(0, 0, 7)
		due, err := svc.GetDueQuestions(context.Background(), "user-1", asOf)

		require.NoError(t, err)
		assert.Empty(t, due)
		assert.Equal(t, asOf, repo.lastDueAsOf)
	})

	t.Run("empty user id", func(t *testing.T) {
		repo := newMockReviewRepository()
		svc := newTestReviewService(repo)

		due, err := svc.GetDueQuestions(context.Background(), "", time.Time{})

		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Nil(t, due)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := newMockReviewRepository()
		repo.dueErr = errors.New("database error")
		svc := newTestReviewService(repo)

		due, err := svc.GetDueQuestions(context.Background(), "user-1", time.Time{})

		assert.ErrorIs(t, err, ErrStorage)
		assert.Nil(t, due)
	})
}

func TestReviewService_GetReviewStats(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newMockReviewRepository()
		repo.stats = &models.ReviewStats{DueCount: 2, TotalReviewed: 8, AvgAccuracy: 0.5}
		svc := newTestReviewService(repo)

		stats, err := svc.GetReviewStats(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, repo.stats, stats)
	})

	t.Run("no history yields nil stats", func(t *testing.T) {
		repo := newMockReviewRepository()
		svc := newTestReviewService(repo)

		stats, err := svc.GetReviewStats(context.Background(), "user-1")

		assert.NoError(t, err)
		assert.Nil(t, stats)
	})

	t.Run("empty user id", func(t *testing.T) {
		repo := newMockReviewRepository()
		svc := newTestReviewService(repo)

		stats, err := svc.GetReviewStats(context.Background(), "")

		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Nil(t, stats)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := newMockReviewRepository()
		repo.statsErr = errors.New("database error")
		svc := newTestReviewService(repo)

		stats, err := svc.GetReviewStats(context.Background(), "user-1")

		assert.ErrorIs(t, err, ErrStorage)
		assert.Nil(t, stats)
	})
}
