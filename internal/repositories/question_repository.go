package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/accaprep/backend/internal/models"
	"go.uber.org/zap"
)

type questionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB, logger *zap.Logger) *questionRepository {
	return &questionRepository{
		db:     db,
		logger: logger,
	}
}

const questionColumns = `id, topic_id, text, option_a, option_b, option_c, option_d, correct_option, explanation, difficulty`

// scanQuestion scans one row into a Question
func scanQuestion(row interface{ Scan(...any) error }, q *models.Question) error {
	return row.Scan(
		&q.ID,
		&q.TopicID,
		&q.Text,
		&q.OptionA,
		&q.OptionB,
		&q.OptionC,
		&q.OptionD,
		&q.CorrectOption,
		&q.Explanation,
		&q.Difficulty,
	)
}

// GetByID retrieves a question by its ID
func (r *questionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE id = ?`, questionColumns)

	var q models.Question
	if err := scanQuestion(r.db.QueryRowContext(ctx, query, id), &q); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to query question by id", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to query question: %w", err)
	}

	return &q, nil
}

// GetByTopic retrieves all questions for a topic ordered by ID
func (r *questionRepository) GetByTopic(ctx context.Context, topicID int) ([]models.Question, error) {
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE topic_id = ? ORDER BY id`, questionColumns)

	rows, err := r.db.QueryContext(ctx, query, topicID)
	if err != nil {
		r.logger.Error("failed to query questions by topic", zap.Error(err), zap.Int("topic_id", topicID))
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := scanQuestion(rows, &q); err != nil {
			r.logger.Error("failed to scan question", zap.Error(err))
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}

// GetByIDs retrieves a set of questions by ID, preserving no particular order
func (r *questionRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}

	// Prepare the query for IN clause
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i := range ids {
		placeholders[i] = "?"
		args[i] = ids[i]
	}

	query := fmt.Sprintf(`SELECT %s FROM questions WHERE id IN (%s)`,
		questionColumns, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query questions by ids", zap.Error(err))
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := scanQuestion(rows, &q); err != nil {
			r.logger.Error("failed to scan question", zap.Error(err))
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}

// GetRandomByTopic retrieves up to count random questions for a topic,
// excluding the given question IDs
func (r *questionRepository) GetRandomByTopic(ctx context.Context, topicID int, excludeIDs []string, count int) ([]models.Question, error) {
	args := []any{topicID}

	exclude := ""
	if len(excludeIDs) > 0 {
		placeholders := make([]string, len(excludeIDs))
		for i := range excludeIDs {
			placeholders[i] = "?"
			args = append(args, excludeIDs[i])
		}
		exclude = fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(placeholders, ","))
	}
	args = append(args, count)

	query := fmt.Sprintf(`SELECT %s FROM questions WHERE topic_id = ?%s ORDER BY RAND() LIMIT ?`,
		questionColumns, exclude)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query random questions", zap.Error(err), zap.Int("topic_id", topicID))
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := scanQuestion(rows, &q); err != nil {
			r.logger.Error("failed to scan question", zap.Error(err))
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}

// GetIDByText returns the ID of the question with the exact given text within
// a topic, or an empty string when none exists. Used by the importer to detect
// already imported questions.
func (r *questionRepository) GetIDByText(ctx context.Context, topicID int, text string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM questions WHERE topic_id = ? AND text = ?`, topicID, text).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		r.logger.Error("failed to query question by text", zap.Error(err))
		return "", fmt.Errorf("failed to query question by text: %w", err)
	}
	return id, nil
}

// Create inserts a new question
func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	query := `
		INSERT INTO questions
		(id, topic_id, text, option_a, option_b, option_c, option_d, correct_option, explanation, difficulty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.TopicID, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectOption, q.Explanation, q.Difficulty)
	if err != nil {
		r.logger.Error("failed to create question", zap.Error(err), zap.String("id", q.ID))
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

// Update modifies an existing question
func (r *questionRepository) Update(ctx context.Context, q *models.Question) error {
	query := `
		UPDATE questions SET
			topic_id = ?, text = ?, option_a = ?, option_b = ?, option_c = ?, option_d = ?,
			correct_option = ?, explanation = ?, difficulty = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		q.TopicID, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectOption, q.Explanation, q.Difficulty, q.ID)
	if err != nil {
		r.logger.Error("failed to update question", zap.Error(err), zap.String("id", q.ID))
		return fmt.Errorf("failed to update question: %w", err)
	}

	return nil
}

// Delete removes a question. The returned bool reports whether a row was
// actually deleted.
func (r *questionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete question", zap.Error(err), zap.String("id", id))
		return false, fmt.Errorf("failed to delete question: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

// GetTopics retrieves all topics ordered by ID
func (r *questionRepository) GetTopics(ctx context.Context) ([]models.Topic, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM topics ORDER BY id`)
	if err != nil {
		r.logger.Error("failed to query topics", zap.Error(err))
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			r.logger.Error("failed to scan topic", zap.Error(err))
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return topics, nil
}

// GetOrCreateTopic returns the ID of the topic with the given name, creating
// it when it does not exist yet
func (r *questionRepository) GetOrCreateTopic(ctx context.Context, name string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `SELECT id FROM topics WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		r.logger.Error("failed to query topic", zap.Error(err), zap.String("name", name))
		return 0, fmt.Errorf("failed to query topic: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `INSERT INTO topics (name, description) VALUES (?, '')`, name)
	if err != nil {
		r.logger.Error("failed to create topic", zap.Error(err), zap.String("name", name))
		return 0, fmt.Errorf("failed to create topic: %w", err)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get topic id: %w", err)
	}

	return int(newID), nil
}
