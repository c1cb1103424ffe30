// Package importer loads question banks from XLSX or CSV files into the database
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/accaprep/backend/internal/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Expected columns, in order: topic, question text, options A-D, correct
// option letter, explanation, difficulty (1-3).
const columnCount = 9

// QuestionStore is the interface that wraps the question repository methods the importer needs
type QuestionStore interface {
	// Method GetOrCreateTopic returns the ID of the topic with the given name, creating it when missing.
	//
	// If some error occurs, the error will be returned.
	GetOrCreateTopic(ctx context.Context, name string) (int, error)
	// Method GetIDByText returns the ID of the question with the exact given text within a topic,
	// or an empty string when none exists.
	//
	// If some error occurs during data retrieval, the error will be returned.
	GetIDByText(ctx context.Context, topicID int, text string) (string, error)
	// Method Create inserts a new question.
	//
	// If some error occurs during the insert, the error will be returned.
	Create(ctx context.Context, q *models.Question) error
	// Method Update modifies an existing question.
	//
	// If some error occurs during the update, the error will be returned.
	Update(ctx context.Context, q *models.Question) error
}

// Result holds the outcome of an import operation
type Result struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// Importer imports question banks into the question store
type Importer struct {
	store  QuestionStore
	logger *zap.Logger
}

// New creates a new importer
func New(store QuestionStore, logger *zap.Logger) *Importer {
	return &Importer{
		store:  store,
		logger: logger,
	}
}

// Import reads a question bank from r and upserts it into the store. The
// format is chosen from the file name extension (.xlsx or .csv).
func (im *Importer) Import(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	ext := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(ext, ".xlsx"):
		return im.importXLSX(ctx, r)
	case strings.HasSuffix(ext, ".csv"):
		return im.importCSV(ctx, r)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filename)
	}
}

// importXLSX imports questions from the first sheet of an XLSX workbook.
// The first row is treated as a header and skipped.
func (im *Importer) importXLSX(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	result := &Result{Errors: []string{}}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		im.importRow(ctx, result, i+1, row)
	}

	return result, nil
}

// importCSV imports questions from a CSV file. The first row is treated as a
// header and skipped.
func (im *Importer) importCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // validated per row

	result := &Result{Errors: []string{}}
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if line == 1 {
			continue // header
		}
		im.importRow(ctx, result, line, row)
	}

	return result, nil
}

// importRow validates and upserts one question row, collecting per-row errors
// instead of aborting the whole import
func (im *Importer) importRow(ctx context.Context, result *Result, line int, row []string) {
	result.Processed++

	q, topicName, err := parseRow(row)
	if err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
		return
	}

	topicID, err := im.store.GetOrCreateTopic(ctx, topicName)
	if err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
		return
	}
	q.TopicID = topicID

	existingID, err := im.store.GetIDByText(ctx, topicID, q.Text)
	if err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
		return
	}

	if existingID != "" {
		q.ID = existingID
		if err := im.store.Update(ctx, q); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			return
		}
		result.Updated++
		return
	}

	q.ID = uuid.New().String()
	if err := im.store.Create(ctx, q); err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
		return
	}
	result.Created++
}

// parseRow converts one raw row into a question plus its topic name
func parseRow(row []string) (*models.Question, string, error) {
	if len(row) < columnCount {
		return nil, "", fmt.Errorf("expected %d columns, got %d", columnCount, len(row))
	}

	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	topicName := row[0]
	if topicName == "" {
		return nil, "", fmt.Errorf("topic is required")
	}
	if row[1] == "" {
		return nil, "", fmt.Errorf("question text is required")
	}

	correct := strings.ToUpper(row[6])
	if correct != "A" && correct != "B" && correct != "C" && correct != "D" {
		return nil, "", fmt.Errorf("correct option must be A, B, C or D, got %q", row[6])
	}

	difficulty := 1
	if row[8] != "" {
		d, err := strconv.Atoi(row[8])
		if err != nil || d < 1 || d > 3 {
			return nil, "", fmt.Errorf("difficulty must be 1-3, got %q", row[8])
		}
		difficulty = d
	}

	return &models.Question{
		Text:          row[1],
		OptionA:       row[2],
		OptionB:       row[3],
		OptionC:       row[4],
		OptionD:       row[5],
		CorrectOption: correct,
		Explanation:   row[7],
		Difficulty:    difficulty,
	}, topicName, nil
}
