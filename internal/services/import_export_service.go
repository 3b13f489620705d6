package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/repositories"
	"github.com/echo-english/practice-service/internal/validator"
)

// ImportExportService handles bulk lesson ingestion from spreadsheet files and
// exports of session results for review outside the app.
type ImportExportService interface {
	// Import operations
	ImportLessonsFromFile(ctx context.Context, file multipart.File, filename string) (*ImportResult, error)
	ImportLessonsFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error)
	ImportLessonsFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error)

	// Export operations
	ExportSessionResults(ctx context.Context, sessionID string) ([]byte, error)
}

type importExportService struct {
	repo      repositories.Repository
	sessions  SessionService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, sessions SessionService, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		sessions:  sessions,
		logger:    logger,
		validator: validator,
	}
}

// ===== IMPORT OPERATIONS =====

// ImportRowError describes one rejected spreadsheet row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

type ImportResult struct {
	TotalRows     int              `json:"total_rows"`
	ProcessedRows int              `json:"processed_rows"`
	LessonCount   int              `json:"lesson_count"`
	QuestionCount int              `json:"question_count"`
	ErrorCount    int              `json:"error_count"`
	Errors        []ImportRowError `json:"errors,omitempty"`
}

// Each data row describes one cloze question and names the lesson it belongs
// to; lessons are created on first appearance of a (day, keyword) pair.
var requiredImportColumns = []string{"day", "keyword", "prompt", "answers"}

func (s *importExportService) ImportLessonsFromFile(ctx context.Context, file multipart.File, filename string) (*ImportResult, error) {
	s.logger.Info("Starting lesson import", "filename", filename)

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return s.ImportLessonsFromCSV(ctx, file)
	case ".xlsx", ".xls":
		return s.ImportLessonsFromExcel(ctx, file)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportLessonsFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return s.importRows(ctx, records)
}

func (s *importExportService) ImportLessonsFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	return s.importRows(ctx, rows)
}

func (s *importExportService) importRows(ctx context.Context, rows [][]string) (*ImportResult, error) {
	if len(rows) < 2 {
		return nil, NewValidationError("file", "file must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	for _, col := range requiredImportColumns {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}

	// Lessons keyed by (day, keyword) so question rows for the same lesson
	// share one record.
	lessons := make(map[string]*models.Lesson)
	var order []string

	for rowIndex, record := range rows[1:] {
		rowNum := rowIndex + 2
		lesson, question, rowErrors := s.parseRow(record, headerMap, rowNum)
		result.ProcessedRows++
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorCount++
			continue
		}

		key := fmt.Sprintf("%d:%s", lesson.Day, lesson.Keyword)
		existing, seen := lessons[key]
		if !seen {
			lessons[key] = lesson
			order = append(order, key)
			existing = lesson
		}
		existing.Questions = append(existing.Questions, *question)
		result.QuestionCount++
	}

	for _, key := range order {
		lesson := lessons[key]
		if err := s.repo.Lesson().Create(ctx, lesson); err != nil {
			return nil, fmt.Errorf("failed to create lesson day %d: %w", lesson.Day, err)
		}
		result.LessonCount++
	}

	s.logger.Info("Lesson import completed",
		"total_rows", result.TotalRows,
		"lessons", result.LessonCount,
		"questions", result.QuestionCount,
		"error_count", result.ErrorCount)

	return result, nil
}

func (s *importExportService) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Lesson, *models.ClozeQuestion, []ImportRowError) {
	var rowErrors []ImportRowError

	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}

	day, err := strconv.Atoi(getColumn("day"))
	if err != nil || day < 1 {
		rowErrors = append(rowErrors, ImportRowError{
			Row: rowNum, Column: "day", Message: "must be a positive integer", Value: getColumn("day"),
		})
		return nil, nil, rowErrors
	}

	keyword := getColumn("keyword")
	if keyword == "" {
		rowErrors = append(rowErrors, ImportRowError{
			Row: rowNum, Column: "keyword", Message: "required field",
		})
		return nil, nil, rowErrors
	}

	level := models.CEFRLevel(strings.ToUpper(getColumn("level")))
	if level != "" && !level.Valid() {
		rowErrors = append(rowErrors, ImportRowError{
			Row: rowNum, Column: "level", Message: "must be a valid CEFR level (A1, A2, B1, B2, C1, C2)", Value: string(level),
		})
		return nil, nil, rowErrors
	}

	// Answers are pipe-separated so commas stay available inside answer text.
	var answers []string
	for _, answer := range strings.Split(getColumn("answers"), "|") {
		if answer = strings.TrimSpace(answer); answer != "" {
			answers = append(answers, answer)
		}
	}

	candidate := models.ClozeCandidate{
		Prompt:    getColumn("prompt"),
		Answers:   answers,
		Rationale: getColumn("rationale"),
	}
	item, err := s.validator.Cloze().Validate(candidate)
	if err != nil {
		rowErrors = append(rowErrors, ImportRowError{
			Row: rowNum, Column: "prompt", Message: err.Error(), Value: candidate.Prompt,
		})
		return nil, nil, rowErrors
	}

	answersJSON, err := json.Marshal(item.Answers)
	if err != nil {
		rowErrors = append(rowErrors, ImportRowError{
			Row: rowNum, Column: "answers", Message: "failed to serialize answers",
		})
		return nil, nil, rowErrors
	}

	lesson := &models.Lesson{
		Day:            day,
		Keyword:        keyword,
		Level:          level,
		AudioURL:       getColumn("audio_url"),
		TranscriptPath: getColumn("transcript_path"),
	}

	question := &models.ClozeQuestion{
		Prompt:  item.Prompt,
		Answers: datatypes.JSON(answersJSON),
	}
	if item.Rationale != "" {
		rationale := item.Rationale
		question.Rationale = &rationale
	}

	return lesson, question, nil
}

// ===== EXPORT OPERATIONS =====

// ExportSessionResults writes one spreadsheet row per item with its attempt
// history summarized, plus a trailing score row.
func (s *importExportService) ExportSessionResults(ctx context.Context, sessionID string) ([]byte, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Item", "Prompt", "Accepted Answers", "State", "Attempts", "Last Submission", "Last Distance",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for itemIndex, item := range session.Items {
		attempts := session.Attempts[itemIndex]

		row := []interface{}{
			itemIndex + 1,
			item.Prompt,
			strings.Join(item.Answers, " | "),
			string(session.ItemStateAt(itemIndex)),
			len(attempts),
		}
		if len(attempts) > 0 {
			last := attempts[len(attempts)-1]
			row = append(row, last.SubmittedText, last.Distance)
		} else {
			row = append(row, "", "")
		}

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, itemIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	score := session.Score()
	scoreRow := len(session.Items) + 3
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", scoreRow), "Score")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", scoreRow), fmt.Sprintf("%d / %d", score.CorrectCount, score.TotalCount))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}
