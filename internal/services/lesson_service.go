package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/repositories"
	"github.com/echo-english/practice-service/internal/transcript"
	"github.com/echo-english/practice-service/internal/validator"
)

// LessonService exposes the static content source: lesson metadata, parsed
// transcripts, and pre-authored cloze items (which bypass generation but not
// validation).
type LessonService interface {
	List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Lesson, error)
	GetTranscript(ctx context.Context, id uint) (*models.Transcript, error)
	GetClozeItems(ctx context.Context, id uint) ([]models.ClozeItem, error)
}

type lessonService struct {
	repo       repositories.Repository
	validator  *validator.Validator
	contentDir string
	logger     *slog.Logger
}

func NewLessonService(repo repositories.Repository, v *validator.Validator, contentDir string, logger *slog.Logger) LessonService {
	return &lessonService{
		repo:       repo,
		validator:  v,
		contentDir: contentDir,
		logger:     logger,
	}
}

func (s *lessonService) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	lessons, total, err := s.repo.Lesson().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, total, nil
}

func (s *lessonService) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return lesson, nil
}

// GetTranscript reads the lesson's transcript file and parses timestamps and
// speaker labels into structured lines.
func (s *lessonService) GetTranscript(ctx context.Context, id uint) (*models.Transcript, error) {
	lesson, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.contentDir, filepath.Clean(lesson.TranscriptPath))
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("failed to read transcript %s: %w", lesson.TranscriptPath, err)
	}

	return &models.Transcript{
		LessonID: lesson.ID,
		Lines:    transcript.Parse(string(raw)),
	}, nil
}

// GetClozeItems loads the lesson's pre-authored questions and validates each
// one structurally. A malformed stored question is skipped with a warning, the
// same salvage rule applied to generation output.
func (s *lessonService) GetClozeItems(ctx context.Context, id uint) ([]models.ClozeItem, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	questions, err := s.repo.Lesson().GetQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cloze questions: %w", err)
	}

	items := make([]models.ClozeItem, 0, len(questions))
	for _, question := range questions {
		var answers []string
		if err := json.Unmarshal(question.Answers, &answers); err != nil {
			s.logger.Warn("Skipping cloze question with malformed answers",
				"lesson_id", id,
				"question_id", question.ID,
				"error", err)
			continue
		}

		candidate := models.ClozeCandidate{Prompt: question.Prompt, Answers: answers}
		if question.Rationale != nil {
			candidate.Rationale = *question.Rationale
		}

		item, err := s.validator.Cloze().Validate(candidate)
		if err != nil {
			s.logger.Warn("Skipping invalid pre-authored cloze question",
				"lesson_id", id,
				"question_id", question.ID,
				"error", err)
			continue
		}
		items = append(items, *item)
	}

	return items, nil
}
