package repositories

import (
	"context"
	"errors"

	"github.com/echo-english/practice-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type LessonFilters struct {
	Level     *models.CEFRLevel `json:"level"`
	Keyword   string            `json:"keyword"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
	SortBy    string            `json:"sort_by"`    // "day", "created_at"
	SortOrder string            `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// LessonRepository is the content source: lesson metadata and the
// pre-authored cloze questions that bypass generation.
type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	GetByID(ctx context.Context, id uint) (*models.Lesson, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Lesson, error)
	List(ctx context.Context, filters LessonFilters) ([]*models.Lesson, int64, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id uint) error

	AddQuestions(ctx context.Context, lessonID uint, questions []*models.ClozeQuestion) error
	GetQuestions(ctx context.Context, lessonID uint) ([]*models.ClozeQuestion, error)
}

// Repository aggregates all persistence access.
type Repository interface {
	Lesson() LessonRepository
}

// IsNotFoundError reports whether err is the database "record not found"
// condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
