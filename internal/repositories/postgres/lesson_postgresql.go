package postgres

import (
	"context"
	"fmt"

	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/repositories"
	"gorm.io/gorm"
)

type LessonPostgreSQL struct {
	db *gorm.DB
}

func NewLessonPostgreSQL(db *gorm.DB) repositories.LessonRepository {
	return &LessonPostgreSQL{db: db}
}

func (l *LessonPostgreSQL) Create(ctx context.Context, lesson *models.Lesson) error {
	if err := l.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// GetByID retrieves lesson metadata only.
func (l *LessonPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := l.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// GetByIDWithQuestions retrieves a lesson with its pre-authored cloze
// questions preloaded.
func (l *LessonPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := l.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (l *LessonPostgreSQL) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	query := l.db.WithContext(ctx).Model(&models.Lesson{})

	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.Keyword != "" {
		query = query.Where("keyword ILIKE ?", "%"+filters.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "day"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "desc" {
		sortOrder = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var lessons []*models.Lesson
	if err := query.Find(&lessons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list lessons: %w", err)
	}

	return lessons, total, nil
}

func (l *LessonPostgreSQL) Update(ctx context.Context, lesson *models.Lesson) error {
	if err := l.db.WithContext(ctx).Save(lesson).Error; err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return nil
}

func (l *LessonPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := l.db.WithContext(ctx).Delete(&models.Lesson{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}

func (l *LessonPostgreSQL) AddQuestions(ctx context.Context, lessonID uint, questions []*models.ClozeQuestion) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, question := range questions {
			question.LessonID = lessonID
		}
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("failed to add cloze questions: %w", err)
		}
		return nil
	})
}

func (l *LessonPostgreSQL) GetQuestions(ctx context.Context, lessonID uint) ([]*models.ClozeQuestion, error) {
	var questions []*models.ClozeQuestion
	err := l.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get cloze questions: %w", err)
	}
	return questions, nil
}
