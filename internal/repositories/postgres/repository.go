package postgres

import (
	"github.com/echo-english/practice-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	lesson repositories.LessonRepository
}

// NewRepository builds the PostgreSQL-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		lesson: NewLessonPostgreSQL(db),
	}
}

func (r *repository) Lesson() repositories.LessonRepository {
	return r.lesson
}
