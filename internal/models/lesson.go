package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CEFRLevel string

const (
	LevelA1 CEFRLevel = "A1"
	LevelA2 CEFRLevel = "A2"
	LevelB1 CEFRLevel = "B1"
	LevelB2 CEFRLevel = "B2"
	LevelC1 CEFRLevel = "C1"
	LevelC2 CEFRLevel = "C2"
)

// Valid reports whether the level is one of the six CEFR levels.
func (l CEFRLevel) Valid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	}
	return false
}

// Lesson is one day of listening material: an audio file, its transcript, and
// the topical keyword the lesson practices.
type Lesson struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Day            int       `json:"day" gorm:"not null;index" validate:"required,min=1"`
	Keyword        string    `json:"keyword" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Level          CEFRLevel `json:"level" gorm:"default:B1" validate:"omitempty,cefr_level"`
	AudioURL       string    `json:"audio_url" gorm:"not null;size:500" validate:"required,max=500"`
	TranscriptPath string    `json:"transcript_path" gorm:"not null;size:500" validate:"required,max=500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Pre-authored cloze questions that bypass generation.
	Questions []ClozeQuestion `json:"questions,omitempty" gorm:"foreignKey:LessonID"`
}

// ClozeQuestion is a persisted, pre-authored cloze item attached to a lesson.
// Accepted answers are stored as a JSON array.
type ClozeQuestion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	LessonID  uint           `json:"lesson_id" gorm:"not null;index"`
	Prompt    string         `json:"prompt" gorm:"type:text;not null"`
	Answers   datatypes.JSON `json:"answers" gorm:"not null"`
	Rationale *string        `json:"rationale,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "lessons"
}

func (ClozeQuestion) TableName() string {
	return "cloze_questions"
}
