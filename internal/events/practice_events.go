package events

import (
	"time"

	"github.com/echo-english/practice-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of practice events
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"
	EventSessionDiscarded EventType = "session.discarded"

	// Grading events
	EventItemGraded EventType = "item.graded"

	// Generation events
	EventClozeGenerated    EventType = "generation.cloze_completed"
	EventDialogueGenerated EventType = "generation.dialogue_completed"
)

// PracticeEvent is the base event structure for all practice events
type PracticeEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewPracticeEvent builds an event envelope with the service identity filled in.
func NewPracticeEvent(eventType EventType, data interface{}) *PracticeEvent {
	return &PracticeEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "practice-service",
		Version:   "1.0",
		Data:      data,
	}
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID string    `json:"session_id"`
	LessonID  uint      `json:"lesson_id,omitempty"`
	LearnerID string    `json:"learner_id,omitempty"`
	ItemCount int       `json:"item_count"`
	StartedAt time.Time `json:"started_at"`
}

type SessionCompletedEvent struct {
	SessionID    string    `json:"session_id"`
	LearnerID    string    `json:"learner_id,omitempty"`
	CorrectCount int       `json:"correct_count"`
	TotalCount   int       `json:"total_count"`
	CompletedAt  time.Time `json:"completed_at"`
}

type SessionDiscardedEvent struct {
	SessionID   string    `json:"session_id"`
	DiscardedAt time.Time `json:"discarded_at"`
}

// Grading event payloads

type ItemGradedEvent struct {
	SessionID string                `json:"session_id"`
	ItemIndex int                   `json:"item_index"`
	Attempt   models.GradingAttempt `json:"attempt"`
	ItemState models.ItemState      `json:"item_state"`
}

// Generation event payloads

type ClozeGeneratedEvent struct {
	LessonID       uint   `json:"lesson_id"`
	Keyword        string `json:"keyword"`
	RequestedCount int    `json:"requested_count"`
	AcceptedCount  int    `json:"accepted_count"`
	RejectedCount  int    `json:"rejected_count"`
	FromCache      bool   `json:"from_cache"`
}

type DialogueGeneratedEvent struct {
	Keyword    string `json:"keyword"`
	AudioBytes int    `json:"audio_bytes"`
	HasAudio   bool   `json:"has_audio"`
}
