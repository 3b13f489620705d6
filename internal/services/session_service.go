package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/echo-english/practice-service/internal/events"
	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/textmatch"
)

// SessionService owns the ephemeral cloze sessions of active learners.
// Sessions live in memory only; a per-session mutex serializes submissions so
// two concurrent submits for the same session cannot interleave.
type SessionService interface {
	Create(ctx context.Context, req *CreateSessionParams) (*models.ClozeSession, error)
	Get(ctx context.Context, sessionID string) (*models.ClozeSession, error)
	Submit(ctx context.Context, sessionID string, itemIndex int, submission string) (*SubmitResult, error)
	Score(ctx context.Context, sessionID string) (models.SessionScore, error)
	Discard(ctx context.Context, sessionID string) error
	SweepIdle(ctx context.Context) int
}

// CreateSessionParams carries the validated items a new session is built from.
type CreateSessionParams struct {
	LessonID  uint
	LearnerID string
	Items     []models.ClozeItem
}

// SubmitResult is the outcome of grading one submission.
type SubmitResult struct {
	Attempt   models.GradingAttempt `json:"attempt"`
	ItemState models.ItemState      `json:"item_state"`
	Score     models.SessionScore   `json:"score"`
}

type sessionEntry struct {
	mu          sync.Mutex
	session     *models.ClozeSession
	lastTouched time.Time
}

type sessionService struct {
	mu        sync.RWMutex
	sessions  map[string]*sessionEntry
	tolerance int
	idleTTL   time.Duration
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewSessionService(publisher events.EventPublisher, logger *slog.Logger, idleTTL time.Duration) SessionService {
	return &sessionService{
		sessions:  make(map[string]*sessionEntry),
		tolerance: textmatch.DefaultTolerance,
		idleTTL:   idleTTL,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *sessionService) Create(ctx context.Context, params *CreateSessionParams) (*models.ClozeSession, error) {
	if len(params.Items) == 0 {
		return nil, ErrEmptySession
	}

	session := &models.ClozeSession{
		ID:        uuid.NewString(),
		LessonID:  params.LessonID,
		LearnerID: params.LearnerID,
		Items:     params.Items,
		Attempts:  make([][]models.GradingAttempt, len(params.Items)),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session, lastTouched: session.CreatedAt}
	s.mu.Unlock()

	s.logger.Info("Cloze session created",
		"session_id", session.ID,
		"lesson_id", session.LessonID,
		"item_count", len(session.Items))

	s.publish(ctx, events.NewPracticeEvent(events.EventSessionStarted, events.SessionStartedEvent{
		SessionID: session.ID,
		LessonID:  session.LessonID,
		LearnerID: session.LearnerID,
		ItemCount: len(session.Items),
		StartedAt: session.CreatedAt,
	}))

	return snapshot(session), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.ClozeSession, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return snapshot(entry.session), nil
}

// Submit grades one submission against the item's accepted answers and
// appends the attempt to the item's history. History is append-only: prior
// attempts are never mutated, and a correct item stays correct no matter what
// is submitted afterwards.
func (s *sessionService) Submit(ctx context.Context, sessionID string, itemIndex int, submission string) (*SubmitResult, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	session := entry.session
	if itemIndex < 0 || itemIndex >= len(session.Items) {
		return nil, fmt.Errorf("%w: %d of %d items", ErrItemIndexOutOfRange, itemIndex, len(session.Items))
	}

	wasComplete := session.Score().CorrectCount == len(session.Items)

	item := session.Items[itemIndex]
	result, err := textmatch.Match(submission, item.Answers, s.tolerance)
	if err != nil {
		// Items are validated at ingestion, so an empty answer set here is a
		// programming error, not learner input.
		return nil, err
	}

	attempt := models.GradingAttempt{
		SubmittedText:  submission,
		NormalizedText: textmatch.Normalize(submission),
		Matched:        result.Matched,
		MatchedIndex:   result.MatchedIndex,
		Distance:       result.Distance,
		SubmittedAt:    time.Now(),
	}
	session.Attempts[itemIndex] = append(session.Attempts[itemIndex], attempt)
	entry.lastTouched = attempt.SubmittedAt

	state := session.ItemStateAt(itemIndex)
	score := session.Score()

	s.logger.Debug("Submission graded",
		"session_id", sessionID,
		"item_index", itemIndex,
		"matched", attempt.Matched,
		"distance", attempt.Distance,
		"item_state", state)

	s.publish(ctx, events.NewPracticeEvent(events.EventItemGraded, events.ItemGradedEvent{
		SessionID: sessionID,
		ItemIndex: itemIndex,
		Attempt:   attempt,
		ItemState: state,
	}))

	if !wasComplete && score.CorrectCount == score.TotalCount {
		s.publish(ctx, events.NewPracticeEvent(events.EventSessionCompleted, events.SessionCompletedEvent{
			SessionID:    sessionID,
			LearnerID:    session.LearnerID,
			CorrectCount: score.CorrectCount,
			TotalCount:   score.TotalCount,
			CompletedAt:  attempt.SubmittedAt,
		}))
	}

	return &SubmitResult{Attempt: attempt, ItemState: state, Score: score}, nil
}

func (s *sessionService) Score(ctx context.Context, sessionID string) (models.SessionScore, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return models.SessionScore{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Score(), nil
}

func (s *sessionService) Discard(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	s.logger.Info("Cloze session discarded", "session_id", sessionID)

	s.publish(ctx, events.NewPracticeEvent(events.EventSessionDiscarded, events.SessionDiscardedEvent{
		SessionID:   sessionID,
		DiscardedAt: time.Now(),
	}))

	return nil
}

// SweepIdle drops sessions untouched for longer than the idle TTL and returns
// how many were removed. Intended to run periodically from the server loop.
func (s *sessionService) SweepIdle(ctx context.Context) int {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	var expired []string
	for id, entry := range s.sessions {
		if entry.lastTouched.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		s.logger.Info("Swept idle sessions", "count", len(expired))
	}
	return len(expired)
}

func (s *sessionService) entry(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, exists := s.sessions[sessionID]
	s.mu.RUnlock()
	if !exists {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

func (s *sessionService) publish(ctx context.Context, event *events.PracticeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPracticeEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish practice event", "event_type", event.Type, "error", err)
	}
}

// snapshot returns a copy whose slices the caller can hold without racing
// later submissions.
func snapshot(session *models.ClozeSession) *models.ClozeSession {
	copied := *session
	copied.Items = append([]models.ClozeItem(nil), session.Items...)
	copied.Attempts = make([][]models.GradingAttempt, len(session.Attempts))
	for i, attempts := range session.Attempts {
		copied.Attempts[i] = append([]models.GradingAttempt(nil), attempts...)
	}
	return &copied
}
