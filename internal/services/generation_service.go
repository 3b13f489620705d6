package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/echo-english/practice-service/internal/ai"
	"github.com/echo-english/practice-service/internal/cache"
	"github.com/echo-english/practice-service/internal/events"
	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/textmatch"
	"github.com/echo-english/practice-service/internal/validator"
)

// GenerationService drives the LLM collaborators and filters their output
// through structural validation. Provider failures and unusable output
// degrade to empty results, never to a crash: the worst outcome is an empty
// exercise, which is a valid, displayable state.
type GenerationService interface {
	GenerateClozeItems(ctx context.Context, req *GenerateClozeRequest) (*ClozeGenerationResult, error)
	GenerateDialogue(ctx context.Context, req *GenerateDialogueRequest) (*DialogueResult, error)
	Translate(ctx context.Context, text string) (string, error)
}

type GenerateClozeRequest struct {
	LessonID uint             `json:"lesson_id" validate:"required,min=1"`
	Count    int              `json:"count" validate:"omitempty,min=1,max=10"`
	Level    models.CEFRLevel `json:"level" validate:"omitempty,cefr_level"`
}

type GenerateDialogueRequest struct {
	Keyword   string           `json:"keyword" validate:"required,min=1,max=100"`
	Level     models.CEFRLevel `json:"level" validate:"omitempty,cefr_level"`
	WithAudio bool             `json:"with_audio"`
}

// ClozeGenerationResult reports what survived validation. Items may be empty:
// the requested count is a hint, and zero valid items is a legitimate (if
// degenerate) outcome the caller must surface as "no items", not an error.
type ClozeGenerationResult struct {
	Items         []models.ClozeItem `json:"items"`
	RejectedCount int                `json:"rejected_count"`
	FromCache     bool               `json:"from_cache"`
}

// DialogueResult carries generated dialogue text and, when synthesis
// succeeded, its speech audio. Audio is optional: a TTS failure still returns
// the text. The Audio bytes JSON-encode as base64.
type DialogueResult struct {
	Text     string            `json:"text"`
	Audio    []byte            `json:"audio_b64,omitempty"`
	MimeType string            `json:"mime,omitempty"`
	Cloze    *models.ClozeItem `json:"cloze,omitempty"`
}

type generationService struct {
	generator   ai.TextGenerator
	synthesizer ai.SpeechSynthesizer
	lessons     LessonService
	validator   *validator.Validator
	cache       cache.CacheService
	cacheTTL    time.Duration
	publisher   events.EventPublisher
	logger      *slog.Logger
}

func NewGenerationService(
	generator ai.TextGenerator,
	synthesizer ai.SpeechSynthesizer,
	lessons LessonService,
	v *validator.Validator,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	publisher events.EventPublisher,
	logger *slog.Logger,
) GenerationService {
	return &generationService{
		generator:   generator,
		synthesizer: synthesizer,
		lessons:     lessons,
		validator:   v,
		cache:       cacheService,
		cacheTTL:    cacheTTL,
		publisher:   publisher,
		logger:      logger,
	}
}

const defaultClozeCount = 4

func (s *generationService) GenerateClozeItems(ctx context.Context, req *GenerateClozeRequest) (*ClozeGenerationResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	lesson, err := s.lessons.GetByID(ctx, req.LessonID)
	if err != nil {
		return nil, err
	}

	count := req.Count
	if count <= 0 {
		count = defaultClozeCount
	}
	level := req.Level
	if level == "" {
		level = lesson.Level
	}

	cacheKey := fmt.Sprintf("gen:cloze:%d:%d:%s", req.LessonID, count, level)
	var cached []models.ClozeItem
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
		s.logger.Debug("Cloze generation cache hit", "lesson_id", req.LessonID)
		return &ClozeGenerationResult{Items: cached, FromCache: true}, nil
	}

	transcript, err := s.lessons.GetTranscript(ctx, req.LessonID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.generator.GenerateCloze(ctx, transcript.PlainText(), lesson.Keyword, count, level)
	if err != nil {
		// A provider failure is not fatal: report it as zero items so the
		// caller can render an empty exercise.
		s.logger.Error("Cloze generation failed", "lesson_id", req.LessonID, "error", err)
		return &ClozeGenerationResult{Items: []models.ClozeItem{}}, nil
	}

	items, rejected := s.validator.Cloze().ValidateBatch(candidates)
	if rejected > 0 {
		s.logger.Warn("Rejected structurally invalid cloze candidates",
			"lesson_id", req.LessonID,
			"rejected", rejected,
			"accepted", len(items))
	}

	if len(items) > 0 {
		if err := s.cache.Set(ctx, cacheKey, items, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache cloze items", "lesson_id", req.LessonID, "error", err)
		}
	}

	s.publish(ctx, events.NewPracticeEvent(events.EventClozeGenerated, events.ClozeGeneratedEvent{
		LessonID:       req.LessonID,
		Keyword:        lesson.Keyword,
		RequestedCount: count,
		AcceptedCount:  len(items),
		RejectedCount:  rejected,
	}))

	return &ClozeGenerationResult{Items: items, RejectedCount: rejected}, nil
}

func (s *generationService) GenerateDialogue(ctx context.Context, req *GenerateDialogueRequest) (*DialogueResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	level := req.Level
	if level == "" {
		level = models.LevelB1
	}

	cacheKey := fmt.Sprintf("gen:dialogue:%s:%s:%t", textmatch.Normalize(req.Keyword), level, req.WithAudio)
	var cached DialogueResult
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Text != "" {
		s.logger.Debug("Dialogue generation cache hit", "keyword", req.Keyword)
		cached.Cloze = s.clozeFromDialogue(cached.Text, req.Keyword)
		return &cached, nil
	}

	text, err := s.generator.GenerateDialogue(ctx, req.Keyword, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &DialogueResult{}, nil
	}

	result := &DialogueResult{Text: text}

	if req.WithAudio {
		audio, mimeType, err := s.synthesizer.Synthesize(ctx, text)
		if err != nil {
			// Degrade to text-only rather than failing the whole request.
			s.logger.Warn("Speech synthesis failed, returning text only",
				"keyword", req.Keyword,
				"error", err)
		} else {
			result.Audio = audio
			result.MimeType = mimeType
		}
	}

	if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache dialogue", "keyword", req.Keyword, "error", err)
	}

	result.Cloze = s.clozeFromDialogue(text, req.Keyword)

	s.publish(ctx, events.NewPracticeEvent(events.EventDialogueGenerated, events.DialogueGeneratedEvent{
		Keyword:    req.Keyword,
		AudioBytes: len(result.Audio),
		HasAudio:   len(result.Audio) > 0,
	}))

	return result, nil
}

func (s *generationService) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: text is required", ErrValidationFailed)
	}

	digest := sha256.Sum256([]byte(text))
	cacheKey := "gen:translate:" + hex.EncodeToString(digest[:16])

	var cached string
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached != "" {
		return cached, nil
	}

	translation, err := s.generator.Translate(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	translation = strings.TrimSpace(translation)

	if err := s.cache.Set(ctx, cacheKey, translation, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache translation", "error", err)
	}

	return translation, nil
}

// clozeFromDialogue builds a single candidate by blanking the keyword in the
// first dialogue line that contains it, then validates it like any other
// candidate. Returns nil when no line contains the keyword.
func (s *generationService) clozeFromDialogue(dialogue, keyword string) *models.ClozeItem {
	if keyword == "" {
		return nil
	}

	for _, line := range strings.Split(dialogue, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.Index(strings.ToLower(line), strings.ToLower(keyword))
		if idx < 0 {
			continue
		}

		prompt := line[:idx] + "____" + line[idx+len(keyword):]
		item, err := s.validator.Cloze().Validate(models.ClozeCandidate{
			Prompt:  prompt,
			Answers: []string{line[idx : idx+len(keyword)]},
		})
		if err != nil {
			return nil
		}
		return item
	}
	return nil
}

func (s *generationService) publish(ctx context.Context, event *events.PracticeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPracticeEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish practice event", "event_type", event.Type, "error", err)
	}
}
