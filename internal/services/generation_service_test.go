package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/echo-english/practice-service/internal/cache"
	"github.com/echo-english/practice-service/internal/events"
	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/repositories"
	"github.com/echo-english/practice-service/internal/validator"
)

// MockTextGenerator is a mock implementation of ai.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateCloze(ctx context.Context, transcript, keyword string, count int, level models.CEFRLevel) ([]models.ClozeCandidate, error) {
	args := m.Called(ctx, transcript, keyword, count, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ClozeCandidate), args.Error(1)
}

func (m *MockTextGenerator) GenerateDialogue(ctx context.Context, keyword string, level models.CEFRLevel) (string, error) {
	args := m.Called(ctx, keyword, level)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Translate(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// MockSpeechSynthesizer is a mock implementation of ai.SpeechSynthesizer
type MockSpeechSynthesizer struct {
	mock.Mock
}

func (m *MockSpeechSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

// stubLessonService serves a fixed lesson and transcript.
type stubLessonService struct {
	lesson     *models.Lesson
	transcript *models.Transcript
}

func (s *stubLessonService) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	return []*models.Lesson{s.lesson}, 1, nil
}

func (s *stubLessonService) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	if s.lesson == nil || s.lesson.ID != id {
		return nil, ErrLessonNotFound
	}
	return s.lesson, nil
}

func (s *stubLessonService) GetTranscript(ctx context.Context, id uint) (*models.Transcript, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.transcript, nil
}

func (s *stubLessonService) GetClozeItems(ctx context.Context, id uint) ([]models.ClozeItem, error) {
	return nil, nil
}

// memoryCache is a map-backed CacheService for exercising cache paths.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = payload
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	payload, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func newTestGenerationService(
	t *testing.T,
	generator *MockTextGenerator,
	synthesizer *MockSpeechSynthesizer,
	cacheService cache.CacheService,
) (GenerationService, *events.MockEventPublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	lessons := &stubLessonService{
		lesson: &models.Lesson{ID: 1, Day: 3, Keyword: "reservation", Level: models.LevelB1},
		transcript: &models.Transcript{
			LessonID: 1,
			Lines: []models.TranscriptLine{
				{Timestamp: 5, Speaker: "A", Text: "I'd like to make a reservation."},
			},
		},
	}

	service := NewGenerationService(
		generator, synthesizer, lessons, validator.New(), cacheService, time.Hour, publisher, logger)
	return service, publisher
}

func TestGenerationService_GenerateClozeItems(t *testing.T) {
	generator := new(MockTextGenerator)
	synthesizer := new(MockSpeechSynthesizer)
	service, publisher := newTestGenerationService(t, generator, synthesizer, cache.NoopCache{})

	candidates := []models.ClozeCandidate{
		{Prompt: "I'd like to make a ____.", Answers: []string{"reservation"}},
		{Prompt: "malformed without blank", Answers: []string{"x"}},
	}
	generator.On("GenerateCloze", mock.Anything, mock.Anything, "reservation", 4, models.LevelB1).
		Return(candidates, nil)

	result, err := service.GenerateClozeItems(context.Background(), &GenerateClozeRequest{LessonID: 1})

	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 1, result.RejectedCount)
	assert.False(t, result.FromCache)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventClozeGenerated, published[0].Type)

	generator.AssertExpectations(t)
}

func TestGenerationService_GenerateClozeItems_ProviderFailure(t *testing.T) {
	generator := new(MockTextGenerator)
	service, _ := newTestGenerationService(t, generator, new(MockSpeechSynthesizer), cache.NoopCache{})

	generator.On("GenerateCloze", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("rate limited"))

	result, err := service.GenerateClozeItems(context.Background(), &GenerateClozeRequest{LessonID: 1})

	// A provider failure degrades to an empty exercise, not an error.
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestGenerationService_GenerateClozeItems_LessonNotFound(t *testing.T) {
	service, _ := newTestGenerationService(t, new(MockTextGenerator), new(MockSpeechSynthesizer), cache.NoopCache{})

	_, err := service.GenerateClozeItems(context.Background(), &GenerateClozeRequest{LessonID: 99})

	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestGenerationService_GenerateClozeItems_InvalidRequest(t *testing.T) {
	service, _ := newTestGenerationService(t, new(MockTextGenerator), new(MockSpeechSynthesizer), cache.NoopCache{})

	_, err := service.GenerateClozeItems(context.Background(), &GenerateClozeRequest{LessonID: 1, Count: 99})

	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerationService_GenerateClozeItems_Cached(t *testing.T) {
	generator := new(MockTextGenerator)
	service, _ := newTestGenerationService(t, generator, new(MockSpeechSynthesizer), newMemoryCache())

	candidates := []models.ClozeCandidate{
		{Prompt: "I'd like to make a ____.", Answers: []string{"reservation"}},
	}
	generator.On("GenerateCloze", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(candidates, nil).Once()

	ctx := context.Background()
	first, err := service.GenerateClozeItems(ctx, &GenerateClozeRequest{LessonID: 1})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := service.GenerateClozeItems(ctx, &GenerateClozeRequest{LessonID: 1})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Items, second.Items)

	generator.AssertNumberOfCalls(t, "GenerateCloze", 1)
}

func TestGenerationService_GenerateDialogue(t *testing.T) {
	generator := new(MockTextGenerator)
	synthesizer := new(MockSpeechSynthesizer)
	service, publisher := newTestGenerationService(t, generator, synthesizer, cache.NoopCache{})

	dialogue := "A: Do you have a reservation?\nB: Yes, under Tanaka."
	generator.On("GenerateDialogue", mock.Anything, "reservation", models.LevelB1).
		Return(dialogue, nil)
	synthesizer.On("Synthesize", mock.Anything, dialogue).
		Return([]byte("mp3-bytes"), "audio/mpeg", nil)

	result, err := service.GenerateDialogue(context.Background(), &GenerateDialogueRequest{
		Keyword:   "reservation",
		WithAudio: true,
	})

	require.NoError(t, err)
	assert.Equal(t, dialogue, result.Text)
	assert.Equal(t, []byte("mp3-bytes"), result.Audio)
	assert.Equal(t, "audio/mpeg", result.MimeType)

	// The keyword line is turned into a bonus cloze item.
	require.NotNil(t, result.Cloze)
	assert.Equal(t, "A: Do you have a ____?", result.Cloze.Prompt)
	assert.Equal(t, []string{"reservation"}, result.Cloze.Answers)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventDialogueGenerated, published[0].Type)
}

func TestGenerationService_GenerateDialogue_TTSFailureDegradesToText(t *testing.T) {
	generator := new(MockTextGenerator)
	synthesizer := new(MockSpeechSynthesizer)
	service, _ := newTestGenerationService(t, generator, synthesizer, cache.NoopCache{})

	generator.On("GenerateDialogue", mock.Anything, "schedule", models.LevelB1).
		Return("A: What is on your schedule?", nil)
	synthesizer.On("Synthesize", mock.Anything, mock.Anything).
		Return(nil, "", errors.New("tts unavailable"))

	result, err := service.GenerateDialogue(context.Background(), &GenerateDialogueRequest{
		Keyword:   "schedule",
		WithAudio: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "A: What is on your schedule?", result.Text)
	assert.Empty(t, result.Audio)
	assert.Empty(t, result.MimeType)
}

func TestGenerationService_GenerateDialogue_ProviderFailure(t *testing.T) {
	generator := new(MockTextGenerator)
	service, _ := newTestGenerationService(t, generator, new(MockSpeechSynthesizer), cache.NoopCache{})

	generator.On("GenerateDialogue", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("boom"))

	_, err := service.GenerateDialogue(context.Background(), &GenerateDialogueRequest{Keyword: "schedule"})

	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerationService_GenerateDialogue_MissingKeyword(t *testing.T) {
	service, _ := newTestGenerationService(t, new(MockTextGenerator), new(MockSpeechSynthesizer), cache.NoopCache{})

	_, err := service.GenerateDialogue(context.Background(), &GenerateDialogueRequest{})

	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerationService_Translate(t *testing.T) {
	generator := new(MockTextGenerator)
	service, _ := newTestGenerationService(t, generator, new(MockSpeechSynthesizer), newMemoryCache())

	generator.On("Translate", mock.Anything, "Good morning.").
		Return("おはようございます。", nil).Once()

	ctx := context.Background()
	translation, err := service.Translate(ctx, "Good morning.")
	require.NoError(t, err)
	assert.Equal(t, "おはようございます。", translation)

	// Second call is served from cache.
	translation, err = service.Translate(ctx, "Good morning.")
	require.NoError(t, err)
	assert.Equal(t, "おはようございます。", translation)
	generator.AssertNumberOfCalls(t, "Translate", 1)
}

func TestGenerationService_Translate_EmptyText(t *testing.T) {
	service, _ := newTestGenerationService(t, new(MockTextGenerator), new(MockSpeechSynthesizer), cache.NoopCache{})

	_, err := service.Translate(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerationService_Translate_ProviderFailure(t *testing.T) {
	generator := new(MockTextGenerator)
	service, _ := newTestGenerationService(t, generator, new(MockSpeechSynthesizer), cache.NoopCache{})

	generator.On("Translate", mock.Anything, mock.Anything).
		Return("", errors.New("boom"))

	_, err := service.Translate(context.Background(), "Good morning.")

	assert.ErrorIs(t, err, ErrTranslationFailed)
}
