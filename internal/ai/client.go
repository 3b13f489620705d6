package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/echo-english/practice-service/internal/models"
)

// ErrUnavailable is returned when the OpenAI integration is not configured.
var ErrUnavailable = errors.New("openai integration is not configured")

// TextGenerator produces cloze candidates, dialogues, and translations.
// Implemented by Client; mocked in tests.
type TextGenerator interface {
	GenerateCloze(ctx context.Context, transcript, keyword string, count int, level models.CEFRLevel) ([]models.ClozeCandidate, error)
	GenerateDialogue(ctx context.Context, keyword string, level models.CEFRLevel) (string, error)
	Translate(ctx context.Context, text string) (string, error)
}

// SpeechSynthesizer turns dialogue text into audio. The core never inspects
// the returned bytes; it only forwards them with their media type.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (audio []byte, mimeType string, err error)
}

// ClientConfig configures the OpenAI adapter.
type ClientConfig struct {
	APIKey    string
	BaseURL   string
	TextModel string
	TTSModel  string
	TTSVoice  string
}

// Client is the single adapter for all OpenAI-backed collaborators: cloze
// generation, dialogue generation, speech synthesis, and translation.
type Client struct {
	client    *openai.Client
	textModel string
	ttsModel  string
	ttsVoice  string
	logger    *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		return &Client{logger: logger}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		textModel: cfg.TextModel,
		ttsModel:  cfg.TTSModel,
		ttsVoice:  cfg.TTSVoice,
		logger:    logger,
	}
}

func (c *Client) disabled() bool {
	return c.client == nil || c.textModel == ""
}

// GenerateCloze asks the model for fill-in-the-blank questions built from a
// lesson transcript. The returned candidates are raw: callers must run them
// through the cloze item validator before showing them to a learner. The
// count is a hint, not a guarantee.
func (c *Client) GenerateCloze(ctx context.Context, transcript, keyword string, count int, level models.CEFRLevel) ([]models.ClozeCandidate, error) {
	if c.disabled() {
		return nil, ErrUnavailable
	}
	if count <= 0 {
		count = 3
	}

	prompt := fmt.Sprintf(`You are an English teacher.
Make %d cloze (fill-in-the-blank) questions from this transcript:

---
%s
---

Each question should:
- be one short sentence at CEFR %s level,
- replace exactly one word/phrase with "____",
- include the correct answer(s),
- prefer sentences using the keyword "%s" when possible.

Output only a JSON array like:
[{"text_with_blanks": "...", "answers": ["..."]}, ...]`, count, transcript, level, keyword)

	req := openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request cloze generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	candidates, err := parseClozeCandidates(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("Failed to parse cloze generation output",
			"error", err,
			"raw_length", len(resp.Choices[0].Message.Content))
		return nil, fmt.Errorf("unmarshal cloze candidates: %w", err)
	}

	return candidates, nil
}

// GenerateDialogue asks the model for a short listening-practice dialogue
// around the keyword, formatted as "A: ..." / "B: ..." lines.
func (c *Client) GenerateDialogue(ctx context.Context, keyword string, level models.CEFRLevel) (string, error) {
	if c.disabled() {
		return "", ErrUnavailable
	}

	prompt := fmt.Sprintf(`You are an expert ESL teacher. Create a short, natural-sounding dialogue (6-8 turns) for listening practice.
Target level: CEFR %s. Use the keyword naturally: "%s".
Make it a different situation from the original lesson, but keep a similar casual tone and usefulness.
Keep utterances short and conversational. Do not add explanations.
Output format (only lines):
A: ...
B: ...`, level, keyword)

	req := openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("request dialogue generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Translate renders English learning text into natural, learner-friendly
// Japanese.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if c.disabled() {
		return "", ErrUnavailable
	}

	prompt := "あなたは優れた英語教師兼翻訳者です。\n" +
		"以下の英語の会話を、日本人学習者向けに自然でわかりやすい日本語に翻訳してください。\n" +
		"直訳ではなく、自然な口語で。学習者が理解しやすいように意訳も取り入れてください。\n\n" +
		text

	req := openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("request translation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Synthesize converts dialogue text to mp3 speech audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if c.client == nil || c.ttsModel == "" {
		return nil, "", ErrUnavailable
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.ttsModel),
		Voice:          openai.SpeechVoice(c.ttsVoice),
		Input:          text,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	resp, err := c.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, "", fmt.Errorf("request speech synthesis: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, "", fmt.Errorf("read speech audio: %w", err)
	}

	return audio, "audio/mpeg", nil
}

// parseClozeCandidates unmarshals generation output, tolerating both a bare
// JSON array and an {"items": [...]} wrapper, with or without markdown fences.
func parseClozeCandidates(content string) ([]models.ClozeCandidate, error) {
	jsonStr := extractJSON(content)

	var candidates []models.ClozeCandidate
	if err := json.Unmarshal([]byte(jsonStr), &candidates); err == nil {
		return candidates, nil
	}

	var wrapper struct {
		Items []models.ClozeCandidate `json:"items"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Items, nil
}
