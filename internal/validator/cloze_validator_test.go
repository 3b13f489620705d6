package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echo-english/practice-service/internal/models"
)

func TestClozeValidator_Validate(t *testing.T) {
	cv := NewClozeValidator()

	t.Run("valid candidate", func(t *testing.T) {
		item, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "I need to ____ a reservation.",
			Answers: []string{"make", "book"},
		})

		assert.NoError(t, err)
		assert.Equal(t, "I need to ____ a reservation.", item.Prompt)
		assert.Equal(t, []string{"make", "book"}, item.Answers)
	})

	t.Run("missing blank", func(t *testing.T) {
		_, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "I need to make a reservation.",
			Answers: []string{"make"},
		})

		assert.ErrorIs(t, err, ErrMissingBlank)
	})

	t.Run("empty prompt", func(t *testing.T) {
		_, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "   ",
			Answers: []string{"make"},
		})

		assert.ErrorIs(t, err, ErrMissingBlank)
	})

	t.Run("multiple blanks", func(t *testing.T) {
		_, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "I ____ to the ____ store.",
			Answers: []string{"went"},
		})

		assert.ErrorIs(t, err, ErrMultipleBlanks)
	})

	t.Run("single underscore is not a blank", func(t *testing.T) {
		_, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "snake_case has no blank",
			Answers: []string{"x"},
		})

		assert.ErrorIs(t, err, ErrMissingBlank)
	})

	t.Run("blank runs of different lengths count separately", func(t *testing.T) {
		item, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "Please __ here.",
			Answers: []string{"sign"},
		})

		assert.NoError(t, err)
		assert.NotNil(t, item)
	})

	t.Run("empty answer set", func(t *testing.T) {
		_, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "Please ____ here.",
			Answers: nil,
		})

		assert.ErrorIs(t, err, ErrEmptyAnswerSet)
	})

	t.Run("whitespace-only answers rejected", func(t *testing.T) {
		_, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "Please ____ here.",
			Answers: []string{"", "   ", "\t"},
		})

		assert.ErrorIs(t, err, ErrEmptyAnswerSet)
	})

	t.Run("answer too long", func(t *testing.T) {
		_, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "Please ____ here.",
			Answers: []string{strings.Repeat("a", MaxAnswerLength+1)},
		})

		assert.ErrorIs(t, err, ErrAnswerTooLong)
	})

	t.Run("answer at the length bound passes", func(t *testing.T) {
		item, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "Please ____ here.",
			Answers: []string{strings.Repeat("a", MaxAnswerLength)},
		})

		assert.NoError(t, err)
		assert.Len(t, item.Answers, 1)
	})

	t.Run("case-sensitive dedupe preserves order", func(t *testing.T) {
		item, err := cv.Validate(models.ClozeCandidate{
			Prompt:  "Please ____ here.",
			Answers: []string{"sign", "Sign", "sign ", "write"},
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"sign", "Sign", "write"}, item.Answers)
	})
}

func TestClozeValidator_ValidateBatch(t *testing.T) {
	cv := NewClozeValidator()

	candidates := []models.ClozeCandidate{
		{Prompt: "I need to ____ early.", Answers: []string{"leave"}},
		{Prompt: "no blank here", Answers: []string{"x"}},
		{Prompt: "Two ____ in one ____.", Answers: []string{"y"}},
		{Prompt: "She will ____ tomorrow.", Answers: []string{"arrive"}},
	}

	items, rejected := cv.ValidateBatch(candidates)

	assert.Len(t, items, 2)
	assert.Equal(t, 2, rejected)
	assert.Equal(t, "I need to ____ early.", items[0].Prompt)
	assert.Equal(t, "She will ____ tomorrow.", items[1].Prompt)
}

func TestClozeValidator_ValidateBatch_Empty(t *testing.T) {
	cv := NewClozeValidator()

	items, rejected := cv.ValidateBatch(nil)

	assert.Empty(t, items)
	assert.Zero(t, rejected)
}
