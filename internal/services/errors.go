package services

import (
	"errors"

	apperrors "github.com/echo-english/practice-service/internal/errors"
	"github.com/echo-english/practice-service/internal/textmatch"
	"github.com/echo-english/practice-service/internal/validator"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Lesson specific errors
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrTranscriptNotFound = errors.New("lesson transcript not found")

	// Session specific errors
	ErrEmptySession        = errors.New("session requires at least one item")
	ErrSessionNotFound     = errors.New("session not found")
	ErrItemIndexOutOfRange = errors.New("item index out of range")

	// Generation specific errors
	ErrNoItemsGenerated  = errors.New("generation produced no valid items")
	ErrGenerationFailed  = errors.New("generation request failed")
	ErrTranslationFailed = errors.New("translation request failed")
)

// Matching and item-validation errors are defined next to their logic and
// re-exported here so callers can depend on the services package alone.
var (
	ErrInvalidAnswerSet = textmatch.ErrInvalidAnswerSet
	ErrMissingBlank     = validator.ErrMissingBlank
	ErrMultipleBlanks   = validator.ErrMultipleBlanks
	ErrEmptyAnswerSet   = validator.ErrEmptyAnswerSet
	ErrAnswerTooLong    = validator.ErrAnswerTooLong
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrTranscriptNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsItemValidation checks if error is a structural cloze item rejection.
// These are recoverable: the candidate is dropped, the batch continues.
func IsItemValidation(err error) bool {
	return errors.Is(err, ErrMissingBlank) ||
		errors.Is(err, ErrMultipleBlanks) ||
		errors.Is(err, ErrEmptyAnswerSet) ||
		errors.Is(err, ErrAnswerTooLong)
}

// IsCallerBug checks if error indicates a programming error by the caller
// rather than a user-facing condition.
func IsCallerBug(err error) bool {
	return errors.Is(err, ErrItemIndexOutOfRange) ||
		errors.Is(err, ErrInvalidAnswerSet)
}
