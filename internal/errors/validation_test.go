package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("keyword", "is required", "")

	if err.Field != "keyword" {
		t.Errorf("Expected field to be 'keyword', got '%s'", err.Field)
	}

	if err.Message != "is required" {
		t.Errorf("Expected message to be 'is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'keyword': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("level", "must be a valid CEFR level (A1, A2, B1, B2, C1, C2)", "Z9"))
	expected := "validation failed: level must be a valid CEFR level (A1, A2, B1, B2, C1, C2)"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("day", "must be at least 1", 0))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("keyword", "is required", "required", nil)

	if err.Rule != "required" {
		t.Errorf("Expected rule to be 'required', got '%s'", err.Rule)
	}

	if err.Field != "keyword" {
		t.Errorf("Expected field to be 'keyword', got '%s'", err.Field)
	}
}
