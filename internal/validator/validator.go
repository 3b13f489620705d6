package validator

import (
	"reflect"
	"strings"

	"github.com/echo-english/practice-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the central validator instance: struct-tag validation for
// request DTOs plus the cloze item validator for generation candidates.
type Validator struct {
	structValidator *validator.Validate
	clozeValidator  *ClozeValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		clozeValidator:  NewClozeValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs struct-tag validation and converts failures to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// Cloze returns the cloze item validator
func (v *Validator) Cloze() *ClozeValidator {
	return v.clozeValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	// CEFR proficiency level validation
	validate.RegisterValidation("cefr_level", validateCEFRLevel)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateCEFRLevel(fl validator.FieldLevel) bool {
	validLevels := []models.CEFRLevel{
		models.LevelA1,
		models.LevelA2,
		models.LevelB1,
		models.LevelB2,
		models.LevelC1,
		models.LevelC2,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}
