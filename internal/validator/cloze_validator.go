package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/echo-english/practice-service/internal/models"
)

// Structural validation failures for generation candidates. A failed candidate
// is excluded from its batch; it never aborts the batch.
var (
	ErrMissingBlank   = errors.New("prompt contains no blank marker")
	ErrMultipleBlanks = errors.New("prompt contains more than one blank marker")
	ErrEmptyAnswerSet = errors.New("candidate has no non-empty accepted answers")
	ErrAnswerTooLong  = errors.New("accepted answer exceeds maximum length")
)

// MaxAnswerLength bounds a single accepted answer.
const MaxAnswerLength = 200

// blankRe matches one blank marker: a run of two or more underscores. The
// generation contract uses "____" but item sources are not consistent about
// the run length.
var blankRe = regexp.MustCompile(`_{2,}`)

// ClozeValidator checks the structural shape of candidate cloze items before
// they are shown to a learner. It does not attempt to verify that an answer
// substituted into the blank yields a grammatical sentence.
type ClozeValidator struct{}

func NewClozeValidator() *ClozeValidator {
	return &ClozeValidator{}
}

// Validate checks a candidate in order, short-circuiting on the first failure:
//  1. the prompt contains exactly one blank marker,
//  2. at least one accepted answer is non-empty after trimming,
//  3. every accepted answer is within the length bound.
//
// On success it returns an immutable ClozeItem with trimmed answers and exact
// case-sensitive duplicates removed, order preserved.
func (cv *ClozeValidator) Validate(candidate models.ClozeCandidate) (*models.ClozeItem, error) {
	prompt := strings.TrimSpace(candidate.Prompt)

	switch blanks := len(blankRe.FindAllString(prompt, -1)); {
	case prompt == "" || blanks == 0:
		return nil, ErrMissingBlank
	case blanks > 1:
		return nil, ErrMultipleBlanks
	}

	answers := make([]string, 0, len(candidate.Answers))
	seen := make(map[string]struct{}, len(candidate.Answers))
	for _, raw := range candidate.Answers {
		answer := strings.TrimSpace(raw)
		if answer == "" {
			continue
		}
		if n := utf8.RuneCountInString(answer); n > MaxAnswerLength {
			return nil, fmt.Errorf("%w: %d characters", ErrAnswerTooLong, n)
		}
		if _, dup := seen[answer]; dup {
			continue
		}
		seen[answer] = struct{}{}
		answers = append(answers, answer)
	}

	if len(answers) == 0 {
		return nil, ErrEmptyAnswerSet
	}

	return &models.ClozeItem{
		Prompt:    prompt,
		Answers:   answers,
		Rationale: strings.TrimSpace(candidate.Rationale),
	}, nil
}

// ValidateBatch validates each candidate independently and returns the items
// that passed. One bad candidate never invalidates the rest of the batch; the
// rejected count is returned for logging.
func (cv *ClozeValidator) ValidateBatch(candidates []models.ClozeCandidate) ([]models.ClozeItem, int) {
	items := make([]models.ClozeItem, 0, len(candidates))
	rejected := 0
	for _, candidate := range candidates {
		item, err := cv.Validate(candidate)
		if err != nil {
			rejected++
			continue
		}
		items = append(items, *item)
	}
	return items, rejected
}
