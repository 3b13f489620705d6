package models

import "time"

// ClozeCandidate is a raw cloze item as produced by the generation
// collaborator or loaded from content, before structural validation. The JSON
// shape mirrors the generation contract:
// {"text_with_blanks": "...", "answers": ["..."]}.
type ClozeCandidate struct {
	Prompt    string   `json:"text_with_blanks"`
	Answers   []string `json:"answers"`
	Rationale string   `json:"rationale,omitempty"`
}

// ClozeItem is a validated cloze exercise item: a prompt containing exactly
// one blank marker and at least one accepted answer. Items are immutable once
// validated; answers are deduplicated with order preserved.
type ClozeItem struct {
	Prompt    string   `json:"prompt"`
	Answers   []string `json:"answers"`
	Rationale string   `json:"rationale,omitempty"`
}

// GradingAttempt records a single learner submission against one item. It is
// immutable once created and appended to the owning item's history.
type GradingAttempt struct {
	SubmittedText  string    `json:"submitted_text"`
	NormalizedText string    `json:"normalized_text"`
	Matched        bool      `json:"matched"`
	MatchedIndex   int       `json:"matched_index"` // -1 when not matched
	Distance       int       `json:"distance"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// ItemState is the derived grading state of one item within a session.
type ItemState string

const (
	ItemUnattempted      ItemState = "unattempted"
	ItemIncorrectPending ItemState = "incorrect_pending"
	// ItemCorrect is terminal: later submissions are still recorded but the
	// item stays correct.
	ItemCorrect ItemState = "correct"
)

// ClozeSession holds the ordered items of one exercise run and the per-item
// attempt history. Sessions are ephemeral: they live in memory for one learner
// interaction and are never persisted.
type ClozeSession struct {
	ID        string             `json:"id"`
	LessonID  uint               `json:"lesson_id,omitempty"`
	LearnerID string             `json:"learner_id,omitempty"`
	Items     []ClozeItem        `json:"items"`
	Attempts  [][]GradingAttempt `json:"attempts"`
	CreatedAt time.Time          `json:"created_at"`
}

// ItemStateAt derives the state machine position of the item at index:
// unattempted -> incorrect_pending -> correct, with correct terminal.
func (s *ClozeSession) ItemStateAt(index int) ItemState {
	if index < 0 || index >= len(s.Items) {
		return ItemUnattempted
	}
	attempts := s.Attempts[index]
	if len(attempts) == 0 {
		return ItemUnattempted
	}
	for _, a := range attempts {
		if a.Matched {
			return ItemCorrect
		}
	}
	return ItemIncorrectPending
}

// SessionScore summarizes a session: an item counts as correct if any of its
// attempts matched.
type SessionScore struct {
	CorrectCount int `json:"correct_count"`
	TotalCount   int `json:"total_count"`
}

// Score computes the session score over all items.
func (s *ClozeSession) Score() SessionScore {
	score := SessionScore{TotalCount: len(s.Items)}
	for i := range s.Items {
		if s.ItemStateAt(i) == ItemCorrect {
			score.CorrectCount++
		}
	}
	return score
}
