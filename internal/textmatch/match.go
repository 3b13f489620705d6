package textmatch

import "errors"

// DefaultTolerance is the edit-distance tolerance used when grading learner
// submissions. Tolerance 0 recovers exact (post-normalization) matching.
const DefaultTolerance = 1

// ErrInvalidAnswerSet is returned when a match is requested against an empty
// accepted-answer list, which is a contract violation by the caller.
var ErrInvalidAnswerSet = errors.New("accepted answer set must not be empty")

// MatchResult describes the outcome of grading one submission against an
// accepted-answer list.
type MatchResult struct {
	Matched bool `json:"matched"`
	// MatchedIndex is the index of the first accepted answer within tolerance,
	// or -1 when no answer matched.
	MatchedIndex int `json:"matched_index"`
	// Distance is the edit distance to the matched answer, or the minimum
	// distance found across all answers when nothing matched (useful for
	// hinting).
	Distance int `json:"distance"`
}

// Match normalizes the submission and each accepted answer, then compares them
// with the Damerau-Levenshtein distance. The first answer whose distance is
// within tolerance wins; ties break by answer order.
func Match(submission string, accepted []string, tolerance int) (MatchResult, error) {
	if len(accepted) == 0 {
		return MatchResult{}, ErrInvalidAnswerSet
	}
	if tolerance < 0 {
		tolerance = 0
	}

	normalized := Normalize(submission)

	minDistance := -1
	for i, answer := range accepted {
		d := Distance(normalized, Normalize(answer))
		if d <= tolerance {
			return MatchResult{Matched: true, MatchedIndex: i, Distance: d}, nil
		}
		if minDistance < 0 || d < minDistance {
			minDistance = d
		}
	}

	return MatchResult{Matched: false, MatchedIndex: -1, Distance: minDistance}, nil
}
