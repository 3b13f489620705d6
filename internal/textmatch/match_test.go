package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"identical", "schedule", "schedule", 0},
		{"empty vs word", "", "cat", 3},
		{"single deletion", "shedule", "schedule", 1},
		{"single substitution", "scredule", "schedule", 1},
		{"single insertion", "sschedule", "schedule", 1},
		{"transposition counts as one", "shcedule", "schedule", 1},
		{"two independent edits", "shedul", "schedule", 2},
		{"completely different", "cat", "dog", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
			assert.Equal(t, tt.expected, Distance(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestMatch_ExactAnswer(t *testing.T) {
	result, err := Match("Make a reservation!", []string{"make a reservation"}, DefaultTolerance)

	assert.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, 0, result.MatchedIndex)
	assert.Equal(t, 0, result.Distance)
}

func TestMatch_WithinTolerance(t *testing.T) {
	// One deletion away from the accepted answer.
	result, err := Match("shedule", []string{"schedule"}, DefaultTolerance)

	assert.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, 1, result.Distance)
}

func TestMatch_TranspositionWithinTolerance(t *testing.T) {
	result, err := Match("shcedule", []string{"schedule"}, DefaultTolerance)

	assert.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, 1, result.Distance)
}

func TestMatch_BeyondTolerance(t *testing.T) {
	result, err := Match("shedul", []string{"schedule"}, DefaultTolerance)

	assert.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Equal(t, -1, result.MatchedIndex)
	assert.Equal(t, 2, result.Distance, "unmatched result reports the minimum distance")
}

func TestMatch_FirstAnswerWinsTies(t *testing.T) {
	// "rat" is distance 1 from both answers; the earlier one must win.
	result, err := Match("rat", []string{"cat", "bat"}, DefaultTolerance)

	assert.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, 0, result.MatchedIndex)
}

func TestMatch_MinDistanceAcrossAnswers(t *testing.T) {
	result, err := Match("reservatio", []string{"booking", "reservations"}, 0)

	assert.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Equal(t, 2, result.Distance)
}

func TestMatch_ZeroToleranceIsExact(t *testing.T) {
	result, err := Match("shedule", []string{"schedule"}, 0)

	assert.NoError(t, err)
	assert.False(t, result.Matched)

	result, err = Match("SCHEDULE", []string{"schedule"}, 0)
	assert.NoError(t, err)
	assert.True(t, result.Matched, "normalization still applies at tolerance 0")
}

func TestMatch_EmptyAnswerSet(t *testing.T) {
	_, err := Match("anything", nil, DefaultTolerance)

	assert.ErrorIs(t, err, ErrInvalidAnswerSet)
}

func TestMatch_NegativeToleranceClamped(t *testing.T) {
	result, err := Match("schedule", []string{"schedule"}, -5)

	assert.NoError(t, err)
	assert.True(t, result.Matched)
}
