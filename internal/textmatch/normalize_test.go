package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Schedule", "schedule"},
		{"keeps apostrophes", "Don't", "don't"},
		{"keeps digits", "Room 101", "room 101"},
		{"strips punctuation", "well-known!", "well known"},
		{"collapses whitespace", "  make \t a   reservation \n", "make a reservation"},
		{"strips non-ascii letters", "café", "caf"},
		{"empty input", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Hello, World!", "don't  stop", "  A1 level  ", "café au lait"}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "normalizing twice must equal normalizing once for %q", input)
	}
}
