package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare array",
			input:    `[{"text_with_blanks": "a ____", "answers": ["b"]}]`,
			expected: `[{"text_with_blanks": "a ____", "answers": ["b"]}]`,
		},
		{
			name:     "fenced with language",
			input:    "```json\n[{\"answers\": [\"b\"]}]\n```",
			expected: `[{"answers": ["b"]}]`,
		},
		{
			name:     "fenced without language",
			input:    "```\n{\"items\": []}\n```",
			expected: `{"items": []}`,
		},
		{
			name:     "unterminated fence",
			input:    "```json\n[1, 2]",
			expected: "[1, 2]",
		},
		{
			name:     "prose around the payload",
			input:    "Here are your items:\n[1, 2]\nEnjoy!",
			expected: "[1, 2]",
		},
		{
			name:     "object fallback",
			input:    "Result: {\"ok\": true} done",
			expected: `{"ok": true}`,
		},
		{
			name:     "no json at all",
			input:    "sorry, I cannot help",
			expected: "sorry, I cannot help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}
