package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echo-english/practice-service/internal/models"
)

func TestParse(t *testing.T) {
	raw := "[00:05] A: Good morning! How can I help you?\r\n" +
		"[00:12] B: I'd like to make a reservation.\n" +
		"\n" +
		"[1:02:03] A: Certainly.\n" +
		"Narrator: The call continues.\n" +
		"Just plain text with no markers.\n"

	lines := Parse(raw)

	assert.Len(t, lines, 5)

	assert.Equal(t, models.TranscriptLine{
		Timestamp: 5,
		Speaker:   "A",
		Text:      "Good morning! How can I help you?",
	}, lines[0])

	assert.Equal(t, 12, lines[1].Timestamp)
	assert.Equal(t, "B", lines[1].Speaker)
	assert.Equal(t, "I'd like to make a reservation.", lines[1].Text)

	// hh:mm:ss stamps convert to seconds
	assert.Equal(t, 3723, lines[2].Timestamp)

	// Speaker label without a stamp
	assert.Equal(t, -1, lines[3].Timestamp)
	assert.Equal(t, "Narrator", lines[3].Speaker)
	assert.Equal(t, "The call continues.", lines[3].Text)

	// Plain line: no stamp, no speaker
	assert.Equal(t, -1, lines[4].Timestamp)
	assert.Empty(t, lines[4].Speaker)
	assert.Equal(t, "Just plain text with no markers.", lines[4].Text)
}

func TestParse_DropsEmptyLines(t *testing.T) {
	lines := Parse("\n\n   \n[00:10]\nA:\n")

	// A stamp or speaker label with no remaining text is dropped too.
	assert.Empty(t, lines)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
}

func TestTranscript_PlainText(t *testing.T) {
	transcript := models.Transcript{
		Lines: []models.TranscriptLine{
			{Timestamp: 5, Speaker: "A", Text: "Hello there."},
			{Timestamp: 9, Speaker: "B", Text: "Hi!"},
		},
	}

	assert.Equal(t, "Hello there.\nHi!", transcript.PlainText())
}
