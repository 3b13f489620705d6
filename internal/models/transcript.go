package models

// TranscriptLine is one parsed line of a lesson transcript. Timestamp is the
// offset in seconds when the source line carried a [mm:ss] or [hh:mm:ss]
// stamp; -1 otherwise. Speaker holds a leading speaker label ("A", "B") when
// present.
type TranscriptLine struct {
	Timestamp int    `json:"timestamp"` // seconds, -1 if absent
	Speaker   string `json:"speaker,omitempty"`
	Text      string `json:"text"`
}

// Transcript is the parsed transcript of one lesson.
type Transcript struct {
	LessonID uint             `json:"lesson_id"`
	Lines    []TranscriptLine `json:"lines"`
}

// PlainText joins the spoken text of all lines, one per line, with stamps and
// speaker labels stripped. This is the form handed to the generation
// collaborator.
func (t *Transcript) PlainText() string {
	out := ""
	for i, line := range t.Lines {
		if i > 0 {
			out += "\n"
		}
		out += line.Text
	}
	return out
}
