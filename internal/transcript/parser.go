package transcript

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/echo-english/practice-service/internal/models"
)

var (
	stampRe   = regexp.MustCompile(`^\[(\d{1,2}):(\d{2})(?::(\d{2}))?\]\s*`)
	speakerRe = regexp.MustCompile(`^([A-Za-z]+):\s*`)
)

// Parse splits raw transcript text into structured lines. Lines may carry a
// leading [mm:ss] or [hh:mm:ss] stamp and a speaker label ("A: ..."); both are
// stripped from the text and surfaced as fields. Blank lines are dropped.
func Parse(raw string) []models.TranscriptLine {
	var lines []models.TranscriptLine

	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(rawLine, "\r"))
		if line == "" {
			continue
		}

		parsed := models.TranscriptLine{Timestamp: -1}

		if m := stampRe.FindStringSubmatch(line); m != nil {
			first, _ := strconv.Atoi(m[1])
			second, _ := strconv.Atoi(m[2])
			if m[3] != "" {
				third, _ := strconv.Atoi(m[3])
				parsed.Timestamp = first*3600 + second*60 + third
			} else {
				parsed.Timestamp = first*60 + second
			}
			line = strings.TrimSpace(line[len(m[0]):])
		}

		if m := speakerRe.FindStringSubmatch(line); m != nil {
			parsed.Speaker = m[1]
			line = strings.TrimSpace(line[len(m[0]):])
		}

		if line == "" {
			continue
		}
		parsed.Text = line
		lines = append(lines, parsed)
	}

	return lines
}
