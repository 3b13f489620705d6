package ai

import "strings"

// extractJSON removes markdown code block formatting if present and extracts
// the JSON payload. Models sometimes wrap JSON in ```json fences despite being
// told not to.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		start := 3
		// Skip the language identifier line (e.g. "json")
		if newlineIdx := strings.Index(content[start:], "\n"); newlineIdx != -1 {
			start += newlineIdx + 1
		}

		if endIdx := strings.Index(content[start:], "```"); endIdx != -1 {
			content = content[start : start+endIdx]
		} else {
			content = content[start:]
		}
	}

	content = strings.TrimSpace(content)

	// Narrow to the outermost JSON value: prefer an array, fall back to an
	// object.
	if startIdx := strings.Index(content, "["); startIdx != -1 {
		if endIdx := strings.LastIndex(content, "]"); endIdx != -1 && endIdx > startIdx {
			return strings.TrimSpace(content[startIdx : endIdx+1])
		}
	}
	if startIdx := strings.Index(content, "{"); startIdx != -1 {
		if endIdx := strings.LastIndex(content, "}"); endIdx != -1 && endIdx > startIdx {
			return strings.TrimSpace(content[startIdx : endIdx+1])
		}
	}

	return content
}
