package knowledge

import "strings"

// cleanCodeOutput strips the code fences writers add despite being told not
// to, leaving the raw JSON payload.
func cleanCodeOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if i := strings.IndexByte(text, '\n'); i >= 0 && i < 20 && !strings.ContainsAny(text[:i], "{}") {
			text = text[i+1:] // drop a language tag like "typescript"
		}
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
