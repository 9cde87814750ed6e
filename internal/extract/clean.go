package extract

import (
	"regexp"
	"strings"
)

var (
	inlineSpace   = regexp.MustCompile(`[ \t\f\v]+`)
	extraNewlines = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes line endings, collapses runs of inline whitespace and
// keeps at most one blank line between paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}

	result := extraNewlines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// truncate cuts text to at most limit runes.
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
