package submission

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var counterPrinter = message.NewPrinter(language.English)

// CharCount formats the live character counter shown under a text field.
func CharCount(text string) string {
	return counterPrinter.Sprintf("%d characters", utf8.RuneCountInString(text))
}

// FormatBytes renders a file size in B, KB or MB with one decimal.
func FormatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// FileIndicator is the label shown once a file has been selected.
func FileIndicator(f *ResumeFile) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("✓ %s (%s)", f.Name, FormatBytes(f.Size))
}
