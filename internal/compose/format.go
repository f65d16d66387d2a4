package compose

import (
	"regexp"
	"strings"
)

var (
	numberedItem = regexp.MustCompile(`(\d+\.\s)`)
	headerMarks  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(Key points?:)`),
		regexp.MustCompile(`(?i)(Experience:)`),
		regexp.MustCompile(`(?i)(Skills?:)`),
		regexp.MustCompile(`(?i)(Projects?:)`),
	}
	blankRuns = regexp.MustCompile(`\n\s*\n+`)
)

// FormatResponse normalizes generated text for display: bullet markers,
// numbered items, and known section headers each start on their own line,
// runs of blank lines collapse to one, and leading newlines are stripped.
// Purely textual; the wording is untouched.
func FormatResponse(text string) string {
	text = strings.ReplaceAll(text, "- ", "\n- ")
	text = strings.ReplaceAll(text, "• ", "\n• ")
	text = numberedItem.ReplaceAllString(text, "\n$1")
	for _, header := range headerMarks {
		text = header.ReplaceAllString(text, "\n$1")
	}
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimLeft(text, "\n")
}
