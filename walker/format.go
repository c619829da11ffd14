package walker

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

var newlineRuns = regexp.MustCompile(`[\r\n]+`)

// dateLayouts are tried in order; the first layout that parses wins. The API
// returns two forms: a timestamp with a two-digit UTC offset on
// last_updated, and a plain date on observation ranges.
var dateLayouts = []struct {
	input  string
	output string
}{
	{"2006-01-02 15:04:05-07", "Jan 02, 2006 03:04:05 PM"}, // 2021-01-17 17:43:24-05
	{"2006-01-02", "Jan 02, 2006"},                         // 1995-07-01
}

// reformatDate translates an API date string into display form. If no layout
// matches, the original text is preserved and a warning is logged.
func reformatDate(apiDate string) string {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout.input, apiDate); err == nil {
			return d.Format(layout.output)
		}
	}
	slog.Warn("unparsable date from API, keeping original", "value", apiDate)
	return apiDate
}

// notesExcerpt renders series notes for display: newline runs collapse to a
// single space and long text is truncated with the cut length reported.
// Truncation counts runes, not bytes, so multi-byte text is never cut
// mid-character. Returns "" when there are no notes.
func notesExcerpt(notes string) string {
	if notes == "" {
		return ""
	}
	if runes := []rune(notes); len(runes) > notesSanityCap {
		notes = string(runes[:notesSanityCap])
	}

	text := []rune(newlineRuns.ReplaceAllString(notes, " "))
	if len(text) >= notesDisplayLen {
		return fmt.Sprintf(`"%s..." [+%d]`, string(text[:notesDisplayLen]), len(text)-notesDisplayLen)
	}
	return `"` + string(text) + `"`
}
