package captions

import (
	"fmt"
	"strings"
)

// Report is the outcome of validating a track.
type Report struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// Validate checks each caption for a start before its end, no overlap with
// the following caption, and non-blank text. Messages use 1-based caption
// numbers.
func Validate(track Track) Report {
	issues := []string{}
	for i, c := range track {
		n := i + 1
		if !(c.Start < c.End) {
			issues = append(issues, fmt.Sprintf("Caption %d: start time %s is not before end time %s",
				n, FormatTimestamp(c.Start), FormatTimestamp(c.End)))
		}
		if i+1 < len(track) && track[i+1].Start < c.End {
			issues = append(issues, fmt.Sprintf("Caption %d: overlaps caption %d (ends %s, next starts %s)",
				n, n+1, FormatTimestamp(c.End), FormatTimestamp(track[i+1].Start)))
		}
		if strings.TrimSpace(c.Text) == "" {
			issues = append(issues, fmt.Sprintf("Caption %d: text is empty", n))
		}
	}
	return Report{Valid: len(issues) == 0, Issues: issues}
}
