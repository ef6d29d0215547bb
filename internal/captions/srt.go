package captions

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	blockSeparator = regexp.MustCompile(`(?:\n[ \t]*){2,}`)
	timingLine     = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2}):(\d{2}):(\d{2}),(\d{3})$`)
)

// ParseStats summarizes a lenient parse.
type ParseStats struct {
	Blocks  int
	Skipped int
}

// Parse converts SRT text into a track. Malformed blocks are dropped.
func Parse(data string) Track {
	track, _ := ParseReport(data)
	return track
}

// ParseReport converts SRT text into a track and reports how many blocks were
// skipped. A block is skipped when it has fewer than three lines or its second
// line is not a "HH:MM:SS,mmm --> HH:MM:SS,mmm" timing line. Caption text is
// lines three onward joined with newlines, unmodified.
func ParseReport(data string) (Track, ParseStats) {
	var stats ParseStats
	content := strings.ReplaceAll(data, "\r\n", "\n")
	content = strings.Trim(content, "\n")
	if strings.TrimSpace(content) == "" {
		return Track{}, stats
	}

	blocks := blockSeparator.Split(content, -1)
	track := make(Track, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		stats.Blocks++
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			stats.Skipped++
			continue
		}
		start, end, ok := parseTimingLine(lines[1])
		if !ok {
			stats.Skipped++
			continue
		}
		track = append(track, Caption{
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return track, stats
}

func parseTimingLine(line string) (float64, float64, bool) {
	m := timingLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, 0, false
	}
	return timestampSeconds(m[1:5]), timestampSeconds(m[5:9]), true
}

func timestampSeconds(parts []string) float64 {
	var v [4]int
	for i, p := range parts {
		v[i], _ = strconv.Atoi(p)
	}
	ms := ((v[0]*60+v[1])*60+v[2])*1000 + v[3]
	return float64(ms) / 1000
}

// Format renders a track as SRT: a 1-based index line, a timing line, the
// caption text, and a blank line between entries.
func Format(track Track) string {
	var b strings.Builder
	for i, c := range track {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text)
	}
	return b.String()
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm rounded to the nearest
// millisecond. Negative and non-finite values render as zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	msTotal := int64(math.Round(seconds * 1000))
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp parses a single HH:MM:SS,mmm value. A period is accepted in
// place of the comma.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 || millis > 999 {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
