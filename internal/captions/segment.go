package captions

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultWordsPerCaption is the chunk size used when none is given.
	DefaultWordsPerCaption = 4
	// DefaultWordsPerSecond is the assumed narration speaking rate.
	DefaultWordsPerSecond = 2.5
)

// Words splits narration into whitespace-separated words after NFC
// normalization.
func Words(text string) []string {
	return strings.Fields(norm.NFC.String(text))
}

// Segment splits narration into fixed-size word chunks spread evenly over
// duration seconds. Each caption spans (duration/words)*wordsPerCaption
// seconds and the last one ends exactly at duration, so the result is
// ordered and non-overlapping. Empty text or a non-positive duration yields an
// empty track. A non-positive wordsPerCaption falls back to the default.
func Segment(text string, duration float64, wordsPerCaption int) Track {
	words := Words(text)
	if len(words) == 0 || !(duration > 0) || math.IsInf(duration, 0) {
		return Track{}
	}
	if wordsPerCaption <= 0 {
		wordsPerCaption = DefaultWordsPerCaption
	}

	timePerCaption := duration / float64(len(words)) * float64(wordsPerCaption)
	track := make(Track, 0, (len(words)+wordsPerCaption-1)/wordsPerCaption)
	clock := 0.0
	for i := 0; i < len(words); i += wordsPerCaption {
		j := min(i+wordsPerCaption, len(words))
		end := math.Min(clock+timePerCaption, duration)
		if j == len(words) {
			end = duration
		}
		track = append(track, Caption{
			Start: clock,
			End:   end,
			Text:  strings.Join(words[i:j], " "),
		})
		clock = end
	}
	return track
}

// EstimateDuration returns how long narration takes to speak at
// wordsPerSecond. A non-positive rate falls back to the default.
func EstimateDuration(text string, wordsPerSecond float64) float64 {
	if !(wordsPerSecond > 0) {
		wordsPerSecond = DefaultWordsPerSecond
	}
	return float64(len(Words(text))) / wordsPerSecond
}
