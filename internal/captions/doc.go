// Package captions builds, validates, and serializes caption tracks.
//
// A Track is an ordered list of timed captions. Segment derives one from
// narration text and a target duration, Validate checks ordering and overlap,
// and the SRT codec (Parse, ParseReport, Format) converts to and from the
// subtitle interchange format. Everything here is pure and synchronous apart
// from the ReadFile and WriteFile helpers.
package captions
