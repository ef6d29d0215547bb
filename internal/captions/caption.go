package captions

// Caption is one timed line of on-screen text. Times are in seconds.
type Caption struct {
	Start float64 `json:"startTime" yaml:"startTime"`
	End   float64 `json:"endTime" yaml:"endTime"`
	Text  string  `json:"text" yaml:"text"`
}

// Duration returns the on-screen time of the caption.
func (c Caption) Duration() float64 {
	return c.End - c.Start
}

// Track is an ordered caption sequence.
type Track []Caption

// End returns the end time of the last caption, or zero for an empty track.
func (t Track) End() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].End
}

// Clone returns a copy of the track.
func (t Track) Clone() Track {
	if t == nil {
		return nil
	}
	out := make(Track, len(t))
	copy(out, t)
	return out
}
