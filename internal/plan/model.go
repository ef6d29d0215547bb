package plan

import "strings"

// AspectRatio classifies the target frame shape.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "landscape"
	AspectPortrait  AspectRatio = "portrait"
	AspectSquare    AspectRatio = "square"
)

// Valid reports whether the aspect-ratio class is one of the known values.
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectLandscape, AspectPortrait, AspectSquare:
		return true
	default:
		return false
	}
}

// Resolution is the target output frame size in pixels.
type Resolution struct {
	Width  int `json:"width" yaml:"width" toml:"width"`
	Height int `json:"height" yaml:"height" toml:"height"`
}

// IsZero reports whether no resolution was provided.
func (r Resolution) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ColorPalette lists the named colors of the global style.
type ColorPalette struct {
	Primary    string `json:"primary,omitempty" yaml:"primary,omitempty" toml:"primary"`
	Secondary  string `json:"secondary,omitempty" yaml:"secondary,omitempty" toml:"secondary"`
	Accent     string `json:"accent,omitempty" yaml:"accent,omitempty" toml:"accent"`
	Background string `json:"background,omitempty" yaml:"background,omitempty" toml:"background"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty" toml:"text"`
}

// Typography describes the fonts used by text elements.
type Typography struct {
	HeadingFont string  `json:"headingFont,omitempty" yaml:"headingFont,omitempty" toml:"heading_font"`
	BodyFont    string  `json:"bodyFont,omitempty" yaml:"bodyFont,omitempty" toml:"body_font"`
	BaseSize    float64 `json:"baseSize,omitempty" yaml:"baseSize,omitempty" toml:"base_size"`
}

// Spacing holds layout spacing in pixels.
type Spacing struct {
	Unit    float64 `json:"unit,omitempty" yaml:"unit,omitempty" toml:"unit"`
	Padding float64 `json:"padding,omitempty" yaml:"padding,omitempty" toml:"padding"`
}

// Style is the plan-wide visual style.
type Style struct {
	Preset     string       `json:"preset,omitempty" yaml:"preset,omitempty" toml:"-"`
	Colors     ColorPalette `json:"colors" yaml:"colors" toml:"colors"`
	Typography Typography   `json:"typography" yaml:"typography" toml:"typography"`
	Spacing    Spacing      `json:"spacing" yaml:"spacing" toml:"spacing"`
}

// IsZero reports whether the style carries no values beyond a preset name.
func (s Style) IsZero() bool {
	return s.Colors == (ColorPalette{}) && s.Typography == (Typography{}) && s.Spacing == (Spacing{})
}

// RequiredAsset is an entry of the plan-level asset list produced by the
// planning service. It is informational; resolution is driven by elements.
type RequiredAsset struct {
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Transition describes how a scene hands over to the next one.
type Transition struct {
	Type     string  `json:"type" yaml:"type"`
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Animation is opaque to the pipeline and passed through verbatim.
type Animation map[string]any

// Scene is one time slice of the plan.
type Scene struct {
	ID          string      `json:"id" yaml:"id"`
	StartTime   float64     `json:"startTime" yaml:"startTime"`
	Duration    float64     `json:"duration" yaml:"duration"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Elements    []Element   `json:"elements" yaml:"elements"`
	Animations  []Animation `json:"animations,omitempty" yaml:"animations,omitempty"`
	Transition  *Transition `json:"transition,omitempty" yaml:"transition,omitempty"`
}

// End returns the exclusive end time of the scene.
func (s Scene) End() float64 {
	return s.StartTime + s.Duration
}

// Clone returns a deep copy of the scene.
func (s Scene) Clone() Scene {
	out := s
	out.Elements = CloneElements(s.Elements)
	if s.Animations != nil {
		out.Animations = make([]Animation, len(s.Animations))
		for i, anim := range s.Animations {
			out.Animations[i] = Animation(cloneAttrs(anim))
		}
	}
	if s.Transition != nil {
		tr := *s.Transition
		out.Transition = &tr
	}
	return out
}

// VideoPlan is the declarative description of a video.
type VideoPlan struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title,omitempty" yaml:"title,omitempty"`
	Duration       float64         `json:"duration" yaml:"duration"`
	FPS            int             `json:"fps" yaml:"fps"`
	Resolution     Resolution      `json:"resolution" yaml:"resolution"`
	AspectRatio    AspectRatio     `json:"aspectRatio" yaml:"aspectRatio"`
	Scenes         []Scene         `json:"scenes" yaml:"scenes"`
	RequiredAssets []RequiredAsset `json:"requiredAssets,omitempty" yaml:"requiredAssets,omitempty"`
	Style          Style           `json:"style" yaml:"style"`
}

// Clone returns a deep copy of the plan.
func (p VideoPlan) Clone() VideoPlan {
	out := p
	if p.Scenes != nil {
		out.Scenes = make([]Scene, len(p.Scenes))
		for i, scene := range p.Scenes {
			out.Scenes[i] = scene.Clone()
		}
	}
	if p.RequiredAssets != nil {
		out.RequiredAssets = append([]RequiredAsset(nil), p.RequiredAssets...)
	}
	return out
}

// DisplayName returns the title when present, otherwise the identifier.
func (p VideoPlan) DisplayName() string {
	if title := strings.TrimSpace(p.Title); title != "" {
		return title
	}
	return p.ID
}
