// Package presets holds the immutable style presets and aspect-ratio table
// used to fill in plan defaults.
//
// The table is embedded as TOML and parsed once on first use; callers only
// ever receive copies, so there is no shared mutable state after start-up.
package presets

import (
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"vidplan/internal/plan"
)

//go:embed presets.toml
var presetsTOML string

type table struct {
	DefaultStyle string                     `toml:"default_style"`
	DefaultFPS   int                        `toml:"default_fps"`
	Aspect       map[string]plan.Resolution `toml:"aspect"`
	Styles       map[string]plan.Style      `toml:"styles"`
}

var loadTable = sync.OnceValues(func() (table, error) {
	var t table
	if err := toml.Unmarshal([]byte(presetsTOML), &t); err != nil {
		return table{}, fmt.Errorf("parse presets: %w", err)
	}
	if _, ok := t.Styles[t.DefaultStyle]; !ok {
		return table{}, fmt.Errorf("parse presets: default style %q not defined", t.DefaultStyle)
	}
	for _, class := range []plan.AspectRatio{plan.AspectLandscape, plan.AspectPortrait, plan.AspectSquare} {
		if res, ok := t.Aspect[string(class)]; !ok || res.IsZero() {
			return table{}, fmt.Errorf("parse presets: aspect %q missing", class)
		}
	}
	return t, nil
})

func mustTable() table {
	t, err := loadTable()
	if err != nil {
		panic(err)
	}
	return t
}

// Aspect returns the default resolution for an aspect-ratio class.
func Aspect(class plan.AspectRatio) (plan.Resolution, bool) {
	res, ok := mustTable().Aspect[string(class)]
	return res, ok
}

// Classify maps a resolution to its aspect-ratio class.
func Classify(res plan.Resolution) plan.AspectRatio {
	if res.IsZero() {
		return ""
	}
	ratio := float64(res.Width) / float64(res.Height)
	switch {
	case math.Abs(ratio-1) < 0.05:
		return plan.AspectSquare
	case ratio > 1:
		return plan.AspectLandscape
	default:
		return plan.AspectPortrait
	}
}

// Style returns a copy of the named style preset.
func Style(name string) (plan.Style, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	style, ok := mustTable().Styles[name]
	if !ok {
		return plan.Style{}, false
	}
	style.Preset = name
	return style, true
}

// DefaultStyleName returns the preset applied when a plan has no style.
func DefaultStyleName() string {
	return mustTable().DefaultStyle
}

// Names lists the available style presets in sorted order.
func Names() []string {
	styles := mustTable().Styles
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of p with missing plan-level settings filled from the
// tables: aspect class, resolution, frame rate, and global style.
func Apply(p plan.VideoPlan) (plan.VideoPlan, error) {
	t := mustTable()
	out := p.Clone()

	if out.AspectRatio == "" {
		out.AspectRatio = Classify(out.Resolution)
		if out.AspectRatio == "" {
			out.AspectRatio = plan.AspectLandscape
		}
	}
	if !out.AspectRatio.Valid() {
		return plan.VideoPlan{}, fmt.Errorf("unknown aspect ratio %q", out.AspectRatio)
	}
	if out.Resolution.IsZero() {
		out.Resolution = t.Aspect[string(out.AspectRatio)]
	}
	if out.FPS <= 0 {
		out.FPS = t.DefaultFPS
	}
	if out.Style.IsZero() {
		name := out.Style.Preset
		if strings.TrimSpace(name) == "" {
			name = t.DefaultStyle
		}
		style, ok := Style(name)
		if !ok {
			return plan.VideoPlan{}, fmt.Errorf("unknown style preset %q (available: %s)", name, strings.Join(Names(), ", "))
		}
		out.Style = style
	}
	return out, nil
}
