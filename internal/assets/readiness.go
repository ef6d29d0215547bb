package assets

import (
	"fmt"
	"net/url"
	"strings"

	"vidplan/internal/plan"
)

// Readiness reports whether elements can be handed to a renderer.
type Readiness struct {
	Valid         bool     `json:"valid"`
	MissingImages []string `json:"missingImages"`
	Issues        []string `json:"issues"`
}

// Check inspects every image element. An image with no source is listed in
// MissingImages; a source that is not a well-formed URL is listed in Issues.
func Check(elements []plan.Element) Readiness {
	r := Readiness{MissingImages: []string{}, Issues: []string{}}
	for _, el := range elements {
		img, ok := el.Image()
		if !ok {
			continue
		}
		if !img.HasSource() {
			r.MissingImages = append(r.MissingImages, el.ID)
			continue
		}
		if err := validateSource(img.Source()); err != nil {
			r.Issues = append(r.Issues, fmt.Sprintf("Image %s: %v", el.ID, err))
		}
	}
	r.Valid = len(r.MissingImages) == 0 && len(r.Issues) == 0
	return r
}

// CheckPlan runs Check over every scene. Issue messages are prefixed with the
// scene they came from.
func CheckPlan(p plan.VideoPlan) Readiness {
	r := Readiness{MissingImages: []string{}, Issues: []string{}}
	for i, scene := range p.Scenes {
		sr := Check(scene.Elements)
		r.MissingImages = append(r.MissingImages, sr.MissingImages...)
		for _, issue := range sr.Issues {
			r.Issues = append(r.Issues, fmt.Sprintf("Scene %d (%s): %s", i+1, scene.ID, issue))
		}
	}
	r.Valid = len(r.MissingImages) == 0 && len(r.Issues) == 0
	return r
}

func validateSource(source string) error {
	parsed, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("invalid source url %q: %w", source, err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("source %q is not an absolute url", source)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme == "http" || scheme == "https") && parsed.Host == "" {
		return fmt.Errorf("source %q has no host", source)
	}
	return nil
}
