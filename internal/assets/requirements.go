package assets

import (
	"math"
	"strings"

	"vidplan/internal/plan"
)

const (
	DefaultDescription = "Generated image"
	DefaultWidth       = 1024
	DefaultHeight      = 1024
	DefaultStyle       = "photorealistic"
)

// Spec is the requested output shape of a generated asset.
type Spec struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Style  string `json:"style"`
}

// Requirement describes content an element needs. AssetID is the owning
// element's identifier.
type Requirement struct {
	AssetID      string    `json:"assetId"`
	Kind         plan.Kind `json:"kind"`
	Description  string    `json:"description"`
	Spec         Spec      `json:"spec"`
	UserProvided bool      `json:"userProvided"`
}

// Extractor turns image elements into requirements.
type Extractor struct {
	// DefaultStyle replaces DefaultStyle when an element has no imageStyle.
	DefaultStyle string
}

// Extract returns requirements for the image elements that still need
// content, in element order, using the package defaults.
func Extract(elements []plan.Element) []Requirement {
	return Extractor{}.Extract(elements)
}

// Extract returns requirements for the image elements that still need
// content, in element order.
func (x Extractor) Extract(elements []plan.Element) []Requirement {
	var out []Requirement
	for _, req := range x.Scan(elements) {
		if !req.UserProvided {
			out = append(out, req)
		}
	}
	return out
}

// Scan describes every image element, marking those whose source the user
// already supplied.
func (x Extractor) Scan(elements []plan.Element) []Requirement {
	var out []Requirement
	for _, el := range elements {
		img, ok := el.Image()
		if !ok {
			continue
		}
		out = append(out, x.requirement(el, img))
	}
	return out
}

func (x Extractor) requirement(el plan.Element, img plan.Image) Requirement {
	req := Requirement{
		AssetID:      el.ID,
		Kind:         plan.KindImage,
		UserProvided: img.HasSource(),
		Description:  strings.TrimSpace(img.Content),
		Spec: Spec{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Style:  strings.TrimSpace(img.ImageStyle),
		},
	}
	if req.UserProvided {
		req.Description = ""
	} else if req.Description == "" {
		req.Description = DefaultDescription
	}
	if el.Size != nil {
		if w := int(math.Round(el.Size.Width)); w > 0 {
			req.Spec.Width = w
		}
		if h := int(math.Round(el.Size.Height)); h > 0 {
			req.Spec.Height = h
		}
	}
	if req.Spec.Style == "" {
		req.Spec.Style = x.defaultStyle()
	}
	return req
}

func (x Extractor) defaultStyle() string {
	if style := strings.TrimSpace(x.DefaultStyle); style != "" {
		return style
	}
	return DefaultStyle
}
