package plan

import "strings"

// Kind is the element type tag.
type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindShape    Kind = "shape"
	KindVideo    Kind = "video"
	KindObject3D Kind = "3d-object"
)

// Position places an element on the canvas; Z is the stacking order.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Size is the declared element size in pixels.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Attrs carries presentation keys that the pipeline does not interpret
// (colors, font sizes, opacity, ...).
type Attrs map[string]any

// Element is a positioned piece of scene content. Body holds the fields that
// only make sense for the element's kind.
type Element struct {
	ID       string
	Position Position
	Size     *Size
	Body     Body
}

// Kind returns the element type tag, or an empty kind when no body is set.
func (e Element) Kind() Kind {
	if e.Body == nil {
		return ""
	}
	return e.Body.Kind()
}

// Image returns the image body when the element is an image.
func (e Element) Image() (Image, bool) {
	img, ok := e.Body.(Image)
	return img, ok
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	out := e
	if e.Size != nil {
		size := *e.Size
		out.Size = &size
	}
	if e.Body != nil {
		out.Body = e.Body.clone()
	}
	return out
}

// CloneElements deep-copies a slice of elements.
func CloneElements(elements []Element) []Element {
	if elements == nil {
		return nil
	}
	out := make([]Element, len(elements))
	for i, el := range elements {
		out[i] = el.Clone()
	}
	return out
}

// Body is the closed set of element payloads.
type Body interface {
	Kind() Kind
	clone() Body
}

// Text is a text element body.
type Text struct {
	Text  string
	Attrs Attrs
}

func (Text) Kind() Kind { return KindText }

func (t Text) clone() Body {
	t.Attrs = cloneAttrs(t.Attrs)
	return t
}

// Image is an image element body. Content is either a source URL or a prompt
// describing the image to generate; Src mirrors the style-level source field
// read by some renderers.
type Image struct {
	Content    string
	Src        string
	ImageStyle string
	Attrs      Attrs
}

func (Image) Kind() Kind { return KindImage }

func (i Image) clone() Body {
	i.Attrs = cloneAttrs(i.Attrs)
	return i
}

// HasSource reports whether the image already points at usable content: an
// http(s) or data URI in Content, or a non-empty Src.
func (i Image) HasSource() bool {
	if IsSourceURI(i.Content) {
		return true
	}
	return strings.TrimSpace(i.Src) != ""
}

// Source returns the value a renderer would load: Content when it is a URI,
// otherwise Src.
func (i Image) Source() string {
	if IsSourceURI(i.Content) {
		return strings.TrimSpace(i.Content)
	}
	return strings.TrimSpace(i.Src)
}

// WithSource returns a copy of the image whose Content and Src both carry url.
func (i Image) WithSource(url string) Image {
	out := i.clone().(Image)
	out.Content = url
	out.Src = url
	return out
}

// Shape is a vector shape element body.
type Shape struct {
	Shape string
	Attrs Attrs
}

func (Shape) Kind() Kind { return KindShape }

func (s Shape) clone() Body {
	s.Attrs = cloneAttrs(s.Attrs)
	return s
}

// Video is an embedded video clip body.
type Video struct {
	Source string
	Attrs  Attrs
}

func (Video) Kind() Kind { return KindVideo }

func (v Video) clone() Body {
	v.Attrs = cloneAttrs(v.Attrs)
	return v
}

// Object3D is a 3D model element body.
type Object3D struct {
	Model string
	Attrs Attrs
}

func (Object3D) Kind() Kind { return KindObject3D }

func (o Object3D) clone() Body {
	o.Attrs = cloneAttrs(o.Attrs)
	return o
}

// IsSourceURI reports whether value starts with an http, https or data scheme.
func IsSourceURI(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}

func cloneAttrs(attrs map[string]any) Attrs {
	if attrs == nil {
		return nil
	}
	out := make(Attrs, len(attrs))
	for k, v := range attrs {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(cloneAttrs(val))
	case Attrs:
		return cloneAttrs(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
