package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	styleKeySrc        = "src"
	styleKeyImageStyle = "imageStyle"
)

// wireElement is the loose on-disk element shape produced by the planning
// service.
type wireElement struct {
	ID       string         `json:"id" yaml:"id"`
	Type     Kind           `json:"type" yaml:"type"`
	Content  string         `json:"content" yaml:"content"`
	Position Position       `json:"position" yaml:"position"`
	Size     *Size          `json:"size,omitempty" yaml:"size,omitempty"`
	Style    map[string]any `json:"style,omitempty" yaml:"style,omitempty"`
}

func (e Element) toWire() wireElement {
	w := wireElement{ID: e.ID, Position: e.Position}
	if e.Size != nil {
		size := *e.Size
		w.Size = &size
	}
	switch body := e.Body.(type) {
	case Text:
		w.Type, w.Content, w.Style = KindText, body.Text, cloneAttrs(body.Attrs)
	case Image:
		w.Type, w.Content = KindImage, body.Content
		style := cloneAttrs(body.Attrs)
		if body.Src != "" || body.ImageStyle != "" {
			if style == nil {
				style = Attrs{}
			}
			if body.Src != "" {
				style[styleKeySrc] = body.Src
			}
			if body.ImageStyle != "" {
				style[styleKeyImageStyle] = body.ImageStyle
			}
		}
		w.Style = style
	case Shape:
		w.Type, w.Content, w.Style = KindShape, body.Shape, cloneAttrs(body.Attrs)
	case Video:
		w.Type, w.Content, w.Style = KindVideo, body.Source, cloneAttrs(body.Attrs)
	case Object3D:
		w.Type, w.Content, w.Style = KindObject3D, body.Model, cloneAttrs(body.Attrs)
	}
	return w
}

func (w wireElement) element() (Element, error) {
	el := Element{ID: strings.TrimSpace(w.ID), Position: w.Position}
	if w.Size != nil {
		size := *w.Size
		el.Size = &size
	}
	attrs := cloneAttrs(w.Style)
	switch Kind(strings.ToLower(strings.TrimSpace(string(w.Type)))) {
	case KindText:
		el.Body = Text{Text: w.Content, Attrs: attrs}
	case KindImage:
		img := Image{Content: w.Content}
		if src, ok := attrs[styleKeySrc].(string); ok {
			img.Src = src
			delete(attrs, styleKeySrc)
		}
		if style, ok := attrs[styleKeyImageStyle].(string); ok {
			img.ImageStyle = style
			delete(attrs, styleKeyImageStyle)
		}
		if len(attrs) == 0 {
			attrs = nil
		}
		img.Attrs = attrs
		el.Body = img
	case KindShape:
		el.Body = Shape{Shape: w.Content, Attrs: attrs}
	case KindVideo:
		el.Body = Video{Source: w.Content, Attrs: attrs}
	case KindObject3D:
		el.Body = Object3D{Model: w.Content, Attrs: attrs}
	default:
		return Element{}, fmt.Errorf("element %q: unknown type %q", w.ID, w.Type)
	}
	return el, nil
}

// MarshalJSON encodes the element in its loose wire shape.
func (e Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toWire())
}

// UnmarshalJSON decodes the loose wire shape into a typed element.
func (e *Element) UnmarshalJSON(data []byte) error {
	var w wireElement
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	el, err := w.element()
	if err != nil {
		return err
	}
	*e = el
	return nil
}

// MarshalYAML encodes the element in its loose wire shape.
func (e Element) MarshalYAML() (any, error) {
	return e.toWire(), nil
}

// UnmarshalYAML decodes the loose wire shape into a typed element.
func (e *Element) UnmarshalYAML(node *yaml.Node) error {
	var w wireElement
	if err := node.Decode(&w); err != nil {
		return err
	}
	el, err := w.element()
	if err != nil {
		return err
	}
	*e = el
	return nil
}
