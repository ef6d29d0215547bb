package testsupport

import "vidplan/internal/plan"

// ImageElement builds an image element with the given content.
func ImageElement(id, content string) plan.Element {
	return plan.Element{ID: id, Body: plan.Image{Content: content}}
}

// TextElement builds a text element.
func TextElement(id, text string) plan.Element {
	return plan.Element{ID: id, Body: plan.Text{Text: text}}
}

// SamplePlan returns a two-scene landscape plan. The first scene needs one
// generated image and carries one already-sourced image; the second scene has
// only text.
func SamplePlan() plan.VideoPlan {
	return plan.VideoPlan{
		ID:          "plan-1",
		Title:       "Sample",
		Duration:    10,
		FPS:         30,
		Resolution:  plan.Resolution{Width: 1920, Height: 1080},
		AspectRatio: plan.AspectLandscape,
		Scenes: []plan.Scene{
			{
				ID:        "intro",
				StartTime: 0,
				Duration:  5,
				Elements: []plan.Element{
					ImageElement("hero", "a sunset over the sea"),
					ImageElement("logo", "https://cdn.example.com/logo.png"),
					TextElement("title", "Welcome"),
				},
			},
			{
				ID:        "outro",
				StartTime: 5,
				Duration:  5,
				Elements:  []plan.Element{TextElement("bye", "Thanks")},
			},
		},
	}
}
