package assets

import (
	"strings"
	"testing"

	"vidplan/internal/plan"
)

func TestCheckReportsMissingImage(t *testing.T) {
	r := Check([]plan.Element{{ID: "empty", Body: plan.Image{Content: ""}}})
	if r.Valid {
		t.Fatal("expected invalid readiness")
	}
	if len(r.MissingImages) != 1 || r.MissingImages[0] != "empty" || len(r.Issues) != 0 {
		t.Fatalf("unexpected readiness: %#v", r)
	}
}

func TestCheckReportsMalformedSources(t *testing.T) {
	r := Check([]plan.Element{
		{ID: "ok", Body: plan.Image{Content: "https://cdn/a.png"}},
		{ID: "data", Body: plan.Image{Content: "data:image/png;base64,AAAA"}},
		{ID: "relative", Body: plan.Image{Src: "images/a.png"}},
		{ID: "nohost", Body: plan.Image{Src: "https:///a.png"}},
		{ID: "bad", Body: plan.Image{Src: "http://[::1"}},
		{ID: "text", Body: plan.Text{Text: ""}},
	})
	if r.Valid || len(r.MissingImages) != 0 {
		t.Fatalf("unexpected readiness: %#v", r)
	}
	if len(r.Issues) != 3 {
		t.Fatalf("expected three issues, got %q", r.Issues)
	}
	for i, id := range []string{"relative", "nohost", "bad"} {
		if !strings.HasPrefix(r.Issues[i], "Image "+id+":") {
			t.Fatalf("issue %d = %q, want element %s", i, r.Issues[i], id)
		}
	}
}

func TestCheckPlanAggregatesScenes(t *testing.T) {
	p := plan.VideoPlan{Scenes: []plan.Scene{
		{ID: "s1", Elements: []plan.Element{{ID: "a", Body: plan.Image{Content: "prompt"}}}},
		{ID: "s2", Elements: []plan.Element{{ID: "b", Body: plan.Image{Src: "relative.png"}}}},
		{ID: "s3", Elements: []plan.Element{{ID: "c", Body: plan.Image{Content: "https://cdn/c.png"}}}},
	}}
	r := CheckPlan(p)
	if r.Valid || len(r.MissingImages) != 1 || r.MissingImages[0] != "a" {
		t.Fatalf("unexpected readiness: %#v", r)
	}
	if len(r.Issues) != 1 || !strings.HasPrefix(r.Issues[0], "Scene 2 (s2): Image b:") {
		t.Fatalf("unexpected issues: %q", r.Issues)
	}
	if ok := CheckPlan(plan.VideoPlan{}); !ok.Valid {
		t.Fatalf("empty plan should be ready: %#v", ok)
	}
}
