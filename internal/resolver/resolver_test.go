package resolver

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vidplan/internal/assets"
	"vidplan/internal/plan"
	"vidplan/internal/testsupport"
)

type recordingGenerator struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (g *recordingGenerator) Generate(_ context.Context, req assets.Requirement) (assets.Generated, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req.AssetID)
	g.mu.Unlock()
	if g.fail[req.AssetID] {
		return assets.Generated{}, errors.New("generation refused")
	}
	return assets.Generated{URL: "https://cdn/" + req.AssetID + ".png"}, nil
}

type sceneEvent struct {
	scene  int
	id     string
	status assets.Status
}

func multiScenePlan() plan.VideoPlan {
	p := testsupport.SamplePlan()
	p.Scenes[1].Elements = append(p.Scenes[1].Elements,
		testsupport.ImageElement("bg", "a starry sky"),
		testsupport.ImageElement("fg", "a lighthouse"),
	)
	return p
}

func TestResolveInjectsAcrossScenes(t *testing.T) {
	original := multiScenePlan()
	snapshot := original.Clone()
	gen := &recordingGenerator{}

	var events []sceneEvent
	result, err := New(gen).Resolve(context.Background(), original, func(scene int, id string, s assets.Status) {
		events = append(events, sceneEvent{scene, id, s})
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if strings.Join(gen.calls, ",") != "hero,bg,fg" {
		t.Fatalf("expected scene-ordered sequential calls, got %v", gen.calls)
	}
	if !reflect.DeepEqual(original, snapshot) {
		t.Fatal("input plan was mutated")
	}

	hero, _ := result.Plan.Scenes[0].Elements[0].Image()
	if hero.Content != "https://cdn/hero.png" || hero.Src != "https://cdn/hero.png" {
		t.Fatalf("hero not injected: %#v", hero)
	}
	logo, _ := result.Plan.Scenes[0].Elements[1].Image()
	if logo.Content != "https://cdn.example.com/logo.png" || logo.Src != "" {
		t.Fatalf("user-provided image changed: %#v", logo)
	}
	if !result.Ready() || !assets.CheckPlan(result.Plan).Valid {
		t.Fatalf("expected render-ready plan: %#v", result.Scenes)
	}
	if result.Plan.ID != original.ID || result.Plan.Duration != original.Duration || result.Plan.Resolution != original.Resolution {
		t.Fatal("plan-level fields changed")
	}

	if events[0].scene != 0 || events[len(events)-1].scene != 1 {
		t.Fatalf("unexpected event order: %#v", events)
	}
	last := events[len(events)-1]
	if last != (sceneEvent{1, "fg", assets.StatusReady}) {
		t.Fatalf("unexpected last event %#v", last)
	}
	ready, failed, pending := result.Counts()
	if ready != 3 || failed != 0 || pending != 0 {
		t.Fatalf("unexpected counts %d/%d/%d", ready, failed, pending)
	}
}

func TestResolveToleratesFailures(t *testing.T) {
	gen := &recordingGenerator{fail: map[string]bool{"bg": true}}
	result, err := New(gen).Resolve(context.Background(), multiScenePlan(), nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(gen.calls) != 3 {
		t.Fatalf("expected all assets attempted, got %v", gen.calls)
	}
	if result.Ready() {
		t.Fatal("expected plan to be incomplete")
	}
	scene := result.Scenes[1]
	if scene.Readiness.Valid || len(scene.Readiness.MissingImages) != 1 || scene.Readiness.MissingImages[0] != "bg" {
		t.Fatalf("unexpected readiness: %#v", scene.Readiness)
	}
	fg, _ := result.Plan.Scenes[1].Elements[2].Image()
	if fg.Src != "https://cdn/fg.png" {
		t.Fatalf("asset after failure not injected: %#v", fg)
	}
	readiness := assets.CheckPlan(result.Plan)
	if readiness.Valid || !reflect.DeepEqual(readiness.MissingImages, []string{"bg"}) {
		t.Fatalf("unexpected plan readiness: %#v", readiness)
	}
}

func TestResolveSceneWithoutRequirementsPassesThrough(t *testing.T) {
	p := testsupport.SamplePlan()
	result, err := New(&recordingGenerator{}).Resolve(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !reflect.DeepEqual(result.Plan.Scenes[1], p.Scenes[1]) {
		t.Fatalf("scene without requirements changed: %#v", result.Plan.Scenes[1])
	}
	if result.Scenes[1].Requirements != 0 || !result.Scenes[1].Resolved {
		t.Fatalf("unexpected report: %#v", result.Scenes[1])
	}
}

func TestResolveCancellationKeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := assets.GeneratorFunc(func(_ context.Context, req assets.Requirement) (assets.Generated, error) {
		if req.AssetID == "bg" {
			cancel()
		}
		return assets.Generated{URL: "https://cdn/" + req.AssetID}, nil
	})

	result, err := New(gen).Resolve(ctx, multiScenePlan(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	hero, _ := result.Plan.Scenes[0].Elements[0].Image()
	bg, _ := result.Plan.Scenes[1].Elements[1].Image()
	fg, _ := result.Plan.Scenes[1].Elements[2].Image()
	if hero.Src == "" || bg.Src == "" {
		t.Fatalf("resolved assets lost: hero=%#v bg=%#v", hero, bg)
	}
	if fg.Src != "" || fg.Content != "a lighthouse" {
		t.Fatalf("unattempted asset should be untouched: %#v", fg)
	}
	if !result.Scenes[0].Resolved || result.Scenes[1].Resolved {
		t.Fatalf("unexpected resolved flags: %#v", result.Scenes)
	}
	_, _, pending := result.Counts()
	if pending != 1 {
		t.Fatalf("expected one pending asset, got %d", pending)
	}
}

func TestResolveAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &recordingGenerator{}
	result, err := New(gen).Resolve(ctx, multiScenePlan(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("expected no generation calls, got %v", gen.calls)
	}
	if len(result.Plan.Scenes) != 2 {
		t.Fatalf("expected plan copy, got %#v", result.Plan)
	}
}

func TestResolveParallelScenesKeepsPerSceneOrder(t *testing.T) {
	p := plan.VideoPlan{ID: "parallel", Duration: 40}
	for s := 0; s < 4; s++ {
		scene := plan.Scene{ID: string(rune('a' + s)), StartTime: float64(s * 10), Duration: 10}
		for e := 0; e < 3; e++ {
			scene.Elements = append(scene.Elements, testsupport.ImageElement(scene.ID+string(rune('0'+e)), "prompt"))
		}
		p.Scenes = append(p.Scenes, scene)
	}

	var inFlight, peak int32
	var mu sync.Mutex
	perScene := map[string][]string{}
	gen := assets.GeneratorFunc(func(_ context.Context, req assets.Requirement) (assets.Generated, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		mu.Lock()
		perScene[req.AssetID[:1]] = append(perScene[req.AssetID[:1]], req.AssetID)
		mu.Unlock()
		return assets.Generated{URL: "https://cdn/" + req.AssetID}, nil
	})

	var progressCalls int32
	result, err := New(gen, WithSceneConcurrency(2)).Resolve(context.Background(), p, func(int, string, assets.Status) {
		atomic.AddInt32(&progressCalls, 1)
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !result.Ready() {
		t.Fatalf("expected ready plan: %#v", result.Scenes)
	}
	if peak > 2 {
		t.Fatalf("scene concurrency exceeded: %d", peak)
	}
	for _, scene := range p.Scenes {
		ids := perScene[scene.ID]
		want := []string{scene.ID + "0", scene.ID + "1", scene.ID + "2"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("scene %s generated out of order: %v", scene.ID, ids)
		}
	}
	if progressCalls != 12*3 {
		t.Fatalf("expected pending/generating/ready per asset, got %d", progressCalls)
	}
	for i, report := range result.Scenes {
		if report.Index != i || report.SceneID != p.Scenes[i].ID {
			t.Fatalf("reports out of scene order: %#v", result.Scenes)
		}
	}
}

func TestResolveUsesDefaultStyle(t *testing.T) {
	var styles []string
	gen := assets.GeneratorFunc(func(_ context.Context, req assets.Requirement) (assets.Generated, error) {
		styles = append(styles, req.Spec.Style)
		return assets.Generated{URL: "https://cdn/x"}, nil
	})
	if _, err := New(gen, WithDefaultStyle("anime")).Resolve(context.Background(), testsupport.SamplePlan(), nil); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(styles) != 1 || styles[0] != "anime" {
		t.Fatalf("unexpected styles %v", styles)
	}
}
