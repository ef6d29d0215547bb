package main

import (
	"encoding/json"
	"strings"
	"testing"

	"vidplan/internal/assets"
	"vidplan/internal/plan"
	"vidplan/internal/testsupport"
)

func TestCheckReportsMissingImages(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	input := env.writePlan(t, "plan.json", testsupport.SamplePlan())

	out, _, err := runCLI(t, []string{"check", input}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not render-ready") {
		t.Fatalf("expected not render-ready error, got %v", err)
	}
	requireContains(t, out, "Missing image")
	requireContains(t, out, "hero")
	requireContains(t, out, "provided")
	requireContains(t, out, "1024x1024")
	if got := env.requests.Load(); got != 0 {
		t.Fatalf("check must not call the generation service, got %d requests", got)
	}
}

func TestCheckPassesAfterResolve(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	input := env.writePlan(t, "plan.json", testsupport.SamplePlan())

	if _, _, err := runCLI(t, []string{"resolve", input, "--no-backup"}, env.configPath); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, _, err := runCLI(t, []string{"check", input, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	var report checkReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.Readiness.Valid || len(report.Timeline) != 0 {
		t.Fatalf("expected clean report, got %+v", report)
	}
	if len(report.Images) != 2 {
		t.Fatalf("expected 2 image rows, got %d", len(report.Images))
	}
	for _, img := range report.Images {
		if !img.Provided {
			t.Fatalf("image %s still unsourced", img.AssetID)
		}
	}
}

func TestBuildCheckReportFlagsTimelineAndSources(t *testing.T) {
	p := testsupport.SamplePlan()
	p.Scenes[1].StartTime = 8
	p.Scenes[0].Elements[1] = plan.Element{ID: "logo", Body: plan.Image{Src: "cdn.example.com/logo.png"}}
	p.Scenes[0].Elements[0].Size = &plan.Size{Width: 640.4, Height: 0}

	report := buildCheckReport(p, assets.Extractor{DefaultStyle: "watercolor"})
	if len(report.Timeline) != 1 || !strings.Contains(report.Timeline[0], "beyond plan duration") {
		t.Fatalf("expected one timeline issue, got %v", report.Timeline)
	}
	if report.Readiness.Valid || len(report.Readiness.Issues) != 1 {
		t.Fatalf("expected invalid logo source, got %+v", report.Readiness)
	}
	hero := report.Images[0]
	if hero.Width != 640 || hero.Height != assets.DefaultHeight || hero.Style != "watercolor" {
		t.Fatalf("unexpected hero row %+v", hero)
	}
}
