package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidplan/internal/config"
	"vidplan/internal/logging"
	"vidplan/internal/services"
)

func TestConsoleFormatRendersComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "resolver")
	logger.Info("scene resolved", logging.Int("ready", 2), logging.String("note", "two words"))

	line := buf.String()
	for _, fragment := range []string{"INFO resolver: scene resolved", "ready=2", `note="two words"`} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix only: %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no source location at info level: %q", line)
	}
}

func TestDebugMessagesFilteredAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("asset failed", logging.String("asset_id", "img-1"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if record["level"] != "warn" || record["asset_id"] != "img-1" || record["ts"] == nil {
		t.Fatalf("unexpected record: %#v", record)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigMirrorsToLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "info"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello file")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "vidplan.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello file"`) {
		t.Fatalf("expected JSON record in log file, got %q", data)
	}
}

func TestWithContextAddsPipelineFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := logging.New(logging.Options{Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithSceneIndex(ctx, 3)
	ctx = services.WithAssetID(ctx, "hero")

	logging.WithContext(ctx, base).Info("generating")
	line := buf.String()
	for _, fragment := range []string{"run_id=run-1", "scene_index=3", "asset_id=hero"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "preload failed", "preload_failed", logging.String(logging.FieldImpact, "cache miss at render time"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldEventType] != "preload_failed" || record[logging.FieldErrorHint] == nil {
		t.Fatalf("missing injected fields: %#v", record)
	}
	if record[logging.FieldImpact] != "cache miss at render time" {
		t.Fatalf("explicit impact overridden: %#v", record)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
}

func TestProgressSampler(t *testing.T) {
	s := logging.NewProgressSampler(50)
	steps := []struct {
		scene, done, total int
		want               bool
	}{
		{0, 0, 4, true},
		{0, 1, 4, false},
		{0, 2, 4, true},
		{1, 3, 4, true},
		{1, 4, 4, true},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.scene, step.done, step.total); got != step.want {
			t.Fatalf("step %d: ShouldLog = %v, want %v", i, got, step.want)
		}
	}
	var nilSampler *logging.ProgressSampler
	if !nilSampler.ShouldLog(0, 0, 0) {
		t.Fatal("nil sampler should log everything")
	}
}
