package preload

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"vidplan/internal/plan"
	"vidplan/internal/testsupport"
)

func TestPreloadDownloadsAndCaches(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/a.png":
			_, _ = w.Write([]byte("png-bytes"))
		case "/b.jpg":
			_, _ = w.Write(testsupport.PatternBytes(4096))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	var logs bytes.Buffer
	p := New(Options{Dir: dir, Concurrency: 2, Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	urls := []string{server.URL + "/a.png", server.URL + "/missing.png", server.URL + "/b.jpg"}

	entries := p.Preload(context.Background(), urls)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !entries[0].OK() || entries[0].Bytes != int64(len("png-bytes")) || entries[0].SHA256 == "" {
		t.Fatalf("unexpected first entry %#v", entries[0])
	}
	if entries[1].OK() || !strings.Contains(entries[1].Error, "404") {
		t.Fatalf("expected failure entry, got %#v", entries[1])
	}
	if !entries[2].OK() || entries[2].Bytes != 4096 {
		t.Fatalf("unexpected third entry %#v", entries[2])
	}
	if entries[0].Path != CachePath(dir, urls[0]) || filepath.Ext(entries[0].Path) != ".png" {
		t.Fatalf("unexpected cache path %q", entries[0].Path)
	}
	data, err := os.ReadFile(entries[0].Path)
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("unexpected cached data %q %v", data, err)
	}
	if !strings.Contains(logs.String(), "event_type=preload_failed") {
		t.Fatalf("expected failure warning, got:\n%s", logs.String())
	}

	before := atomic.LoadInt32(&hits)
	again := p.Preload(context.Background(), urls[:1])
	if !again[0].Cached || atomic.LoadInt32(&hits) != before {
		t.Fatalf("expected cache hit without download, got %#v", again[0])
	}
}

func TestPreloadWithoutDirectory(t *testing.T) {
	entries := New(Options{}).Preload(context.Background(), []string{"https://cdn/x.png"})
	if len(entries) != 1 || entries[0].OK() || entries[0].Error == "" {
		t.Fatalf("expected configuration failure entry, got %#v", entries)
	}
}

func TestPreloadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	entries := New(Options{Dir: t.TempDir()}).Preload(ctx, []string{"https://cdn/x.png"})
	if entries[0].OK() || !strings.Contains(entries[0].Error, "canceled") {
		t.Fatalf("expected cancellation entry, got %#v", entries[0])
	}
}

func TestURLsCollectsDistinctHTTPSources(t *testing.T) {
	p := testsupport.SamplePlan()
	p.Scenes[1].Elements = append(p.Scenes[1].Elements,
		plan.Element{ID: "dup", Body: plan.Image{Content: "https://cdn.example.com/logo.png"}},
		plan.Element{ID: "data", Body: plan.Image{Content: "data:image/png;base64,AAAA"}},
		plan.Element{ID: "src", Body: plan.Image{Content: "prompt", Src: "http://cdn/src.png"}},
		plan.Element{ID: "video", Body: plan.Video{Source: "https://cdn/clip.mp4"}},
	)
	got := URLs(p)
	want := []string{"https://cdn.example.com/logo.png", "http://cdn/src.png"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected urls %v", got)
	}
}

func TestCachePathExtension(t *testing.T) {
	dir := "/cache"
	tests := map[string]string{
		"https://cdn/a.PNG?x=1":     ".png",
		"https://cdn/a":             ".bin",
		"https://cdn/a.tar.gz":      ".gz",
		"https://cdn/a.verylongext": ".bin",
		"https://cdn/a.p-g":         ".bin",
	}
	for raw, want := range tests {
		if got := filepath.Ext(CachePath(dir, raw)); got != want {
			t.Errorf("CachePath(%q) ext = %q, want %q", raw, got, want)
		}
	}
	if CachePath(dir, "https://cdn/a") == CachePath(dir, "https://cdn/b") {
		t.Fatal("distinct urls share a cache path")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPreload(3))
	p := NewFromConfig(cfg, nil)
	if p.dir != cfg.Paths.CacheDir || p.concurrency != 3 {
		t.Fatalf("unexpected preloader %#v", p)
	}
	if p.client.Timeout != cfg.PreloadTimeout() {
		t.Fatalf("unexpected timeout %s", p.client.Timeout)
	}
}
