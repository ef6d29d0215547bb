package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"vidplan/internal/config"
	"vidplan/internal/plan"
	"vidplan/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	requests   *atomic.Int32
}

// setupCLITestEnv writes a config file whose generation endpoint is handler.
// A nil handler answers every request with an image URL derived from the
// asset id.
func setupCLITestEnv(t *testing.T, handler http.HandlerFunc, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	if handler == nil {
		handler = imageHandler
	}
	requests := new(atomic.Int32)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	opts = append([]testsupport.ConfigOption{testsupport.WithGenerationURL(server.URL + "/v1/images")}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("VIDPLAN_GENERATION_URL", "")

	configPath := filepath.Join(base, "config.toml")
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, configPath, data)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base, requests: requests}
}

func imageHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AssetID string `json:"assetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"url":"https://img.example.com/%s.png"}`, body.AssetID)
}

func (e *cliTestEnv) writePlan(t *testing.T, name string, p plan.VideoPlan) string {
	t.Helper()
	path := filepath.Join(e.baseDir, name)
	if err := plan.SaveFile(path, p); err != nil {
		t.Fatalf("save plan: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

func imageSource(t *testing.T, p plan.VideoPlan, id string) string {
	t.Helper()
	for _, scene := range p.Scenes {
		for _, el := range scene.Elements {
			if el.ID != id {
				continue
			}
			img, ok := el.Image()
			if !ok {
				t.Fatalf("element %s is not an image", id)
			}
			return img.Source()
		}
	}
	t.Fatalf("element %s not found", id)
	return ""
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}
