package testsupport

import (
	"path/filepath"
	"testing"

	"vidplan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Generation.APIKey = "test"
	cfgVal.Generation.RetryAttempts = 0
	cfgVal.Generation.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithGenerationURL points the generation client at a test server.
func WithGenerationURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generation.BaseURL = url
	}
}

// WithPreload enables preloading with the given concurrency.
func WithPreload(concurrency int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preload.Enabled = true
		if concurrency > 0 {
			b.cfg.Preload.Concurrency = concurrency
		}
	}
}

// WithSceneConcurrency overrides how many scenes resolve at once.
func WithSceneConcurrency(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.SceneConcurrency = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
