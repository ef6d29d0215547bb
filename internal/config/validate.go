package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validatePreload(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateGeneration() error {
	parsed, err := url.Parse(strings.TrimSpace(c.Generation.BaseURL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("generation.base_url must be an absolute http(s) URL, got %q", c.Generation.BaseURL)
	}
	if c.Generation.TimeoutSeconds <= 0 {
		return errors.New("generation.timeout_seconds must be positive")
	}
	if c.Generation.RetryAttempts < 0 || c.Generation.RetryAttempts > maxGenerationRetryAttempts {
		return fmt.Errorf("generation.retry_attempts must be between 0 and %d", maxGenerationRetryAttempts)
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.SceneConcurrency < 1 || c.Resolver.SceneConcurrency > maxSceneConcurrency {
		return fmt.Errorf("resolver.scene_concurrency must be between 1 and %d", maxSceneConcurrency)
	}
	return nil
}

func (c *Config) validatePreload() error {
	if c.Preload.Concurrency < 1 || c.Preload.Concurrency > maxPreloadConcurrency {
		return fmt.Errorf("preload.concurrency must be between 1 and %d", maxPreloadConcurrency)
	}
	if c.Preload.Enabled && strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set when preload.enabled is true")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.WordsPerCaption < 1 {
		return errors.New("captions.words_per_caption must be positive")
	}
	if c.Captions.WordsPerSecond <= 0 {
		return errors.New("captions.words_per_second must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
