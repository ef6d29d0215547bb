package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGeneration()
	c.normalizeResolver()
	c.normalizePreload()
	c.normalizeCaptions()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGeneration() {
	c.Generation.APIKey = strings.TrimSpace(c.Generation.APIKey)
	if c.Generation.APIKey == "" {
		if value, ok := os.LookupEnv(generationAPIKeyEnv); ok {
			c.Generation.APIKey = strings.TrimSpace(value)
		}
	}
	c.Generation.BaseURL = strings.TrimSpace(c.Generation.BaseURL)
	if value, ok := os.LookupEnv(generationBaseURLEnv); ok && strings.TrimSpace(value) != "" {
		c.Generation.BaseURL = strings.TrimSpace(value)
	}
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = defaultGenerationBaseURL
	}
	c.Generation.DefaultStyle = strings.TrimSpace(c.Generation.DefaultStyle)
	if c.Generation.DefaultStyle == "" {
		c.Generation.DefaultStyle = defaultGenerationStyle
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = defaultGenerationTimeout
	}
}

func (c *Config) normalizeResolver() {
	if c.Resolver.SceneConcurrency == 0 {
		c.Resolver.SceneConcurrency = defaultSceneConcurrency
	}
}

func (c *Config) normalizePreload() {
	if c.Preload.Concurrency == 0 {
		c.Preload.Concurrency = defaultPreloadConcurrency
	}
	if c.Preload.TimeoutSeconds <= 0 {
		c.Preload.TimeoutSeconds = defaultPreloadTimeout
	}
}

func (c *Config) normalizeCaptions() {
	if c.Captions.WordsPerCaption == 0 {
		c.Captions.WordsPerCaption = defaultWordsPerCaption
	}
	if c.Captions.WordsPerSecond == 0 {
		c.Captions.WordsPerSecond = defaultWordsPerSecond
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
