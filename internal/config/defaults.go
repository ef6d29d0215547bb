package config

const (
	defaultConfigPath          = "~/.config/vidplan/config.toml"
	defaultDataDir             = "~/.local/share/vidplan"
	defaultLogDir              = "~/.local/share/vidplan/logs"
	defaultGenerationBaseURL   = "http://127.0.0.1:8787/v1/images"
	defaultGenerationStyle     = "photorealistic"
	defaultGenerationTimeout   = 120
	defaultGenerationRetries   = 3
	defaultSceneConcurrency    = 1
	defaultPreloadConcurrency  = 4
	defaultPreloadTimeout      = 30
	defaultWordsPerCaption     = 4
	defaultWordsPerSecond      = 2.5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	generationAPIKeyEnv        = "VIDPLAN_GENERATION_API_KEY"
	generationBaseURLEnv       = "VIDPLAN_GENERATION_URL"
	maxSceneConcurrency        = 16
	maxPreloadConcurrency      = 32
	maxGenerationRetryAttempts = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir(),
		},
		Generation: Generation{
			BaseURL:        defaultGenerationBaseURL,
			DefaultStyle:   defaultGenerationStyle,
			TimeoutSeconds: defaultGenerationTimeout,
			RetryAttempts:  defaultGenerationRetries,
		},
		Resolver: Resolver{
			SceneConcurrency: defaultSceneConcurrency,
		},
		Preload: Preload{
			Concurrency:    defaultPreloadConcurrency,
			TimeoutSeconds: defaultPreloadTimeout,
		},
		Captions: Captions{
			WordsPerCaption: defaultWordsPerCaption,
			WordsPerSecond:  defaultWordsPerSecond,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
