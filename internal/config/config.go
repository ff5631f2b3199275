package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "NEWSINTEL_CONFIG"
	httpAddrEnv         = "HTTP_ADDR"
	logLevelEnv         = "LOG_LEVEL"
	newsAPIKeyEnv       = "NEWS_API_KEY"
	newsAPIURLEnv       = "NEWS_API_URL"
	openRouterKeyEnv    = "OPENROUTER_API_KEY"
	openRouterURLEnv    = "OPENROUTER_URL"
	openRouterModelEnv  = "OPENROUTER_MODEL"
	cacheTTLEnv         = "CACHE_TTL_SECONDS"
	requestTimeoutEnv   = "REQUEST_TIMEOUT_SECONDS"
	maxBatchEnv         = "MAX_ARTICLES_PER_BATCH"
	maxContentBytesEnv  = "MAX_CONTENT_BYTES"
	sentimentModelEnv   = "SENTIMENT_MODEL_PATH"
	credibilityModelEnv = "CREDIBILITY_MODEL_PATH"
	enableSentimentEnv  = "ENABLE_SENTIMENT"
	enableCredEnv       = "ENABLE_CREDIBILITY"
	enableSummaryEnv    = "ENABLE_SUMMARY"
	rateLimitRPSEnv     = "RATE_LIMIT_RPS"
	rateLimitBurstEnv   = "RATE_LIMIT_BURST"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	NewsAPI    NewsAPIConfig    `yaml:"newsApi"`
	OpenRouter OpenRouterConfig `yaml:"openRouter"`
	Models     ModelConfig      `yaml:"models"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Cache      CacheConfig      `yaml:"cache"`
	Stages     StageFlags       `yaml:"stages"`
	RateLimit  RateLimitConfig  `yaml:"rateLimit"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NewsAPIConfig wires the article-source provider.
type NewsAPIConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	APIKey         string `yaml:"apiKey"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// OpenRouterConfig defines how to contact the remote summarization API.
type OpenRouterConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	MaxRetries     int    `yaml:"maxRetries"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// ModelConfig points at the local classifier artifacts.
type ModelConfig struct {
	SentimentPath   string `yaml:"sentimentPath"`
	CredibilityPath string `yaml:"credibilityPath"`
}

// PipelineConfig bounds a single processing request.
type PipelineConfig struct {
	RequestTimeoutSeconds int     `yaml:"requestTimeoutSeconds"`
	MaxBatchArticles      int     `yaml:"maxBatchArticles"`
	BatchConcurrency      int     `yaml:"batchConcurrency"`
	MaxContentBytes       int     `yaml:"maxContentBytes"`
	MaxSummaryLength      int     `yaml:"maxSummaryLength"`
	NearThresholdBand     float64 `yaml:"nearThresholdBand"`
}

// RequestTimeout resolves the per-request deadline.
func (p PipelineConfig) RequestTimeout() time.Duration {
	return time.Duration(p.RequestTimeoutSeconds) * time.Second
}

// CacheConfig controls stage-result memoization.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttlSeconds"`
	Size       int `yaml:"size"`
}

// TTL resolves the entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// StageFlags lets any one stage be disabled independently. A disabled
// stage reports origin=unavailable without attempting primary or fallback.
type StageFlags struct {
	Sentiment   bool `yaml:"sentiment"`
	Credibility bool `yaml:"credibility"`
	Summary     bool `yaml:"summary"`
}

// RateLimitConfig bounds outbound calls to paid provider APIs. The
// bucket is shared across concurrent requests.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.APIKey = v
	}
	if v := os.Getenv(newsAPIURLEnv); v != "" {
		c.NewsAPI.BaseURL = v
	}
	if v := os.Getenv(openRouterKeyEnv); v != "" {
		c.OpenRouter.APIKey = v
	}
	if v := os.Getenv(openRouterURLEnv); v != "" {
		c.OpenRouter.Endpoint = v
	}
	if v := os.Getenv(openRouterModelEnv); v != "" {
		c.OpenRouter.Model = v
	}
	if v := os.Getenv(sentimentModelEnv); v != "" {
		c.Models.SentimentPath = v
	}
	if v := os.Getenv(credibilityModelEnv); v != "" {
		c.Models.CredibilityPath = v
	}

	overrideInt(cacheTTLEnv, &c.Cache.TTLSeconds)
	overrideInt(requestTimeoutEnv, &c.Pipeline.RequestTimeoutSeconds)
	overrideInt(maxBatchEnv, &c.Pipeline.MaxBatchArticles)
	overrideInt(maxContentBytesEnv, &c.Pipeline.MaxContentBytes)
	overrideInt(rateLimitBurstEnv, &c.RateLimit.Burst)
	overrideFloat(rateLimitRPSEnv, &c.RateLimit.RequestsPerSecond)
	overrideBool(enableSentimentEnv, &c.Stages.Sentiment)
	overrideBool(enableCredEnv, &c.Stages.Credibility)
	overrideBool(enableSummaryEnv, &c.Stages.Summary)
}

func overrideInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q: %v", key, v, err)
		return
	}
	*dst = parsed
}

func overrideFloat(key string, dst *float64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q: %v", key, v, err)
		return
	}
	*dst = parsed
}

func overrideBool(key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: invalid %s=%q: %v", key, v, err)
		return
	}
	*dst = parsed
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8000"},
		Logging: LoggingConfig{Level: "info"},
		NewsAPI: NewsAPIConfig{
			BaseURL:        "https://newsapi.org/v2",
			TimeoutSeconds: 30,
		},
		OpenRouter: OpenRouterConfig{
			Endpoint:       "https://openrouter.ai/api/v1/chat/completions",
			Model:          "google/gemma-2-9b-it:free",
			MaxRetries:     3,
			TimeoutSeconds: 30,
		},
		Models: ModelConfig{
			SentimentPath:   "models/sentiment.json",
			CredibilityPath: "models/credibility.json",
		},
		Pipeline: PipelineConfig{
			RequestTimeoutSeconds: 60,
			MaxBatchArticles:      20,
			BatchConcurrency:      4,
			MaxContentBytes:       1 << 20,
			MaxSummaryLength:      400,
			NearThresholdBand:     0.05,
		},
		Cache: CacheConfig{TTLSeconds: 3600, Size: 1024},
		Stages: StageFlags{
			Sentiment:   true,
			Credibility: true,
			Summary:     true,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 5},
	}
}
