package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/summarize"
)

type Config struct {
	Port string

	// Auth. Empty disables bearer auth.
	DocsumAPIKey string

	// LLM provider
	LLMProvider     string
	AnthropicAPIKey string
	AnthropicModel  string
	GoogleProject   string
	GoogleRegion    string
	GeminiModel     string
	LLMRateLimit    float64 // calls per second, 0 = unlimited
	LLMBurst        int
	LLMMaxRetries   int

	// Summarization defaults
	TokenLimit        int
	LowValueThreshold int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Limits
	MaxUploadBytes int64
	MaxConnections int

	// Run state
	RunTTL     time.Duration
	RunTimeout time.Duration

	// PDF
	PDFFallbackPdftotext bool

	CORSAllowedOrigins []string
	LogLevel           slog.Level
}

// LoadDotEnv reads variables from the given files (default ".env") into
// the environment without overriding ones already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocsumAPIKey: os.Getenv("DOCSUM_API_KEY"),

		LLMProvider:     strings.ToLower(envOr("LLM_PROVIDER", llm.ProviderAnthropic)),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GoogleProject:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GoogleRegion:    envOr("GOOGLE_CLOUD_REGION", "us-central1"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-1.5-flash-001"),
		LLMRateLimit:    envFloat("LLM_RATE_LIMIT", 0),
		LLMBurst:        envInt("LLM_BURST", 5),
		LLMMaxRetries:   envInt("LLM_MAX_RETRIES", llm.DefaultMaxRetries),

		TokenLimit:        envInt("TOKEN_LIMIT", summarize.DefaultTokenLimit),
		LowValueThreshold: envInt("LOW_VALUE_THRESHOLD", summarize.DefaultLowValueThreshold),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		MaxConnections: envInt("MAX_CONNECTIONS", 256),

		RunTTL:     envDuration("RUN_TTL", 1*time.Hour),
		RunTimeout: envDuration("RUN_TIMEOUT", 10*time.Minute),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:           envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.TokenLimit <= 0 {
		cfg.TokenLimit = summarize.DefaultTokenLimit
	}
	if cfg.LowValueThreshold < 0 {
		cfg.LowValueThreshold = summarize.DefaultLowValueThreshold
	}
	if cfg.LLMBurst <= 0 {
		cfg.LLMBurst = 1
	}
	if cfg.LLMMaxRetries <= 0 {
		cfg.LLMMaxRetries = llm.DefaultMaxRetries
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 1 * time.Hour
	}

	return cfg
}

// Validate reports missing credentials for the selected provider.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case llm.ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	case llm.ProviderGemini:
		if c.GoogleProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", llm.ProviderAnthropic, llm.ProviderGemini, c.LLMProvider)
	}
	return nil
}

// LLMOptions returns the provider settings for llm.New.
func (c Config) LLMOptions() llm.Options {
	return llm.Options{
		Provider:        c.LLMProvider,
		AnthropicAPIKey: c.AnthropicAPIKey,
		AnthropicModel:  c.AnthropicModel,
		MaxRetries:      c.LLMMaxRetries,
		GoogleProject:   c.GoogleProject,
		GoogleRegion:    c.GoogleRegion,
		GeminiModel:     c.GeminiModel,
	}
}

// Summarize returns the per-run defaults.
func (c Config) Summarize() summarize.Config {
	return summarize.Config{
		TokenLimit:        c.TokenLimit,
		LowValueThreshold: c.LowValueThreshold,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
