// ABOUTME: Centralized configuration for the docweave pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the ingestion pipeline.
type Config struct {
	// Storage settings
	DBPath      string
	PoolMaxOpen int
	PoolMaxIdle int

	// OpenAI settings
	OpenAIKey    string
	ChatModel    string
	EmbedBaseURL string
	EmbedModel   string
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration

	// Provider throttling
	MinCallInterval time.Duration
	BreakerCooldown time.Duration

	// Decision thresholds
	MergeThreshold    float64
	CreateThreshold   float64
	FallbackThreshold float64

	// Embedding settings
	VectorDim      int
	EmbedBatchSize int

	// Chunking settings
	ChunkMinTokens int
	ChunkMaxTokens int

	// Pipeline settings
	IngestConcurrency int
	MinContentLength  int
}

// DefaultDBPath returns the default database file path following XDG spec.
func DefaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "docweave", "docweave.db")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "docweave", "docweave.db")
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:            getEnv("DOCWEAVE_DB", DefaultDBPath()),
		PoolMaxOpen:       getEnvInt("DOCWEAVE_POOL_MAX", 10),
		PoolMaxIdle:       getEnvInt("DOCWEAVE_POOL_MIN", 2),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		ChatModel:         getEnv("DOCWEAVE_CHAT_MODEL", "gpt-4o-mini"),
		EmbedBaseURL:      getEnv("DOCWEAVE_EMBED_BASE_URL", "https://api.openai.com/v1"),
		EmbedModel:        getEnv("DOCWEAVE_EMBED_MODEL", "text-embedding-3-small"),
		Timeout:           getEnvDuration("DOCWEAVE_PROVIDER_TIMEOUT", 60*time.Second),
		MaxRetries:        getEnvInt("DOCWEAVE_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("DOCWEAVE_RETRY_DELAY", 2*time.Second),
		MinCallInterval:   getEnvDuration("DOCWEAVE_MIN_CALL_INTERVAL", 100*time.Millisecond),
		BreakerCooldown:   getEnvDuration("DOCWEAVE_BREAKER_COOLDOWN", 30*time.Second),
		MergeThreshold:    getEnvFloat("DOCWEAVE_MERGE_THRESHOLD", 0.85),
		CreateThreshold:   getEnvFloat("DOCWEAVE_CREATE_THRESHOLD", 0.40),
		FallbackThreshold: getEnvFloat("DOCWEAVE_FALLBACK_THRESHOLD", 0.60),
		VectorDim:         getEnvInt("DOCWEAVE_VECTOR_DIM", 1536),
		EmbedBatchSize:    getEnvInt("DOCWEAVE_EMBED_BATCH_SIZE", 100),
		ChunkMinTokens:    getEnvInt("DOCWEAVE_CHUNK_MIN_TOKENS", 200),
		ChunkMaxTokens:    getEnvInt("DOCWEAVE_CHUNK_MAX_TOKENS", 500),
		IngestConcurrency: getEnvInt("DOCWEAVE_INGEST_CONCURRENCY", 4),
		MinContentLength:  getEnvInt("DOCWEAVE_MIN_CONTENT_LENGTH", 50),
	}

	return cfg, cfg.Validate()
}

// Validate checks that threshold and size settings are coherent.
func (c *Config) Validate() error {
	if c.MergeThreshold < 0 || c.MergeThreshold > 1 {
		return fmt.Errorf("DOCWEAVE_MERGE_THRESHOLD must be 0-1, got %f", c.MergeThreshold)
	}
	if c.CreateThreshold < 0 || c.CreateThreshold > 1 {
		return fmt.Errorf("DOCWEAVE_CREATE_THRESHOLD must be 0-1, got %f", c.CreateThreshold)
	}
	if c.CreateThreshold >= c.MergeThreshold {
		return fmt.Errorf("create threshold %f must be below merge threshold %f", c.CreateThreshold, c.MergeThreshold)
	}
	if c.FallbackThreshold < c.CreateThreshold || c.FallbackThreshold > c.MergeThreshold {
		return fmt.Errorf("fallback threshold %f must lie inside the ambiguous band", c.FallbackThreshold)
	}
	if c.EmbedBatchSize < 1 {
		return fmt.Errorf("DOCWEAVE_EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize)
	}
	if c.ChunkMinTokens < 1 || c.ChunkMaxTokens < c.ChunkMinTokens {
		return fmt.Errorf("invalid chunk token band %d-%d", c.ChunkMinTokens, c.ChunkMaxTokens)
	}
	if c.VectorDim < 1 {
		return fmt.Errorf("DOCWEAVE_VECTOR_DIM must be positive, got %d", c.VectorDim)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("DOCWEAVE_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.PoolMaxOpen < 1 || c.PoolMaxIdle < 0 || c.PoolMaxIdle > c.PoolMaxOpen {
		return fmt.Errorf("invalid pool bounds min=%d max=%d", c.PoolMaxIdle, c.PoolMaxOpen)
	}
	if c.IngestConcurrency < 1 {
		return fmt.Errorf("DOCWEAVE_INGEST_CONCURRENCY must be positive, got %d", c.IngestConcurrency)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
