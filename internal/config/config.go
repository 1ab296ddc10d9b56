package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Provider settings
	OpenAIAPIKey string
	GeminiAPIKey string
	AIProvider   string // "openai" or "gemini" (text generation only)
	MaxAIText    int    // max text-generation calls per run (0 = unlimited)
	MaxAIImages  int    // max image-generation calls per run (0 = unlimited)

	// Content store settings
	DatabaseURL string

	// Feed settings
	FeedsConfigPath string
	MaxPerFeed      int

	// Asset cache settings
	ImagesDir       string
	ImagesPublicURL string
	LockWaitDelay   time.Duration

	// Batch settings
	ItemDelay     time.Duration
	PruneAfterRun bool
	PruneDays     int

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		AIProvider:      "openai",
		FeedsConfigPath: "configs/feeds.yaml",
		MaxPerFeed:      10,
		ImagesDir:       "public/images/generated",
		ImagesPublicURL: "/images/generated",
		LockWaitDelay:   3 * time.Second,
		ItemDelay:       2 * time.Second,
		PruneDays:       30,
		RequestTimeout:  60 * time.Second,
		RetryAttempts:   3,
		RetryDelay:      5 * time.Second,
	}

	// Load from environment
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if p := os.Getenv("AI_PROVIDER"); p != "" {
		cfg.AIProvider = p
	}

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.ImagesDir = getEnvOrDefault("IMAGES_DIR", cfg.ImagesDir)
	cfg.ImagesPublicURL = getEnvOrDefault("IMAGES_PUBLIC_URL", cfg.ImagesPublicURL)

	cfg.MaxPerFeed = getEnvIntOrDefault("MAX_PER_FEED", cfg.MaxPerFeed)
	cfg.MaxAIText = getEnvIntOrDefault("MAX_AI_TEXT_REQUESTS", 0)
	cfg.MaxAIImages = getEnvIntOrDefault("MAX_AI_IMAGE_REQUESTS", 0)
	cfg.PruneDays = getEnvIntOrDefault("PRUNE_DAYS", cfg.PruneDays)

	if v := os.Getenv("PRUNE_AFTER_RUN"); v == "true" {
		cfg.PruneAfterRun = true
	}

	if v := os.Getenv("ITEM_DELAY_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.ItemDelay = time.Duration(val) * time.Millisecond
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate reports missing credentials before any batch work starts.
func (c *Config) Validate() error {
	switch c.AIProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
		// Images are always generated through OpenAI
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for image generation")
		}
	default:
		return fmt.Errorf("AI_PROVIDER must be 'openai' or 'gemini'")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}
