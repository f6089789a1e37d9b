package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth; empty disables the bearer check.
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Injection into the site template
	SiteDir   string
	RulesPath string

	// Screenshots after injection
	ScreenshotDir  string
	ChromeHeadless bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCSPLICE_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20<<20), // 20MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		SiteDir:   os.Getenv("SITE_DIR"),
		RulesPath: os.Getenv("RULES_PATH"),

		ScreenshotDir:  os.Getenv("SCREENSHOT_DIR"),
		ChromeHeadless: envBool("CHROME_HEADLESS", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// InjectionEnabled reports whether jobs may splice content into the site.
func (c Config) InjectionEnabled() bool {
	return c.SiteDir != ""
}

func (c Config) Validate() error {
	if c.SiteDir != "" {
		info, err := os.Stat(c.SiteDir)
		if err != nil {
			return fmt.Errorf("SITE_DIR: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("SITE_DIR %s is not a directory", c.SiteDir)
		}
		if c.RulesPath == "" {
			return fmt.Errorf("RULES_PATH is required when SITE_DIR is set")
		}
	}
	if c.ScreenshotDir != "" && c.SiteDir == "" {
		return fmt.Errorf("SCREENSHOT_DIR requires SITE_DIR")
	}
	return nil
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
