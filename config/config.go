// ABOUTME: Environment-driven configuration for the sync engine
// ABOUTME: Loads .env via godotenv with an XDG fallback path and validates store credentials
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// AppName is used for XDG paths.
const AppName = "chollosync"

// Config holds every knob the engine reads. Required fields are
// validated before any remote call is made.
type Config struct {
	// Remote catalog store (required)
	StoreURL       string
	ConsumerKey    string
	ConsumerSecret string

	// Offer feed (required): HTTP(S) URL or local file path
	FeedURL string

	// Affiliate tracking token inserted into purchase URLs
	AffiliateToken string

	// Best-effort collaborators (optional; empty disables them)
	ShortenerURL       string
	ShortenerSignature string
	ImageHostURL       string
	ImageHostKey       string

	// Tuning
	RequestTimeout  time.Duration
	PageSize        int
	PriceTolerance  float64
	MarkupFactor    float64
	CreateAttempts  int
	CreateDelay     time.Duration
	ImageAttempts   int
	ImageDelay      time.Duration
	DeleteGraceDays int
}

// Default returns the config defaults before env overrides.
func Default() *Config {
	return &Config{
		RequestTimeout: 30 * time.Second,
		PageSize:       100,
		PriceTolerance: 0.01,
		MarkupFactor:   1.20,
		CreateAttempts: 10,
		CreateDelay:    60 * time.Second,
		ImageAttempts:  5,
		ImageDelay:     30 * time.Second,
		// 0 means unmatched entries are deleted unconditionally.
		DeleteGraceDays: 0,
	}
}

// EnvPath returns the default .env location under XDG config home.
func EnvPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ".env")
}

// Load reads configuration from envPath (or the XDG default when empty)
// and the process environment. Process environment wins over the file.
func Load(envPath string) (*Config, error) {
	if envPath == "" {
		envPath = EnvPath()
	}
	// A missing .env file is fine; env vars may carry everything.
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg := Default()

	cfg.StoreURL = strings.TrimRight(envString("STORE_URL", ""), "/")
	cfg.ConsumerKey = envString("STORE_CONSUMER_KEY", "")
	cfg.ConsumerSecret = envString("STORE_CONSUMER_SECRET", "")
	cfg.FeedURL = envString("FEED_URL", "")
	cfg.AffiliateToken = envString("AFFILIATE_TOKEN", "")

	cfg.ShortenerURL = envString("SHORTENER_URL", "")
	cfg.ShortenerSignature = envString("SHORTENER_SIGNATURE", "")
	cfg.ImageHostURL = envString("IMAGE_HOST_URL", "")
	cfg.ImageHostKey = envString("IMAGE_HOST_KEY", "")

	cfg.RequestTimeout = envDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.PageSize = envInt("PAGE_SIZE", cfg.PageSize)
	cfg.MarkupFactor = envFloat("MARKUP_FACTOR", cfg.MarkupFactor)
	cfg.CreateAttempts = envInt("CREATE_ATTEMPTS", cfg.CreateAttempts)
	cfg.CreateDelay = envDuration("CREATE_DELAY", cfg.CreateDelay)
	cfg.ImageAttempts = envInt("IMAGE_ATTEMPTS", cfg.ImageAttempts)
	cfg.ImageDelay = envDuration("IMAGE_DELAY", cfg.ImageDelay)
	cfg.DeleteGraceDays = envInt("DELETE_GRACE_DAYS", cfg.DeleteGraceDays)

	return cfg, nil
}

// Validate fails fast on missing required connection settings.
func (c *Config) Validate() error {
	var missing []string
	if c.StoreURL == "" {
		missing = append(missing, "STORE_URL")
	}
	if c.ConsumerKey == "" {
		missing = append(missing, "STORE_CONSUMER_KEY")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "STORE_CONSUMER_SECRET")
	}
	if c.FeedURL == "" {
		missing = append(missing, "FEED_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.MarkupFactor < 1.0 {
		return fmt.Errorf("MARKUP_FACTOR must be >= 1.0, got %g", c.MarkupFactor)
	}
	return nil
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
