package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Search    SearchConfig
	Store     StoreConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for all surface traffic.
	DefaultProxy string

	// Incognito requests off-screen surfaces in an incognito browser
	// context. Creation failures fall back to the default context once.
	Incognito bool // default: false
}

// ScraperConfig controls surface loading behavior.
type ScraperConfig struct {
	// LoadTimeout bounds the wait for a surface's load-complete signal.
	LoadTimeout time.Duration // default: 30s

	// SettleDelay is the fixed wait after load-complete, giving
	// client-side rendering time to finish mutating the DOM.
	SettleDelay time.Duration // default: 2s

	// BlockedResourceTypes lists resource types blocked while loading
	// result pages. default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// SearchConfig controls how result-page URLs are built.
type SearchConfig struct {
	// BaseURL is the search endpoint. default: "https://www.google.com/search"
	BaseURL string

	// Language sets the "hl" parameter when non-empty.
	Language string

	// Region sets the "gl" parameter when non-empty.
	Region string

	// ResultsPerPage is the page stride used for the "start" parameter.
	ResultsPerPage int // default: 10

	// SelectorsFile optionally points at a YAML file overriding the
	// built-in selector strategy lists, so layout drift is a
	// configuration change rather than a code change.
	SelectorsFile string
}

// StoreConfig controls the persisted result set.
type StoreConfig struct {
	// Path is the sqlite database file. default: "serptrack.db"
	Path string

	// MaxRecords caps the persisted set; lowest ranks are kept.
	MaxRecords int // default: 1000
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// APIKeys is the list of valid API keys. Empty disables auth.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SERPTRACK_HOST", "0.0.0.0"),
			Port: envIntOr("SERPTRACK_PORT", 8080),
			Mode: envOr("SERPTRACK_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("SERPTRACK_HEADLESS", true),
			NoSandbox:    envBoolOr("SERPTRACK_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SERPTRACK_BROWSER_BIN"),
			DefaultProxy: os.Getenv("SERPTRACK_PROXY"),
			Incognito:    envBoolOr("SERPTRACK_INCOGNITO", false),
		},
		Scraper: ScraperConfig{
			LoadTimeout: envDurationOr("SERPTRACK_LOAD_TIMEOUT", 30*time.Second),
			SettleDelay: envDurationOr("SERPTRACK_SETTLE_DELAY", 2*time.Second),
			BlockedResourceTypes: envSliceOr("SERPTRACK_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Search: SearchConfig{
			BaseURL:        envOr("SERPTRACK_SEARCH_URL", "https://www.google.com/search"),
			Language:       os.Getenv("SERPTRACK_SEARCH_HL"),
			Region:         os.Getenv("SERPTRACK_SEARCH_GL"),
			ResultsPerPage: envIntOr("SERPTRACK_RESULTS_PER_PAGE", 10),
			SelectorsFile:  os.Getenv("SERPTRACK_SELECTORS_FILE"),
		},
		Store: StoreConfig{
			Path:       envOr("SERPTRACK_DB_PATH", "serptrack.db"),
			MaxRecords: envIntOr("SERPTRACK_MAX_RECORDS", 1000),
		},
		Auth: AuthConfig{
			APIKeys: envSliceOr("SERPTRACK_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SERPTRACK_RATE_RPS", 5.0),
			Burst:             envIntOr("SERPTRACK_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("SERPTRACK_LOG_LEVEL", "info"),
			Format: envOr("SERPTRACK_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
