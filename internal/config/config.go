package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hirehi-monitor/internal/models"
)

type Config struct {
	// HTTP server
	ListenAddr string

	// HireHi API
	HireHiBaseURL string
	HireHiTimeout time.Duration
	PageLimit     int
	PageDelay     time.Duration
	MaxPages      int

	// Search defaults
	Category    string
	Format      string
	Levels      []string
	Subcategory string
	Keywords    []string

	// Local cache
	CacheFile string
	CacheTTL  time.Duration

	// Archive database (optional; archive endpoints are disabled without it)
	PostgresDSN string

	// Redis rate limiter (optional; limiter is disabled without it)
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	MaxRequestsPerMinute int

	// Background refresh (zero disables the scheduler)
	RefreshInterval time.Duration

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		ListenAddr:           ":10000",
		HireHiBaseURL:        "https://hirehi.ru",
		HireHiTimeout:        20 * time.Second,
		PageLimit:            27,
		PageDelay:            time.Second,
		MaxPages:             1000,
		Category:             "qa",
		Format:               "удалённо",
		Levels:               []string{"senior", "middle"},
		Subcategory:          "auto",
		Keywords:             []string{"Kotlin", "Android"},
		CacheFile:            "hirehi_jobs.json",
		CacheTTL:             time.Hour,
		MaxRequestsPerMinute: 60,
		RedisDB:              0,
		LogLevel:             "info",
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	if baseURL := os.Getenv("HIREHI_BASE_URL"); baseURL != "" {
		cfg.HireHiBaseURL = baseURL
	}

	if timeout := os.Getenv("HIREHI_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid HIREHI_TIMEOUT: %w", err)
		}
		cfg.HireHiTimeout = d
	}

	if category := os.Getenv("SEARCH_CATEGORY"); category != "" {
		cfg.Category = category
	}

	if format := os.Getenv("SEARCH_FORMAT"); format != "" {
		cfg.Format = format
	}

	if levels := os.Getenv("SEARCH_LEVELS"); levels != "" {
		cfg.Levels = splitList(levels)
	}

	if subcategory := os.Getenv("SEARCH_SUBCATEGORY"); subcategory != "" {
		cfg.Subcategory = subcategory
	}

	if keywords := os.Getenv("SEARCH_KEYWORDS"); keywords != "" {
		cfg.Keywords = splitList(keywords)
	}

	if cacheFile := os.Getenv("CACHE_FILE"); cacheFile != "" {
		cfg.CacheFile = cacheFile
	}

	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}

	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		db, err := strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if maxRequests := os.Getenv("MAX_REQUESTS_PER_MINUTE"); maxRequests != "" {
		n, err := strconv.Atoi(maxRequests)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_REQUESTS_PER_MINUTE: %w", err)
		}
		cfg.MaxRequestsPerMinute = n
	}

	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
		}
		cfg.RefreshInterval = d
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is empty")
	}

	if c.HireHiBaseURL == "" {
		return fmt.Errorf("hirehi base URL is empty")
	}

	if c.PageLimit < 1 || c.PageLimit > 100 {
		return fmt.Errorf("page limit must be between 1 and 100")
	}

	if c.CacheTTL < time.Minute {
		return fmt.Errorf("cache TTL too small: %v", c.CacheTTL)
	}

	if c.RefreshInterval != 0 && c.RefreshInterval < time.Minute {
		return fmt.Errorf("refresh interval too small: %v", c.RefreshInterval)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// SearchParams builds the default search from the configured values.
func (c *Config) SearchParams() models.SearchParams {
	return models.SearchParams{
		Category:    c.Category,
		Format:      c.Format,
		Levels:      c.Levels,
		Subcategory: c.Subcategory,
		Keywords:    c.Keywords,
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
