package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string
	Format string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL          string
	JWTSecret            string
	Port                 string
	TokenTTL             time.Duration
	OperatorEmail        string
	OperatorPasswordHash string
	ViewerEmail          string
	ViewerPasswordHash   string
	RateLimitScan        RateLimitConfig
	AutoPause            time.Duration

	WorkerBaseURL       string
	FetchTimeout        time.Duration
	ClassifyConcurrency int
	MobileProbe         string

	RedisAddr       string
	RedisPassword   string
	VerdictCacheTTL time.Duration

	NotionAPIKey     string
	NotionDatabaseID string

	AnthropicAPIKey string
	AnthropicModel  string

	OutputDir    string
	SettingsPath string

	Log LogConfig
}

// Mobile probe modes.
const (
	MobileProbeChrome = "chrome"
	MobileProbeOff    = "off"
)

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret"),
		Port:                 getEnv("PORT", "8080"),
		TokenTTL:             parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		OperatorEmail:        strings.ToLower(getEnv("OPERATOR_EMAIL", "")),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		ViewerEmail:          strings.ToLower(getEnv("VIEWER_EMAIL", "")),
		ViewerPasswordHash:   getEnv("VIEWER_PASSWORD_HASH", ""),
		AutoPause:            parseDuration(getEnv("AUTO_PAUSE", "24h"), 24*time.Hour),
		WorkerBaseURL:        getEnv("WORKER_BASE_URL", ""),
		FetchTimeout:         parseDuration(getEnv("FETCH_TIMEOUT", "15s"), 15*time.Second),
		ClassifyConcurrency:  parseInt(getEnv("CLASSIFY_CONCURRENCY", "4"), 4),
		MobileProbe:          strings.ToLower(getEnv("MOBILE_PROBE", MobileProbeOff)),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		VerdictCacheTTL:      parseDuration(getEnv("VERDICT_CACHE_TTL", "24h"), 24*time.Hour),
		NotionAPIKey:         getEnv("NOTION_API_KEY", ""),
		NotionDatabaseID:     NormalizeNotionDatabaseID(getEnv("NOTION_DATABASE_ID", "")),
		AnthropicAPIKey:      getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:       getEnv("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		OutputDir:            getEnv("OUTPUT_DIR", "output"),
		SettingsPath:         getEnv("SETTINGS_PATH", "settings.json"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	switch cfg.MobileProbe {
	case MobileProbeChrome, MobileProbeOff:
	default:
		return nil, fmt.Errorf("invalid MOBILE_PROBE value %q: expected %s or %s", cfg.MobileProbe, MobileProbeChrome, MobileProbeOff)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCAN", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCAN value: %w", err)
	}
	cfg.RateLimitScan = rl

	return cfg, nil
}

var (
	nonIDChars = regexp.MustCompile(`[^0-9a-fA-F-]`)
	hex32      = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// NormalizeNotionDatabaseID accepts ids pasted with quotes, URL fragments or without dashes
// and returns the dashed lower-case UUID form. Values that do not reduce to 32 hex
// digits are returned cleaned but otherwise unchanged.
func NormalizeNotionDatabaseID(raw string) string {
	id := strings.Trim(strings.TrimSpace(raw), `"'`)
	if id == "" {
		return ""
	}
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		id = id[:i]
	}
	// Notion page URLs end in "<title>-<32 hex>"; keep the trailing id.
	if len(id) > 32 {
		tail := id[len(id)-32:]
		if hex32.MatchString(strings.ToLower(tail)) {
			id = tail
		}
	}
	id = nonIDChars.ReplaceAllString(id, "")
	compact := strings.ToLower(strings.ReplaceAll(id, "-", ""))
	if !hex32.MatchString(compact) {
		return id
	}
	return compact[0:8] + "-" + compact[8:12] + "-" + compact[12:16] + "-" + compact[16:20] + "-" + compact[20:32]
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
