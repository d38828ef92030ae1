package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/erraggy/jsonschema/fetch"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/validator"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Validation defaults.
	DefaultDraft    schema.Draft
	OutputFormat    validator.OutputFormat
	FormatAssertion bool

	// Result limits.
	MaxErrors int
	MaxLimit  int

	// Input and fetch settings.
	MaxInlineSize   int64
	FetchTimeout    time.Duration
	AllowRemote     bool
	AllowPrivateIPs bool

	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from JSONSCHEMA_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		DefaultDraft:       envDraft("JSONSCHEMA_DEFAULT_DRAFT", schema.DefaultDraft),
		OutputFormat:       envOutputFormat("JSONSCHEMA_OUTPUT_FORMAT", validator.Basic),
		FormatAssertion:    envBool("JSONSCHEMA_FORMAT_ASSERTION", false),
		MaxErrors:          envInt("JSONSCHEMA_MAX_ERRORS", 100),
		MaxLimit:           envInt("JSONSCHEMA_MAX_LIMIT", 1000),
		MaxInlineSize:      int64(envInt("JSONSCHEMA_MAX_INLINE_SIZE", fetch.MaxDocumentSize)),
		FetchTimeout:       envDuration("JSONSCHEMA_FETCH_TIMEOUT", fetch.DefaultTimeout),
		AllowRemote:        envBool("JSONSCHEMA_ALLOW_REMOTE", false),
		AllowPrivateIPs:    envBool("JSONSCHEMA_ALLOW_PRIVATE_IPS", false),
		CacheEnabled:       envBool("JSONSCHEMA_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("JSONSCHEMA_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("JSONSCHEMA_CACHE_FILE_TTL", 15*time.Minute),
		CacheURLTTL:        envDuration("JSONSCHEMA_CACHE_URL_TTL", 5*time.Minute),
		CacheContentTTL:    envDuration("JSONSCHEMA_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("JSONSCHEMA_CACHE_SWEEP_INTERVAL", 60*time.Second),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}

func envDraft(key string, fallback schema.Draft) schema.Draft {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := schema.ParseDraft(v)
	if err != nil {
		slog.Warn("invalid draft env var, using default", "key", key, "value", v, "default", fallback.String()) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}

func envOutputFormat(key string, fallback validator.OutputFormat) validator.OutputFormat {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := validator.ParseOutputFormat(v)
	if err != nil {
		slog.Warn("invalid output format env var, using default", "key", key, "value", v, "default", fallback.String()) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return f
}
