package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/erraggy/xmltools/parser"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// Input limits.
	MaxInlineSize int64

	// Default policy limits applied when a tool call does not override them.
	MaxDepth      int
	MaxChildren   int
	MaxAttributes int
	MaxTextLength int

	// External entity resolution. Off by default: the server parses
	// documents on behalf of remote clients and must not read local files
	// they name.
	ExternalEntities bool
	AllowDTD         bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from XMLTOOLS_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("XMLTOOLS_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("XMLTOOLS_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("XMLTOOLS_CACHE_FILE_TTL", 15*time.Minute),
		CacheContentTTL:    envDuration("XMLTOOLS_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("XMLTOOLS_CACHE_SWEEP_INTERVAL", 60*time.Second),
		MaxInlineSize:      int64(envInt("XMLTOOLS_MAX_INLINE_SIZE", 4*1024*1024)),
		MaxDepth:           envInt("XMLTOOLS_MAX_DEPTH", parser.DefaultMaxDepth),
		MaxChildren:        envInt("XMLTOOLS_MAX_CHILDREN", parser.DefaultMaxChildren),
		MaxAttributes:      envInt("XMLTOOLS_MAX_ATTRIBUTES", parser.DefaultMaxAttributes),
		MaxTextLength:      envInt("XMLTOOLS_MAX_TEXT_LENGTH", parser.DefaultMaxTextLength),
		ExternalEntities:   envBool("XMLTOOLS_EXTERNAL_ENTITIES", false),
		AllowDTD:           envBool("XMLTOOLS_ALLOW_DTD", false),
	}
}

// defaultPolicy builds the baseline policy from the server configuration.
func (c *serverConfig) defaultPolicy() parser.Policy {
	policy := parser.DefaultPolicy()
	policy.MaxDepth = c.MaxDepth
	policy.MaxChildren = c.MaxChildren
	policy.MaxAttributes = c.MaxAttributes
	policy.MaxTextLength = c.MaxTextLength
	policy.AllowDTD = c.AllowDTD
	return policy
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
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
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
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
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
