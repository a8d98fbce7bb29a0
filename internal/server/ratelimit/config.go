package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the rate limit of one route.
type EndpointConfig struct {
	Path   string        // Route pattern; {name} matches one segment, a trailing "/" matches any suffix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) *Config {
	env := envReader(getenv)
	if !env.bool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.int("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits of the match API.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model calls and workbook rendering
		{Path: "/matches/{id}/draft-note", Method: "POST", Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/matches/export.xlsx", Method: "GET", Limit: 30, Window: time.Hour, Burst: 5},

		// Bulk writes fan out to many matches
		{Path: "/matches/bulk/withdraw", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/matches/bulk/status", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		// Single-match writes
		{Path: "/matches", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/matches/{id}/status", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/matches/{id}/employment", Method: "PUT", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/matches/{id}/timeline/{entry_id}", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/matches/{id}", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},

		// Reads use the default limit; /health is unlimited
	}
}

type envReader func(string) string

func (e envReader) int(key string, defaultValue int) int {
	if v, err := strconv.Atoi(e(key)); err == nil {
		return v
	}
	return defaultValue
}

func (e envReader) bool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(e(key)); err == nil {
		return v
	}
	return defaultValue
}

func (e envReader) duration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(e(key)); err == nil {
		return v
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
