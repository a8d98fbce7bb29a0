package ratelimit

import (
	"strings"
)

// unlimited is returned for routes that are never limited
var unlimited = &EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint finds the configuration for a request. Exact patterns win over
// patterns with {name} segments, which win over trailing-slash prefixes.
// Returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return unlimited
	}

	var templated, prefixed *EndpointConfig
	segments := splitPath(path)

	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		switch {
		case config.Path == path:
			return config
		case templated == nil && strings.Contains(config.Path, "{") && matchSegments(splitPath(config.Path), segments):
			templated = config
		case prefixed == nil && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path):
			prefixed = config
		}
	}

	if templated != nil {
		return templated
	}
	return prefixed
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}
