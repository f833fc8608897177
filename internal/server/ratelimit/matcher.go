package ratelimit

import (
	"net/http"
	"strings"
)

// exempt requests never consume tokens: liveness probes and CORS preflights.
func exempt(path, method string) bool {
	return method == http.MethodOptions || (path == "/health" && method == http.MethodGet)
}

// MatchEndpoint returns the config for a request, or nil when none applies.
// An exact path wins over a prefix config (a Path ending in "/").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if exempt(path, method) {
		return &EndpointConfig{Path: path, Method: method}
	}

	var prefix *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if prefix == nil && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			prefix = cfg
		}
	}
	return prefix
}
