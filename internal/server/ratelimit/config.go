package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig limits analysis submissions to perHour per client with the given
// burst. A perHour of zero disables limiting. exempt is a comma-separated
// list of client IPs that are never limited.
func NewConfig(perHour, burst int, exempt string) *Config {
	if perHour <= 0 {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    0,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Exempt:          parseIPList(exempt),
		EndpointConfigs: AnalyzeEndpointConfigs(perHour, burst),
	}
}

// AnalyzeEndpointConfigs limits both submission endpoints. Each client gets
// its own bucket per endpoint.
func AnalyzeEndpointConfigs(perHour, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/analyze", Method: "POST", Limit: perHour, Window: time.Hour, Burst: burst},
		{Path: "/analyze/stream", Method: "POST", Limit: perHour, Window: time.Hour, Burst: burst},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
