package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/flower-resume/internal/config"
)

// EndpointConfig represents rate limiting configuration for a group of endpoints.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// FromConfig builds the limiter configuration from the application settings.
func FromConfig(c config.RateLimitConfig) *Config {
	if !c.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    c.DefaultLimit,
		DefaultWindow:   c.DefaultWindow,
		CleanupInterval: c.CleanupInterval,
		Whitelist:       parseIPList(c.Whitelist),
		Blacklist:       parseIPList(c.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: LLM calls and page fetches (strictest limits)
		{Path: "/api/ai/", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},

		// Tier 2: credential checks
		{Path: "/api/auth/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/api/auth/", Method: "PUT", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/api/auth/", Method: "PATCH", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/api/auth/", Method: "DELETE", Limit: 10, Window: time.Minute, Burst: 5},

		// Tier 3: Write operations (moderate limits)
		{Path: "/api/resumes", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/resumes/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/resumes/", Method: "PATCH", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/resumes/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/profile", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/profile/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/uploads/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 4: Read operations (more lenient) - handled by default limit
		// Tier 5: Health check (unlimited) - handled by special case in matcher
	}
}

// parseIPList turns a list of addresses into a lookup set.
func parseIPList(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, entry := range list {
		for _, ip := range strings.Split(entry, ",") {
			ip = strings.TrimSpace(ip)
			if ip != "" {
				result[ip] = true
			}
		}
	}
	return result
}
