package config

import "time"

// CacheConfig drives the Redis response cache in front of GET /v1/insights.
// Insights are expensive model calls whose inputs change slowly, so a
// founder sees the same suggestions for TTL unless the cache is disabled.
//
// KeyStrategy is "user_route" (default) or "user_route_query"; both keep
// entries per founder.  Responses larger than MaxBodyBytes are not stored.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      envSet("CACHE_METHODS", "GET"),
        TTL:          envDur("CACHE_TTL", 10*time.Minute),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "user_route"),
        Prefix:       envStr("CACHE_PREFIX", "cache:insights"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256<<10),
    }
}
