package config

import "time"

// RateLimitConfig tunes the Redis token bucket placed in front of the routes
// that call the LLM gateway.  Every request there costs upstream credits, so
// the defaults are much tighter than a typical API limit: a burst of 20 and
// one token back every 3s.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string // ip | user | user_route | anything else: ip+user+route
    Prefix         string
    Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       max(1, envInt("RATE_LIMIT_CAPACITY", 20)),
        RefillTokens:   max(1, envInt("RATE_LIMIT_REFILL_TOKENS", 1)),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "user"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl:llm"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    // an idle bucket must outlive a full refill or it resets to full early
    cfg.TTL = max(cfg.TTL, 5*cfg.RefillInterval)
    return cfg
}
