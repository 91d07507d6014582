package middleware

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/founder-copilot/internal/config"
    "github.com/iliyamo/founder-copilot/internal/logger"
)

// takeToken refills the bucket for the whole intervals elapsed since the last
// refill, then spends one token.  Returns {allowed, left, wait_ms}.
var takeToken = redis.NewScript(`
local now, cap, per, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local b = redis.call('HMGET', KEYS[1], 'tokens', 'refilled_at')
local tokens, at = tonumber(b[1]), tonumber(b[2])
if not tokens or not at then
    tokens, at = cap, now
end
local n = math.floor(math.max(0, now - at) / every)
if n > 0 then
    tokens = math.min(cap, tokens + n * per)
    at = at + n * every
end
local ok, wait = 0, 0
if tokens > 0 then
    ok, tokens = 1, tokens - 1
else
    wait = math.max(0, every - (now - at))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled_at', at)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

type bucketState struct {
    allowed bool
    left    int64
    wait    time.Duration
}

func spend(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string, now time.Time) (bucketState, error) {
    res, err := takeToken.Run(ctx, rdb, []string{key},
        now.UnixMilli(), cfg.Capacity, cfg.RefillTokens, cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return bucketState{}, err
    }
    if len(res) != 3 {
        return bucketState{}, fmt.Errorf("token bucket: %d values returned", len(res))
    }
    return bucketState{allowed: res[0] == 1, left: res[1], wait: time.Duration(res[2]) * time.Millisecond}, nil
}

// NewTokenBucket guards the LLM-backed routes with a per-user token bucket
// kept in Redis.  When Redis is unreachable the request is let through: the
// gateway enforces its own limit and answers 429 itself.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *logger.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            st, err := spend(c.Request().Context(), rdb, cfg, key, time.Now())
            if err != nil {
                log.Warn("ratelimit: bucket unavailable, allowing request", "key", key, "error", err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.left, 10))
            if st.allowed {
                return next(c)
            }

            secs := int((st.wait + time.Second - 1) / time.Second)
            h.Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                log.Debug("ratelimit: blocked", "key", key, "retry_after", secs)
            }
            // same message the gateway's own 429 is translated to
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "Rate limit exceeded. Please try again in a moment.",
                "retry_after": secs,
            })
        }
    }
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// buildRateKey names the bucket.  "user" (the default config) gives every
// founder one budget across all model-backed routes.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := userKey(c)
    route := c.Request().Method + " " + c.Path()

    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = []string{"ip", ip}
    case "user":
        parts = []string{"user", uid}
    case "user_route":
        parts = []string{"user", uid, "route", route}
    default:
        parts = []string{"ip", ip, "user", uid, "route", route}
    }
    return cfg.Prefix + ":" + strings.Join(parts, ":")
}
