package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/founder-copilot/internal/config"
    "github.com/iliyamo/founder-copilot/internal/logger"
)

const defaultCacheTTL = 5 * time.Minute

// recorder tees the response into a buffer until limit is passed; after
// that only overflow is recorded.
type recorder struct {
    http.ResponseWriter
    status   int
    body     bytes.Buffer
    limit    int
    overflow bool
}

func (r *recorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.limit > 0 && r.body.Len()+len(b) > r.limit {
            r.overflow = true
            r.body.Reset()
        } else {
            r.body.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// cacheKeyFrom builds the Redis key.  Every strategy includes the user id:
// the cached routes render one founder's private data.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    tail := "user:" + userKey(c) + ":route:" + c.Path()
    if strings.ToLower(cfg.KeyStrategy) == "user_route_query" {
        tail += ":q:" + c.Request().URL.RawQuery
    }
    sum := sha1.Sum([]byte(tail))
    return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// encodePayload packs [status u32][header length u32][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdr, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8, 8+len(hdr)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
    out = append(out, hdr...)
    return append(out, body...), nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    n := int(binary.BigEndian.Uint32(bs[4:8]))
    if n < 0 || 8+n > len(bs) {
        return 0, nil, nil, false
    }
    header = http.Header{}
    if n > 0 {
        if err := json.Unmarshal(bs[8:8+n], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return int(binary.BigEndian.Uint32(bs[0:4])), header, bs[8+n:], true
}

// replay writes a cached payload; false when it cannot be decoded.
func replay(c echo.Context, bs []byte) bool {
    status, hdr, body, ok := decodePayload(bs)
    if !ok {
        return false
    }
    out := c.Response().Header()
    for k, vals := range hdr {
        if strings.EqualFold(k, echo.HeaderContentLength) {
            continue
        }
        for _, v := range vals {
            out.Add(k, v)
        }
    }
    out.Set("X-Cache", "HIT")
    c.Response().WriteHeader(status)
    _, _ = c.Response().Write(body)
    return true
}

// NewRedisCache caches successful GET responses (status, headers and body)
// per user for cfg.TTL.  Non-200 answers are never stored, so a failed
// insights call is retried on the next request.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log *logger.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = defaultCacheTTL
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKeyFrom(cfg, c)
            if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil && replay(c, bs) {
                return nil
            }

            rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            // a body past the cap would be served truncated, so skip it
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }

            payload, err := encodePayload(rec.status, c.Response().Header().Clone(), rec.body.Bytes())
            if err == nil {
                // the request context may already be cancelled by now
                err = rdb.SetEx(context.Background(), key, payload, ttl).Err()
            }
            if err != nil {
                log.Warn("cache: store failed", "key", key, "error", err)
            }
            return nil
        }
    }
}
