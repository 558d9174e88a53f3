package ratelimit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/PetoAdam/homenavi/household-service/internal/tenancy"

	"github.com/redis/go-redis/v9"
)

// Token bucket per key. KEYS[1] = key, ARGV = burst, refill per second, now (ms).
// Returns 1 when a token was taken.
var tokenBucket = redis.NewScript(`
local tokens_key = KEYS[1]
local max_tokens = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local bucket = redis.call('HMGET', tokens_key, 'tokens', 'last')
local tokens = tonumber(bucket[1]) or max_tokens
local last = tonumber(bucket[2]) or now
local delta = math.max(0, now - last) / 1000
local refill = math.floor(delta * refill_rate)
tokens = math.min(max_tokens, tokens + refill)
local allowed = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
end
redis.call('HMSET', tokens_key, 'tokens', tokens, 'last', now)
redis.call('EXPIRE', tokens_key, 2)
return allowed
`)

type LimiterConfig struct {
	RPS   int
	Burst int
}

type RateLimiter struct {
	Redis  redis.Scripter
	Prefix string
	Config LimiterConfig
	now    func() time.Time
}

func New(rdb redis.Scripter, prefix string, cfg LimiterConfig) *RateLimiter {
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RPS
	}
	return &RateLimiter{Redis: rdb, Prefix: prefix, Config: cfg, now: time.Now}
}

func (rl *RateLimiter) Middleware(keyFunc func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.Prefix + ":" + keyFunc(r)
			allowed, err := rl.allow(r.Context(), key)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, "rate limiter error")
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg, "code": status})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, error) {
	now := rl.now().UnixMilli()
	res, err := tokenBucket.Run(ctx, rl.Redis, []string{key}, rl.Config.Burst, rl.Config.RPS, now).Result()
	if err != nil {
		slog.Error("redis eval error", "key", key, "error", err)
		return false, err
	}
	var allowed int64
	switch v := res.(type) {
	case int64:
		allowed = v
	case string:
		allowed, _ = strconv.ParseInt(v, 10, 64)
	}
	slog.Debug("token bucket", "key", key, "allowed", allowed, "max", rl.Config.Burst, "rps", rl.Config.RPS)
	return allowed == 1, nil
}

func KeyByIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// KeyByFamilyOrIP buckets requests per family, falling back to the client IP
// for requests that do not name one (login, health checks).
func KeyByFamilyOrIP(id tenancy.Identifier) func(r *http.Request) string {
	return func(r *http.Request) string {
		if family, err := id.Identify(r); err == nil {
			return "family:" + family
		}
		return "ip:" + KeyByIP(r)
	}
}
