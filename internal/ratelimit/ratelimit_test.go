package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PetoAdam/homenavi/household-service/internal/tenancy"

	"github.com/redis/go-redis/v9"
)

// fakeScripter answers EVALSHA from a queue of results and records keys.
type fakeScripter struct {
	redis.Scripter
	results []any
	err     error
	keys    []string
}

func (f *fakeScripter) EvalSha(_ context.Context, _ string, keys []string, _ ...any) *redis.Cmd {
	f.keys = append(f.keys, keys...)
	if f.err != nil {
		return redis.NewCmdResult(nil, f.err)
	}
	res := f.results[0]
	f.results = f.results[1:]
	return redis.NewCmdResult(res, nil)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestMiddlewareAllowsThenRejects(t *testing.T) {
	fs := &fakeScripter{results: []any{int64(1), "0"}}
	rl := New(fs, "household:rl", LimiterConfig{RPS: 1, Burst: 1})
	h := rl.Middleware(KeyByFamilyOrIP(tenancy.NewHeaderIdentifier("")))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(tenancy.DefaultHeader, "Smith")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "1" {
		t.Fatalf("missing Retry-After header")
	}
	if fs.keys[0] != "household:rl:family:Smith" {
		t.Fatalf("unexpected bucket key %q", fs.keys[0])
	}
}

func TestMiddlewareRedisError(t *testing.T) {
	fs := &fakeScripter{err: errors.New("connection refused")}
	rl := New(fs, "household:rl", LimiterConfig{RPS: 5, Burst: 10})
	h := rl.Middleware(KeyByIP)(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestKeyByFamilyOrIPFallsBackToIP(t *testing.T) {
	key := KeyByFamilyOrIP(tenancy.NewHeaderIdentifier(""))
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	if got := key(req); got != "ip:10.0.0.7" {
		t.Fatalf("unexpected key %q", got)
	}
}
