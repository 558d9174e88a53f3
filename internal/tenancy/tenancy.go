// Package tenancy decides which family a request belongs to.
package tenancy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const (
	DefaultHeader     = "X-Family-Name"
	DefaultQueryParam = "family"
)

var ErrMissingFamily = errors.New("family name header is required")

// Identifier extracts the caller's family from a request. The family name is
// trusted as-is; an authenticated implementation can replace HeaderIdentifier.
type Identifier interface {
	Identify(r *http.Request) (string, error)
}

// HeaderIdentifier reads the family from a request header. Browsers cannot set
// headers on websocket upgrades, so QueryParam is consulted as a fallback.
type HeaderIdentifier struct {
	Header     string
	QueryParam string
}

func NewHeaderIdentifier(header string) HeaderIdentifier {
	if strings.TrimSpace(header) == "" {
		header = DefaultHeader
	}
	return HeaderIdentifier{Header: header, QueryParam: DefaultQueryParam}
}

func (h HeaderIdentifier) Identify(r *http.Request) (string, error) {
	header := h.Header
	if header == "" {
		header = DefaultHeader
	}
	if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
		return v, nil
	}
	if h.QueryParam != "" {
		if v := strings.TrimSpace(r.URL.Query().Get(h.QueryParam)); v != "" {
			return v, nil
		}
	}
	return "", ErrMissingFamily
}

type familyKeyType struct{}

var familyKey familyKeyType

func WithFamily(ctx context.Context, family string) context.Context {
	return context.WithValue(ctx, familyKey, family)
}

func FromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(familyKey).(string)
	return v, ok && v != ""
}

// Middleware rejects requests without a family with 400 and stores the family
// in the request context otherwise.
func Middleware(id Identifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			family, err := id.Identify(r)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithFamily(r.Context(), family)))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": message, "code": status})
}
