package household

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"github.com/PetoAdam/homenavi/household-service/internal/store"
)

const maxResolveAttempts = 3

// Resolver is the single authority for family identity: it finds a family by
// name or creates it with default state on first reference.
type Resolver struct {
	families FamilyStore
}

func NewResolver(families FamilyStore) *Resolver {
	return &Resolver{families: families}
}

// Resolve is idempotent. Two first contacts racing on the same name both end
// up with the one persisted row: the loser's insert reports ErrConflict and it
// re-reads the winner's record.
func (r *Resolver) Resolve(ctx context.Context, name string) (*store.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Invalid("family name is required")
	}
	if utf8.RuneCountInString(name) > store.MaxFamilyNameLength {
		return nil, apperrors.Invalid("family name must be at most %d characters", store.MaxFamilyNameLength)
	}

	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		f, err := r.families.FindFamily(ctx, name)
		if err != nil {
			return nil, err
		}
		if f != nil {
			return f, nil
		}

		f, err = r.families.CreateFamily(ctx, name)
		if err == nil {
			slog.Info("family created", "family", name)
			return f, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		slog.Debug("family created concurrently, re-reading", "family", name, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("resolve family %q: %w", name, apperrors.ErrConflict)
}
