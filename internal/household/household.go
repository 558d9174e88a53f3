// Package household holds the family-scoped operations of the service: it
// resolves the calling family and then reads or writes exactly one store on
// its behalf.
package household

import (
	"context"
	"log/slog"
	"time"

	"github.com/PetoAdam/homenavi/household-service/internal/store"
	"github.com/google/uuid"
)

type FamilyStore interface {
	FindFamily(ctx context.Context, name string) (*store.Family, error)
	CreateFamily(ctx context.Context, name string) (*store.Family, error)
	UpdateFamilyState(ctx context.Context, name string, patch store.StatePatch) (*store.Family, error)
	ToggleLights(ctx context.Context, name string) (*store.Family, error)
}

type ItemStore interface {
	ListItems(ctx context.Context, family string, filter store.ItemFilter) ([]store.Item, error)
	CreateItem(ctx context.Context, item *store.Item) error
	UpdateItemQuantity(ctx context.Context, family string, id uuid.UUID, quantity *float64) (*store.Item, error)
	DeleteItem(ctx context.Context, family string, id uuid.UUID) error
}

type NoteStore interface {
	ListNotes(ctx context.Context, family string) ([]store.Note, error)
	CreateNote(ctx context.Context, note *store.Note) error
	DeleteNote(ctx context.Context, family string, id uuid.UUID) error
}

// Store is everything the service needs; *store.Repo satisfies it.
type Store interface {
	FamilyStore
	ItemStore
	NoteStore
}

type Options struct {
	// Notifiers receive an Event after every successful mutation.
	Notifiers []Notifier
	// Now is the clock used for note timestamps. Defaults to time.Now in UTC.
	Now func() time.Time
}

type Service struct {
	resolver  *Resolver
	families  FamilyStore
	items     ItemStore
	notes     NoteStore
	notifiers []Notifier
	now       func() time.Time
}

func NewService(st Store, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		resolver:  NewResolver(st),
		families:  st,
		items:     st,
		notes:     st,
		notifiers: opts.Notifiers,
		now:       now,
	}
}

func (s *Service) Resolve(ctx context.Context, family string) (*store.Family, error) {
	return s.resolver.Resolve(ctx, family)
}

func (s *Service) emit(ctx context.Context, ev Event) {
	if len(s.notifiers) == 0 {
		return
	}
	ev.At = s.now()
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			slog.Warn("household event not delivered", "type", ev.Type, "family", ev.Family, "error", err)
		}
	}
}
