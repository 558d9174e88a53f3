package household

import (
	"context"
	"math"
	"strings"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"github.com/PetoAdam/homenavi/household-service/internal/store"
	"github.com/google/uuid"
)

// NewItem is the input of AddItem. Quantity defaults to 1 and Unit to "pcs".
type NewItem struct {
	Name     string
	Quantity *float64
	Unit     string
	Location string
	Category string
}

func (s *Service) ListItems(ctx context.Context, family string, filter store.ItemFilter) ([]store.Item, error) {
	f, err := s.Resolve(ctx, family)
	if err != nil {
		return nil, err
	}
	return s.items.ListItems(ctx, f.Name, filter)
}

func (s *Service) AddItem(ctx context.Context, family string, in NewItem) (*store.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Invalid("item name is required")
	}
	quantity := store.DefaultItemQuantity
	if in.Quantity != nil {
		if err := validateQuantity(*in.Quantity); err != nil {
			return nil, err
		}
		quantity = *in.Quantity
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = store.DefaultItemUnit
	}

	f, err := s.Resolve(ctx, family)
	if err != nil {
		return nil, err
	}
	item := &store.Item{
		Name:       name,
		Quantity:   quantity,
		Unit:       unit,
		Location:   strings.TrimSpace(in.Location),
		Category:   strings.TrimSpace(in.Category),
		FamilyName: f.Name,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.emit(ctx, Event{Type: EventItemCreated, Family: f.Name, Entity: "item", ID: item.ID.String(), Data: item})
	return item, nil
}

// UpdateItemQuantity sets a new quantity. A nil quantity means "no change";
// the current item is returned, or ErrNotFound when the id is not the family's.
func (s *Service) UpdateItemQuantity(ctx context.Context, family string, id uuid.UUID, quantity *float64) (*store.Item, error) {
	if quantity != nil {
		if err := validateQuantity(*quantity); err != nil {
			return nil, err
		}
	}
	f, err := s.Resolve(ctx, family)
	if err != nil {
		return nil, err
	}
	item, err := s.items.UpdateItemQuantity(ctx, f.Name, id, quantity)
	if err != nil {
		return nil, err
	}
	if quantity != nil {
		s.emit(ctx, Event{Type: EventItemUpdated, Family: f.Name, Entity: "item", ID: id.String(), Data: item})
	}
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, family string, id uuid.UUID) error {
	f, err := s.Resolve(ctx, family)
	if err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, f.Name, id); err != nil {
		return err
	}
	s.emit(ctx, Event{Type: EventItemDeleted, Family: f.Name, Entity: "item", ID: id.String()})
	return nil
}

func validateQuantity(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return apperrors.Invalid("quantity must be a finite number >= 0")
	}
	return nil
}
