package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// likeEscaper makes a search string match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ListItems returns the family's items ordered by name. Never nil.
func (r *Repo) ListItems(ctx context.Context, family string, filter ItemFilter) ([]Item, error) {
	q := r.db.WithContext(ctx).Where("family_name = ?", family)
	if s := strings.ToLower(strings.TrimSpace(filter.Query)); s != "" {
		like := "%" + likeEscaper.Replace(s) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`, like, like)
	}
	if filter.MaxQuantity != nil {
		q = q.Where("quantity <= ?", *filter.MaxQuantity)
	}
	rows := []Item{}
	if err := q.Order("name asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) CreateItem(ctx context.Context, item *Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.FamilyName == "" {
		return errors.New("item.family_name is required")
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity sets the quantity of an item owned by family. A nil
// quantity leaves the row untouched but still checks that it exists.
func (r *Repo) UpdateItemQuantity(ctx context.Context, family string, id uuid.UUID, quantity *float64) (*Item, error) {
	var out Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quantity != nil {
			res := tx.Model(&Item{}).
				Where("id = ? AND family_name = ?", id, family).
				Updates(map[string]any{"quantity": *quantity})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("item %s: %w", id, apperrors.ErrNotFound)
			}
		}
		if err := tx.First(&out, "id = ? AND family_name = ?", id, family).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("item %s: %w", id, apperrors.ErrNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) DeleteItem(ctx context.Context, family string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND family_name = ?", id, family).Delete(&Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
