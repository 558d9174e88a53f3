package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindFamily returns nil, nil when no family with that name exists.
func (r *Repo) FindFamily(ctx context.Context, name string) (*Family, error) {
	var f Family
	err := r.db.WithContext(ctx).First(&f, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFamily inserts a family with default state. The insert is a no-op
// when the name is taken, which is reported as ErrConflict.
func (r *Repo) CreateFamily(ctx context.Context, name string) (*Family, error) {
	f := NewFamily(name)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("family %q already exists: %w", name, apperrors.ErrConflict)
	}
	return f, nil
}

// ToggleLights flips the lights in a single UPDATE so concurrent toggles
// cannot read the same value and cancel each other out.
func (r *Repo) ToggleLights(ctx context.Context, name string) (*Family, error) {
	var out Family
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Family{}).Where("name = ?", name).Update("lights", gorm.Expr("NOT lights"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("family %q: %w", name, apperrors.ErrNotFound)
		}
		return tx.First(&out, "name = ?", name).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) UpdateFamilyState(ctx context.Context, name string, patch StatePatch) (*Family, error) {
	var out Family
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cols := patch.columns(); len(cols) > 0 {
			res := tx.Model(&Family{}).Where("name = ?", name).Updates(cols)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("family %q: %w", name, apperrors.ErrNotFound)
			}
		}
		if err := tx.First(&out, "name = ?", name).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("family %q: %w", name, apperrors.ErrNotFound)
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
