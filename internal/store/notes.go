package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"github.com/google/uuid"
)

// ListNotes returns the family's notes newest first. Notes created in the same
// instant keep insertion order through their v7 ids.
func (r *Repo) ListNotes(ctx context.Context, family string) ([]Note, error) {
	rows := []Note{}
	err := r.db.WithContext(ctx).
		Where("family_name = ?", family).
		Order("created_at desc, id desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) CreateNote(ctx context.Context, note *Note) error {
	if note.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		note.ID = id
	}
	if note.FamilyName == "" {
		return errors.New("note.family_name is required")
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *Repo) DeleteNote(ctx context.Context, family string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND family_name = ?", id, family).Delete(&Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("note %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
