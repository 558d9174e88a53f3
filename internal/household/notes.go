package household

import (
	"context"
	"strings"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
	"github.com/PetoAdam/homenavi/household-service/internal/store"
	"github.com/google/uuid"
)

func (s *Service) ListNotes(ctx context.Context, family string) ([]store.Note, error) {
	f, err := s.Resolve(ctx, family)
	if err != nil {
		return nil, err
	}
	return s.notes.ListNotes(ctx, f.Name)
}

func (s *Service) AddNote(ctx context.Context, family, content string) (*store.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Invalid("note content is required")
	}
	f, err := s.Resolve(ctx, family)
	if err != nil {
		return nil, err
	}
	note := &store.Note{Content: content, FamilyName: f.Name, CreatedAt: s.now()}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	s.emit(ctx, Event{Type: EventNoteCreated, Family: f.Name, Entity: "note", ID: note.ID.String(), Data: note})
	return note, nil
}

func (s *Service) DeleteNote(ctx context.Context, family string, id uuid.UUID) error {
	f, err := s.Resolve(ctx, family)
	if err != nil {
		return err
	}
	if err := s.notes.DeleteNote(ctx, f.Name, id); err != nil {
		return err
	}
	s.emit(ctx, Event{Type: EventNoteDeleted, Family: f.Name, Entity: "note", ID: id.String()})
	return nil
}
