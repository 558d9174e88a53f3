package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PetoAdam/homenavi/household-service/internal/apperrors"
)

func TestListNotesNewestFirst(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	mustCreateFamily(t, repo, "Smith")

	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, content := range []string{"t1", "t2", "t3"} {
		n := &Note{Content: content, FamilyName: "Smith", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.CreateNote(ctx, n); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	rows, err := repo.ListNotes(ctx, "Smith")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(rows))
	}
	for i, want := range []string{"t3", "t2", "t1"} {
		if rows[i].Content != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, rows[i].Content)
		}
	}
	if !rows[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("created_at not preserved: %v", rows[0].CreatedAt)
	}
}

func TestListNotesSameInstantKeepsInsertionOrder(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	mustCreateFamily(t, repo, "Smith")

	at := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for _, content := range []string{"first", "second", "third"} {
		if err := repo.CreateNote(ctx, &Note{Content: content, FamilyName: "Smith", CreatedAt: at}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	rows, err := repo.ListNotes(ctx, "Smith")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, want := range []string{"third", "second", "first"} {
		if rows[i].Content != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, rows[i].Content)
		}
	}
}

func TestDeleteNoteScoped(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	mustCreateFamily(t, repo, "Smith")
	mustCreateFamily(t, repo, "Jones")

	n := &Note{Content: "buy bread", FamilyName: "Smith"}
	if err := repo.CreateNote(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be assigned")
	}

	if err := repo.DeleteNote(ctx, "Jones", n.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if rows, _ := repo.ListNotes(ctx, "Jones"); len(rows) != 0 {
		t.Fatalf("note leaked into Jones: %+v", rows)
	}
	if err := repo.DeleteNote(ctx, "Smith", n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteNote(ctx, "Smith", n.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
