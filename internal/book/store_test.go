package book

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns id and stage", func(t *testing.T) {
		s := NewStore(t.TempDir(), nil)
		b := &Book{Title: "The Brave Snail"}
		if err := s.Create(ctx, b); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if b.ID == "" {
			t.Error("id not assigned")
		}
		if b.Stage != StageBrief {
			t.Errorf("Stage = %q, want brief", b.Stage)
		}
		if b.CreatedAt.IsZero() || b.UpdatedAt.IsZero() {
			t.Error("timestamps not set")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		s := NewStore(t.TempDir(), nil)
		b := &Book{
			Title: "The Brave Snail",
			Brief: Brief{Theme: "courage", PageCount: 12},
			Pages: []Page{{Index: 0, Outline: "Sid wakes up."}},
		}
		if err := s.Create(ctx, b); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		got, err := s.Get(ctx, b.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Brief.Theme != "courage" || len(got.Pages) != 1 {
			t.Errorf("round trip lost data: %+v", got)
		}
	})

	t.Run("get missing book", func(t *testing.T) {
		s := NewStore(t.TempDir(), nil)
		if _, err := s.Get(ctx, "nope"); err != ErrNotFound {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update persists and bumps UpdatedAt", func(t *testing.T) {
		s := NewStore(t.TempDir(), nil)
		b := &Book{Title: "x"}
		if err := s.Create(ctx, b); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		updated, err := s.Update(ctx, b.ID, func(bk *Book) {
			bk.Stage = StageOutline
			bk.EnsurePages(3)
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Stage != StageOutline || len(updated.Pages) != 3 {
			t.Errorf("update not applied: %+v", updated)
		}

		got, _ := s.Get(ctx, b.ID)
		if got.Stage != StageOutline {
			t.Error("update not persisted")
		}
		if got.UpdatedAt.Before(got.CreatedAt) {
			t.Error("UpdatedAt not bumped")
		}
	})

	t.Run("list skips unreadable records", func(t *testing.T) {
		dir := t.TempDir()
		s := NewStore(dir, nil)
		if err := s.Create(ctx, &Book{Title: "good"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{nope"), 0o644); err != nil {
			t.Fatal(err)
		}

		books, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(books) != 1 || books[0].Title != "good" {
			t.Errorf("books = %v", books)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := NewStore(t.TempDir(), nil)
		b := &Book{Title: "x"}
		if err := s.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, b.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, b.ID); err != ErrNotFound {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, b.ID); err != ErrNotFound {
			t.Errorf("second delete error = %v, want ErrNotFound", err)
		}
	})
}
