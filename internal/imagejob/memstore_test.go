package imagejob

import (
	"context"
	"testing"
	"time"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns a copy", func(t *testing.T) {
		store := NewMemStore()
		if err := store.Create(ctx, NewJob("a", 2)); err != nil {
			t.Fatal(err)
		}

		got := store.Get(ctx, "a")
		got.AppendVariant(0, Variant{URL: "https://img/x", Model: "m"})

		// Mutating the copy must not affect the stored record.
		if stored := store.Get(ctx, "a"); len(stored.Results) != 0 {
			t.Errorf("stored record mutated via returned copy: %+v", stored.Results)
		}
	})

	t.Run("update mutates the stored record", func(t *testing.T) {
		store := NewMemStore()
		if err := store.Create(ctx, NewJob("b", 1)); err != nil {
			t.Fatal(err)
		}

		store.Update(ctx, "b", func(j *Job) {
			j.AppendVariant(0, Variant{URL: "https://img/y", Model: "m"})
			j.Recompute()
		})

		got := store.Get(ctx, "b")
		if got.Status != StatusDone {
			t.Errorf("Status = %s, want done", got.Status)
		}
	})

	t.Run("update missing returns nil", func(t *testing.T) {
		store := NewMemStore()
		if got := store.Update(ctx, "nope", func(j *Job) {}); got != nil {
			t.Errorf("Update() = %+v, want nil", got)
		}
	})

	t.Run("sweep removes expired records", func(t *testing.T) {
		store := NewMemStore()
		store.SetRetention(time.Minute)

		old := NewJob("old", 1)
		old.CreatedAt = time.Now().UTC().Add(-time.Hour)
		if err := store.Create(ctx, old); err != nil {
			t.Fatal(err)
		}
		if err := store.Create(ctx, NewJob("new", 1)); err != nil {
			t.Fatal(err)
		}

		store.Sweep(ctx)

		if store.Get(ctx, "old") != nil {
			t.Error("expired record survived sweep")
		}
		if store.Get(ctx, "new") == nil {
			t.Error("fresh record was swept")
		}
	})
}
