package imagejob

import (
	"testing"
	"time"
)

func TestRecompute(t *testing.T) {
	t.Run("completed count is derived from results", func(t *testing.T) {
		job := NewJob("j1", 5)

		// Touch pages 0, 1, 2 in arbitrary order with repeats.
		for _, idx := range []int{2, 0, 1, 0, 2} {
			job.AppendVariant(idx, Variant{URL: "https://img/x", Model: "m"})
			job.Recompute()
			if job.CompletedPages != len(job.Results) {
				t.Fatalf("CompletedPages = %d, want %d", job.CompletedPages, len(job.Results))
			}
		}

		if job.CompletedPages != 3 {
			t.Errorf("CompletedPages = %d, want 3", job.CompletedPages)
		}
		if job.Status != StatusProcessing {
			t.Errorf("Status = %s, want processing", job.Status)
		}
	})

	t.Run("done exactly at the threshold regardless of order", func(t *testing.T) {
		job := NewJob("j2", 4)

		order := []int{2, 0, 3, 1}
		for i, idx := range order {
			job.AppendVariant(idx, Variant{URL: "https://img/p", Model: "m"})
			job.Recompute()

			wantDone := i == len(order)-1
			gotDone := job.Status == StatusDone
			if gotDone != wantDone {
				t.Fatalf("after page %d: done = %v, want %v", idx, gotDone, wantDone)
			}
		}
	})

	t.Run("late deliveries after done still merge", func(t *testing.T) {
		job := NewJob("j3", 1)
		job.AppendVariant(0, Variant{URL: "https://img/a", Model: "m"})
		job.Recompute()
		if job.Status != StatusDone {
			t.Fatalf("Status = %s, want done", job.Status)
		}

		job.AppendVariant(0, Variant{URL: "https://img/b", Model: "m"})
		job.Recompute()
		if job.Status != StatusDone {
			t.Errorf("Status = %s after late delivery, want done", job.Status)
		}
		if got := len(job.Results["0"].Variants); got != 2 {
			t.Errorf("variants = %d, want 2", got)
		}
	})

	t.Run("error status is not overwritten by completion", func(t *testing.T) {
		job := NewJob("j4", 1)
		job.Fail("dispatch failed")
		job.AppendVariant(0, Variant{URL: "https://img/a", Model: "m"})
		job.Recompute()
		if job.Status != StatusError {
			t.Errorf("Status = %s, want error", job.Status)
		}
	})
}

func TestAppendVariant(t *testing.T) {
	t.Run("duplicates are kept server-side", func(t *testing.T) {
		job := NewJob("j5", 3)
		v := Variant{URL: "https://img/same", Model: "m"}
		job.AppendVariant(0, v)
		job.AppendVariant(0, v)
		if got := len(job.Results["0"].Variants); got != 2 {
			t.Errorf("variants = %d, want 2 (no server-side de-duplication)", got)
		}
	})

	t.Run("preserves arrival order", func(t *testing.T) {
		job := NewJob("j6", 1)
		job.AppendVariant(0, Variant{URL: "https://img/1", Model: "a"})
		job.AppendVariant(0, Variant{URL: "https://img/2", Model: "b"})
		variants := job.Results["0"].Variants
		if variants[0].URL != "https://img/1" || variants[1].URL != "https://img/2" {
			t.Errorf("unexpected order: %+v", variants)
		}
	})
}

func TestAge(t *testing.T) {
	job := NewJob("j7", 1)
	job.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	if age := job.Age(time.Now().UTC()); age < 2*time.Hour {
		t.Errorf("Age() = %v, want >= 2h", age)
	}
}
