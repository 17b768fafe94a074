package builder

import (
	"testing"

	"github.com/jackzampolin/fable/internal/book"
)

func outlinedBook(outlines ...string) *book.Book {
	b := &book.Book{}
	b.EnsurePages(len(outlines))
	for i, o := range outlines {
		b.Pages[i].Outline = o
	}
	return b
}

func TestTrackerRoundTrip(t *testing.T) {
	b := outlinedBook("a snail sets out", "the snail meets a crow")
	tr := NewTracker()

	if tr.IsStale(book.StageText, b) {
		t.Fatal("stale before any snapshot")
	}

	// Text generated from the current outline.
	tr.MarkGenerated(book.StageText, b)
	if tr.IsStale(book.StageText, b) {
		t.Fatal("stale immediately after generation")
	}

	// Outline edited: text is now stale.
	b.Pages[0].Outline = "a crow sets out"
	if !tr.IsStale(book.StageText, b) {
		t.Fatal("not stale after outline edit")
	}

	// Regenerating text re-snapshots the edited outline.
	tr.MarkGenerated(book.StageText, b)
	if tr.IsStale(book.StageText, b) {
		t.Fatal("stale after regeneration")
	}

	// Editing back to the ORIGINAL outline is still a change relative
	// to the new snapshot: comparison is by value against the baseline
	// taken at last generation, not against history.
	b.Pages[0].Outline = "a snail sets out"
	if !tr.IsStale(book.StageText, b) {
		t.Fatal("not stale after reverting past the new baseline")
	}

	// Restoring the snapshotted content exactly clears the flag with
	// no explicit reset.
	b.Pages[0].Outline = "a crow sets out"
	if tr.IsStale(book.StageText, b) {
		t.Fatal("stale with content matching the snapshot")
	}
}

func TestTrackerStagesAreIndependent(t *testing.T) {
	b := outlinedBook("beat one", "beat two")
	b.Pages[0].Text = "Snip the snail set out at dawn."
	b.Pages[1].Text = "A crow watched from the fence."

	tr := NewTracker()
	tr.MarkGenerated(book.StageText, b)
	tr.MarkGenerated(book.StagePrompts, b)

	// Outline change affects text, not the image prompts (which hang
	// off the page text).
	b.Pages[0].Outline = "a different beat"
	if !tr.IsStale(book.StageText, b) {
		t.Error("text not stale after outline change")
	}
	if tr.IsStale(book.StagePrompts, b) {
		t.Error("prompts stale after outline change")
	}

	// Text change affects the prompts.
	b.Pages[0].Text = "Snip the snail slept in."
	if !tr.IsStale(book.StagePrompts, b) {
		t.Error("prompts not stale after text change")
	}
}

func TestTrackerClear(t *testing.T) {
	b := outlinedBook("beat one")
	tr := NewTracker()
	tr.MarkGenerated(book.StageText, b)
	b.Pages[0].Outline = "changed"
	if !tr.IsStale(book.StageText, b) {
		t.Fatal("not stale after edit")
	}
	tr.Clear(book.StageText)
	if tr.IsStale(book.StageText, b) {
		t.Error("stale after clear")
	}
}

func TestTrackerIgnoresUntrackedStages(t *testing.T) {
	b := outlinedBook("beat one")
	tr := NewTracker()
	tr.MarkGenerated(book.StageBrief, b)
	if tr.IsStale(book.StageBrief, b) {
		t.Error("untracked stage reported stale")
	}
}
