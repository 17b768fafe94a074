package builder

import (
	"strings"
	"sync"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/prompts"
)

// Tracker detects when a derived stage's input has drifted since the
// stage last generated. Each generating stage snapshots a fingerprint
// of its upstream content; the stage is stale while the live
// fingerprint differs from the snapshot.
//
// Comparison is by value, not by a dirty bit: editing the upstream back
// to exactly the snapshotted content clears the flag on its own, and
// regenerating the stage takes a fresh snapshot. The flag is advisory;
// the tracker never blocks editing or generation.
type Tracker struct {
	mu        sync.Mutex
	snapshots map[book.Stage]string
}

// NewTracker creates an empty tracker. A stage with no snapshot is
// never stale.
func NewTracker() *Tracker {
	return &Tracker{snapshots: make(map[book.Stage]string)}
}

// MarkGenerated snapshots the upstream fingerprint for a stage that
// just (re)generated. Stages without a tracked upstream are ignored.
func (t *Tracker) MarkGenerated(stage book.Stage, b *book.Book) {
	content, ok := upstreamContent(stage, b)
	if !ok {
		return
	}
	t.mu.Lock()
	t.snapshots[stage] = Fingerprint(content)
	t.mu.Unlock()
}

// IsStale reports whether the stage's upstream content no longer
// matches the snapshot taken when the stage last generated.
func (t *Tracker) IsStale(stage book.Stage, b *book.Book) bool {
	content, ok := upstreamContent(stage, b)
	if !ok {
		return false
	}
	t.mu.Lock()
	snap, have := t.snapshots[stage]
	t.mu.Unlock()
	return have && snap != Fingerprint(content)
}

// Clear forgets the snapshot for a stage.
func (t *Tracker) Clear(stage book.Stage) {
	t.mu.Lock()
	delete(t.snapshots, stage)
	t.mu.Unlock()
}

// Fingerprint hashes a content string for staleness comparison.
func Fingerprint(content string) string {
	return prompts.HashText(content)
}

// upstreamContent returns the content a stage derives from: text is
// generated from the outline, image prompts from the text, and images
// from the image prompts.
func upstreamContent(stage book.Stage, b *book.Book) (string, bool) {
	switch stage {
	case book.StageText:
		return b.OutlineText(), true
	case book.StagePrompts:
		return b.PageText(), true
	case book.StageImages:
		var sb strings.Builder
		for i := range b.Pages {
			sb.WriteString(b.Pages[i].ImagePrompt)
			sb.WriteByte('\n')
		}
		return sb.String(), true
	default:
		return "", false
	}
}
