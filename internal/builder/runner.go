package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/prompts/characters"
	"github.com/jackzampolin/fable/internal/prompts/concepts"
	"github.com/jackzampolin/fable/internal/prompts/imageprompts"
	"github.com/jackzampolin/fable/internal/prompts/outline"
	"github.com/jackzampolin/fable/internal/prompts/storytext"
	"github.com/jackzampolin/fable/internal/providers"
	"github.com/jackzampolin/fable/internal/rules"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	LLM      providers.LLMClient
	Resolver *prompts.Resolver
	Rules    rules.Ruleset
	Tracker  *Tracker

	// TextBatchSize is the number of pages per text / image prompt
	// request (default 3).
	TextBatchSize int

	// OutlineBatches is the number of sequential requests the outline
	// is split across (default 2).
	OutlineBatches int

	Logger *slog.Logger
}

// Runner drives a book through the generation stages. Each stage fills
// in its own fields on the book and advances the stage marker; multi-
// request stages issue their batches strictly in sequence, a batch
// only going out after the previous response has been parsed and
// merged. Cancelling the context aborts the in-flight request and
// halts the loop before the next batch; pages already merged stay.
type Runner struct {
	llm            providers.LLMClient
	resolver       *prompts.Resolver
	rules          rules.Ruleset
	tracker        *Tracker
	textBatchSize  int
	outlineBatches int
	logger         *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.LLM == nil {
		return nil, errors.New("runner requires an LLM client")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("runner requires a prompt resolver")
	}
	if cfg.TextBatchSize <= 0 {
		cfg.TextBatchSize = 3
	}
	if cfg.OutlineBatches <= 0 {
		cfg.OutlineBatches = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		llm:            cfg.LLM,
		resolver:       cfg.Resolver,
		rules:          cfg.Rules,
		tracker:        cfg.Tracker,
		textBatchSize:  cfg.TextBatchSize,
		outlineBatches: cfg.OutlineBatches,
		logger:         cfg.Logger,
	}, nil
}

// GenerateConcepts produces candidate story concepts from the brief.
func (r *Runner) GenerateConcepts(ctx context.Context, b *book.Book) error {
	req, err := concepts.BuildRequest(r.resolver, concepts.Input{
		Brief: b.Brief,
		Count: concepts.DefaultCount,
	})
	if err != nil {
		return err
	}
	parsed, err := r.chat(ctx, req)
	if err != nil {
		return err
	}
	out, err := concepts.ParseResult(parsed)
	if err != nil {
		return err
	}
	b.Concepts = out.Concepts
	advanceStage(b, book.StageConcepts)
	return nil
}

// SelectConcept picks one of the generated concepts by index.
func (r *Runner) SelectConcept(b *book.Book, idx int) error {
	if idx < 0 || idx >= len(b.Concepts) {
		return fmt.Errorf("concept index %d out of range (have %d)", idx, len(b.Concepts))
	}
	c := b.Concepts[idx]
	b.Concept = &c
	return nil
}

// GenerateCharacters produces the recurring cast for the selected
// concept.
func (r *Runner) GenerateCharacters(ctx context.Context, b *book.Book) error {
	if b.Concept == nil {
		return errors.New("select a concept first")
	}
	req, err := characters.BuildRequest(r.resolver, characters.Input{
		Brief:   b.Brief,
		Concept: *b.Concept,
	})
	if err != nil {
		return err
	}
	parsed, err := r.chat(ctx, req)
	if err != nil {
		return err
	}
	out, err := characters.ParseResult(parsed)
	if err != nil {
		return err
	}
	b.Characters = out.Characters
	advanceStage(b, book.StageCharacters)
	return nil
}

// GenerateOutline produces a per-page story outline. The page range is
// split across sequential batches; each later batch carries the beats
// already written so the arc continues instead of restarting.
func (r *Runner) GenerateOutline(ctx context.Context, b *book.Book) error {
	if b.Concept == nil {
		return errors.New("select a concept first")
	}
	total := b.Brief.PageCount
	if total <= 0 {
		return errors.New("brief has no page count")
	}
	b.EnsurePages(total)

	var earlier string
	for _, rng := range batchRanges(total, r.outlineBatches) {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := outline.BuildRequest(r.resolver, outline.Input{
			Brief:        b.Brief,
			Concept:      *b.Concept,
			Characters:   b.Characters,
			TotalPages:   total,
			StartPage:    rng[0],
			EndPage:      rng[1],
			EarlierBeats: earlier,
		})
		if err != nil {
			return err
		}
		parsed, err := r.chat(ctx, req)
		if err != nil {
			return err
		}
		out, err := outline.ParseResult(parsed, rng[0], rng[1])
		if err != nil {
			return err
		}
		for _, beat := range out.Pages {
			if page := b.PageByIndex(beat.Index); page != nil {
				page.Outline = beat.Outline
				earlier += fmt.Sprintf("Page %d: %s\n", beat.Index, beat.Outline)
			}
		}
		r.logger.Debug("outline batch merged", "start", rng[0], "end", rng[1])
	}
	advanceStage(b, book.StageOutline)
	return nil
}

// GenerateText writes the story text for every outlined page, in
// sequential batches. Returns advisory rule violations (banned words,
// syllable limits) found in the generated text; violations never fail
// the stage.
func (r *Runner) GenerateText(ctx context.Context, b *book.Book) ([]rules.Violation, error) {
	if b.Concept == nil {
		return nil, errors.New("select a concept first")
	}
	var targets []storytext.PageRef
	for i := range b.Pages {
		if b.Pages[i].Outline != "" {
			targets = append(targets, storytext.PageRef{
				Index:   b.Pages[i].Index,
				Outline: b.Pages[i].Outline,
			})
		}
	}
	if len(targets) == 0 {
		return nil, errors.New("no outlined pages; generate the outline first")
	}

	rulesText := r.rules.PromptText()
	outlineFull := b.OutlineText()
	var violations []rules.Violation

	for start := 0; start < len(targets); start += r.textBatchSize {
		if err := ctx.Err(); err != nil {
			return violations, err
		}
		end := start + r.textBatchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		req, err := storytext.BuildRequest(r.resolver, storytext.Input{
			Brief:      b.Brief,
			Concept:    *b.Concept,
			Characters: b.Characters,
			Outline:    outlineFull,
			Pages:      batch,
			Rules:      rulesText,
		})
		if err != nil {
			return violations, err
		}
		parsed, err := r.chat(ctx, req)
		if err != nil {
			return violations, err
		}
		out, err := storytext.ParseResult(parsed, batch)
		if err != nil {
			return violations, err
		}
		for _, pt := range out.Pages {
			if page := b.PageByIndex(pt.Index); page != nil {
				page.Text = pt.Text
				violations = append(violations, r.rules.Check(pt.Index, pt.Text)...)
			}
		}
		r.logger.Debug("text batch merged", "pages", len(out.Pages))
	}

	if r.tracker != nil {
		r.tracker.MarkGenerated(book.StageText, b)
	}
	advanceStage(b, book.StageText)
	return violations, nil
}

// GenerateImagePrompts writes an illustration prompt for every page
// with text, in sequential batches.
func (r *Runner) GenerateImagePrompts(ctx context.Context, b *book.Book) error {
	if b.Concept == nil {
		return errors.New("select a concept first")
	}
	var targets []imageprompts.PageRef
	for i := range b.Pages {
		if b.Pages[i].Text != "" {
			targets = append(targets, imageprompts.PageRef{
				Index: b.Pages[i].Index,
				Text:  b.Pages[i].Text,
			})
		}
	}
	if len(targets) == 0 {
		return errors.New("no page text; generate the text first")
	}

	for start := 0; start < len(targets); start += r.textBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + r.textBatchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		req, err := imageprompts.BuildRequest(r.resolver, imageprompts.Input{
			Concept:     *b.Concept,
			Characters:  b.Characters,
			AspectRatio: b.AspectRatio,
			Pages:       batch,
		})
		if err != nil {
			return err
		}
		parsed, err := r.chat(ctx, req)
		if err != nil {
			return err
		}
		out, err := imageprompts.ParseResult(parsed, batch)
		if err != nil {
			return err
		}
		for _, pp := range out.Pages {
			if page := b.PageByIndex(pp.Index); page != nil {
				page.ImagePrompt = pp.ImagePrompt
			}
		}
	}

	if r.tracker != nil {
		r.tracker.MarkGenerated(book.StagePrompts, b)
	}
	advanceStage(b, book.StagePrompts)
	return nil
}

// chat issues one LLM call and returns the structured JSON payload,
// falling back to extracting JSON from the raw content when the client
// did not validate it.
func (r *Runner) chat(ctx context.Context, req *providers.ChatRequest) (json.RawMessage, error) {
	res, err := r.llm.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(res.ParsedJSON) > 0 {
		return res.ParsedJSON, nil
	}
	raw := providers.ExtractJSON(res.Content)
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("response from %s is not valid JSON", res.Provider)
	}
	return json.RawMessage(raw), nil
}

// batchRanges splits [0, total) into n contiguous inclusive ranges of
// near-equal size.
func batchRanges(total, n int) [][2]int {
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	ranges := make([][2]int, 0, n)
	size := total / n
	extra := total % n
	start := 0
	for i := 0; i < n; i++ {
		count := size
		if i < extra {
			count++
		}
		ranges = append(ranges, [2]int{start, start + count - 1})
		start += count
	}
	return ranges
}

// advanceStage moves the book's stage marker forward, never backward.
func advanceStage(b *book.Book, s book.Stage) {
	if stageIndex(s) > stageIndex(b.Stage) {
		b.Stage = s
	}
}

func stageIndex(s book.Stage) int {
	for i, st := range book.Stages {
		if st == s {
			return i
		}
	}
	return -1
}
