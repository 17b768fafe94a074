package imagejob

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// PageSpec is one page as submitted by the caller.
type PageSpec struct {
	Index       int    `json:"index"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

// WorkItem is one unit of work handed to the engine: a page tagged with
// exactly one model.
type WorkItem struct {
	PageIndex   int    `json:"page_index"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Model       string `json:"model"`
}

// Expand builds the effective work-item list. With a single model the
// page list passes through with that model attached; with several, every
// (page, model) pair becomes its own item. TotalPages on the job equals
// the length of this list.
func Expand(pages []PageSpec, models []string) []WorkItem {
	items := make([]WorkItem, 0, len(pages)*len(models))
	for _, m := range models {
		for _, p := range pages {
			items = append(items, WorkItem{
				PageIndex:   p.Index,
				Prompt:      p.Prompt,
				AspectRatio: p.AspectRatio,
				Model:       m,
			})
		}
	}
	return items
}

// DispatchRequest is the payload handed to the external workflow engine.
type DispatchRequest struct {
	JobID       string          `json:"job_id"`
	CallbackURL string          `json:"callback_url"`
	Mode        string          `json:"mode"` // "single" or "batch"
	Book        json.RawMessage `json:"book,omitempty"`
	Pages       []WorkItem      `json:"pages"`
}

// Dispatcher hands a job to the external engine and waits only for the
// acknowledgement that the engine accepted it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) error
}

// SubmitRequest is the input to Submit.
type SubmitRequest struct {
	Pages        []PageSpec
	Models       []string
	Book         json.RawMessage
	CallbackBase string // scheme://host of this service, reachable by the engine
}

// SubmitResult is returned unconditionally once a job id has been minted.
type SubmitResult struct {
	JobID      string `json:"job_id"`
	Status     Status `json:"status"`
	TotalPages int    `json:"total_pages"`
}

// Submitter registers jobs and dispatches them to the engine.
type Submitter struct {
	store      Store
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewSubmitter creates a submitter over the given store and dispatcher.
func NewSubmitter(store Store, dispatcher Dispatcher, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{store: store, dispatcher: dispatcher, logger: logger}
}

// Submit creates the job record and fires the dispatch. A dispatch
// failure flips the job to error but still returns the job id: the
// caller discovers the failure by polling, never from this call. The
// submission must not block on generation work, which can take minutes.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if len(req.Pages) == 0 {
		return nil, fmt.Errorf("no pages to generate")
	}
	if len(req.Models) == 0 {
		return nil, fmt.Errorf("no image models selected")
	}

	items := Expand(req.Pages, req.Models)
	job := NewJob(uuid.New().String(), len(items))

	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	mode := "batch"
	if len(items) == 1 {
		mode = "single"
	}

	dispatch := DispatchRequest{
		JobID:       job.ID,
		CallbackURL: fmt.Sprintf("%s/api/images/callback/%s", req.CallbackBase, job.ID),
		Mode:        mode,
		Book:        req.Book,
		Pages:       items,
	}

	status := job.Status
	if err := s.dispatcher.Dispatch(ctx, dispatch); err != nil {
		s.logger.Warn("engine dispatch failed", "job_id", job.ID, "error", err)
		msg := fmt.Sprintf("dispatch failed: %v", err)
		if updated := s.store.Update(ctx, job.ID, func(j *Job) { j.Fail(msg) }); updated != nil {
			status = updated.Status
		} else {
			status = StatusError
		}
	} else {
		s.logger.Info("job dispatched", "job_id", job.ID, "mode", mode, "total_pages", job.TotalPages)
	}

	return &SubmitResult{JobID: job.ID, Status: status, TotalPages: job.TotalPages}, nil
}
