// Package imagejob implements the asynchronous image generation job
// subsystem: the job record, the keyed job store, the merge semantics for
// results delivered back by the external workflow engine, and the
// submission path that expands page lists and dispatches work.
//
// Jobs are written once at creation, updated by callback deliveries that
// may arrive multiple times, partially, and out of order, and read
// repeatedly by status polls. All derived fields (completed page count,
// done status) are recomputed from scratch on every merge rather than
// incremented, so repeated or interleaved deliveries converge to a
// correct record.
package imagejob

import (
	"strconv"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Variant is one generated image for a page. Insertion order reflects
// arrival order, not generation order.
type Variant struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

// PageResult accumulates the variants delivered for one page index.
type PageResult struct {
	Variants []Variant `json:"variants"`
}

// Job is one batch image generation request.
type Job struct {
	ID             string                `json:"id"`
	Status         Status                `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
	TotalPages     int                   `json:"total_pages"`
	CompletedPages int                   `json:"completed_pages"`
	Results        map[string]PageResult `json:"results"`
	Error          string                `json:"error,omitempty"`
}

// NewJob creates a job in the processing state with no results.
// TotalPages is fixed here and never recomputed.
func NewJob(id string, totalPages int) *Job {
	return &Job{
		ID:         id,
		Status:     StatusProcessing,
		CreatedAt:  time.Now().UTC(),
		TotalPages: totalPages,
		Results:    make(map[string]PageResult),
	}
}

// Recompute derives CompletedPages from the results map and flips the job
// to done once every expected page has at least one variant. It is the
// only place either field changes, which keeps the record consistent
// under duplicate or out-of-order deliveries.
func (j *Job) Recompute() {
	j.CompletedPages = len(j.Results)
	if j.Status == StatusProcessing && j.CompletedPages >= j.TotalPages {
		j.Status = StatusDone
	}
}

// ReplacePage overwrites the entry for a page index with the given
// variants. Used by the bulk callback shape, which is authoritative for
// the indices it carries.
func (j *Job) ReplacePage(index string, variants []Variant) {
	if j.Results == nil {
		j.Results = make(map[string]PageResult)
	}
	j.Results[index] = PageResult{Variants: variants}
}

// AppendVariant adds one variant to a page's list, creating the entry if
// absent. No de-duplication happens here: the engine delivers at least
// once and the client view layer suppresses visible duplicates.
func (j *Job) AppendVariant(pageIndex int, v Variant) {
	if j.Results == nil {
		j.Results = make(map[string]PageResult)
	}
	key := strconv.Itoa(pageIndex)
	pr := j.Results[key]
	pr.Variants = append(pr.Variants, v)
	j.Results[key] = pr
}

// Fail records a terminal error. Existing results are kept.
func (j *Job) Fail(msg string) {
	j.Status = StatusError
	j.Error = msg
}

// Age returns how long ago the job was created.
func (j *Job) Age(now time.Time) time.Duration {
	return now.Sub(j.CreatedAt)
}
