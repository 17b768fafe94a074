package imagejob

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-process job store. Suitable for tests and for
// single-process deployments that do not need records to survive a
// restart.
type MemStore struct {
	mu        sync.Mutex
	jobs      map[string]*Job
	retention time.Duration
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		jobs:      make(map[string]*Job),
		retention: RetentionWindow,
	}
}

// SetRetention overrides the sweep retention window. Used by tests.
func (s *MemStore) SetRetention(d time.Duration) {
	s.retention = d
}

// Create stores the initial job record.
func (s *MemStore) Create(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return ErrAlreadyExists
	}
	s.jobs[job.ID] = clone(job)
	return nil
}

// Get returns a copy of the job, or nil if unknown.
func (s *MemStore) Get(ctx context.Context, id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	return clone(job)
}

// Update applies fn under the store lock and returns the updated copy,
// or nil if the job does not exist.
func (s *MemStore) Update(ctx context.Context, id string, fn func(*Job)) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	fn(job)
	return clone(job)
}

// Sweep deletes records older than the retention window.
func (s *MemStore) Sweep(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for id, job := range s.jobs {
		if job.Age(now) > s.retention {
			delete(s.jobs, id)
		}
	}
}

// clone deep-copies a job so callers never share the stored record.
func clone(j *Job) *Job {
	out := *j
	out.Results = make(map[string]PageResult, len(j.Results))
	for k, pr := range j.Results {
		variants := make([]Variant, len(pr.Variants))
		copy(variants, pr.Variants)
		out.Results[k] = PageResult{Variants: variants}
	}
	return &out
}
