package imagejob

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore persists one JSON file per job under a directory. It survives
// process restarts and is visible to any warm process instance sharing
// the directory, which is all the durability this system asks for.
//
// The mutex serializes read-modify-write cycles within this process.
// Cross-process writers are not synchronized; merges stay correct anyway
// because every mutation recomputes derived fields from the full record.
type FileStore struct {
	dir       string
	retention time.Duration
	logger    *slog.Logger
	mu        sync.Mutex
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, retention: RetentionWindow, logger: logger}
}

// SetRetention overrides the sweep retention window. Used by tests.
func (s *FileStore) SetRetention(d time.Duration) {
	s.retention = d
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create writes the initial job record. The jobs directory is created on
// every call, not just the first: the directory may disappear between
// requests on ephemeral filesystems.
func (s *FileStore) Create(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create jobs directory: %w", err)
	}
	if _, err := os.Stat(s.path(job.ID)); err == nil {
		return ErrAlreadyExists
	}
	return s.write(job)
}

// Get returns the job or nil. I/O and parse failures are treated as
// "not found", never as fatal.
func (s *FileStore) Get(ctx context.Context, id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// Update applies fn to the stored job and persists the result. Returns
// nil without calling fn if the job does not exist.
func (s *FileStore) Update(ctx context.Context, id string, fn func(*Job)) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.read(id)
	if job == nil {
		return nil
	}
	fn(job)
	if err := s.write(job); err != nil {
		s.logger.Warn("failed to persist job update", "job_id", id, "error", err)
		return nil
	}
	return job
}

// Sweep deletes expired records. Records that fail to parse are deleted
// rather than skipped so corruption heals itself. All errors are
// swallowed: the sweep is opportunistic.
func (s *FileStore) Sweep(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			s.logger.Warn("deleting unparseable job record", "path", path)
			_ = os.Remove(path)
			continue
		}
		if job.Age(now) > s.retention {
			_ = os.Remove(path)
		}
	}
}

// read loads and parses a record. Returns nil on any failure.
func (s *FileStore) read(id string) *Job {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		s.logger.Warn("job record failed to parse", "job_id", id, "error", err)
		return nil
	}
	return &job
}

// write persists a record. The directory is re-created first so a write
// can never fail on a missing parent.
func (s *FileStore) write(job *Job) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create jobs directory: %w", err)
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := os.WriteFile(s.path(job.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write job record: %w", err)
	}
	return nil
}
