package book

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a book id has no record.
var ErrNotFound = fmt.Errorf("book not found")

// Store persists one JSON file per book under a directory. Books are
// long-lived documents; unlike image jobs they are never swept.
type Store struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a file-backed book store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create assigns an id and writes the initial record.
func (s *Store) Create(ctx context.Context, b *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Stage == "" {
		b.Stage = StageBrief
	}
	return s.write(b)
}

// Get reads a book by id.
func (s *Store) Get(ctx context.Context, id string) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// Update applies fn to the stored book under the store lock and
// persists the result.
func (s *Store) Update(ctx context.Context, id string, fn func(*Book)) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.read(id)
	if err != nil {
		return nil, err
	}
	fn(b)
	b.UpdatedAt = time.Now().UTC()
	if err := s.write(b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns all stored books, newest first.
func (s *Store) List(ctx context.Context) ([]*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read books directory: %w", err)
	}

	var books []*Book
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		b, err := s.read(id)
		if err != nil {
			s.logger.Warn("skipping unreadable book record", "id", id, "error", err)
			continue
		}
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books, nil
}

// Delete removes a book record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

func (s *Store) read(id string) (*Book, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read book: %w", err)
	}
	var b Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse book record: %w", err)
	}
	return &b, nil
}

// write creates the books directory on every call, not just the first:
// the directory may disappear between requests on ephemeral filesystems.
func (s *Store) write(b *Book) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create books directory: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal book: %w", err)
	}
	if err := os.WriteFile(s.path(b.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write book: %w", err)
	}
	return nil
}
