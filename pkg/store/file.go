package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists each key as a small JSON blob under a root directory.
// Values survive process restarts.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

type fileEntry struct {
	Value string `json:"value"`
}

// NewFileStore prepares a store rooted at dir. The directory is created
// lazily on the first Set.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Get loads the value stored under key. A missing or unreadable entry is
// reported as absent.
func (s *FileStore) Get(key string) (string, bool) {
	path, err := s.keyPath(key)
	if err != nil {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	return entry.Value, true
}

// Set persists value under key.
func (s *FileStore) Set(key, value string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(fileEntry{Value: value})
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("store: write %q: %w", key, err)
	}
	return nil
}

// Remove deletes the entry for key if it exists.
func (s *FileStore) Remove(key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) keyPath(key string) (string, error) {
	segment := sanitizeSegment(key)
	if segment == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, segment+".json"), nil
}

func sanitizeSegment(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

var _ Store = (*FileStore)(nil)
