// Package counter persists the build counter used to version debug-symbol files.
package counter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	ferrors "git.home.luguber.info/inful/hotbuild/internal/foundation/errors"
)

// Store reads and writes a single non-negative integer.
type Store interface {
	Read() (int, error)
	Write(n int) error
}

// Increment reads the stored value, adds one and persists the result.
func Increment(s Store) (int, error) {
	n, err := s.Read()
	if err != nil {
		return 0, err
	}
	n++
	if err := s.Write(n); err != nil {
		return 0, err
	}
	return n, nil
}

// FileStore keeps the counter as plain decimal text in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Read returns the stored value. A missing file reads as 0.
func (s *FileStore) Read() (int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryState, "failed to read build counter").
			Fatal().
			WithContext("path", s.path).
			Build()
	}

	text := strings.TrimSpace(string(data))
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, ferrors.StateError(fmt.Sprintf("build counter holds %q, want a non-negative integer", text)).
			WithContext("path", s.path).
			Build()
	}
	return n, nil
}

// Write replaces the stored value, creating the parent directory when needed.
func (s *FileStore) Write(n int) error {
	if n < 0 {
		return ferrors.StateError("build counter must not be negative").WithContext("value", n).Build()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryState, "failed to create counter directory").
			Fatal().
			WithContext("path", s.path).
			Build()
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(strconv.Itoa(n)), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryState, "failed to write build counter").
			Fatal().
			WithContext("path", tempPath).
			Build()
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryState, "failed to replace build counter").
			Fatal().
			WithContext("path", s.path).
			Build()
	}
	return nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.Mutex
	value  int
	writes []int
}

// NewMemoryStore returns a store holding n.
func NewMemoryStore(n int) *MemoryStore {
	return &MemoryStore{value: n}
}

// Read implements Store.
func (m *MemoryStore) Read() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

// Write implements Store.
func (m *MemoryStore) Write(n int) error {
	if n < 0 {
		return ferrors.StateError("build counter must not be negative").WithContext("value", n).Build()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = n
	m.writes = append(m.writes, n)
	return nil
}

// Writes returns every value written so far, in order.
func (m *MemoryStore) Writes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.writes...)
}
