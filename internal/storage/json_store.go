package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"
)

// DefaultLockTimeout bounds how long Open waits for another holder of the
// directory file.
const DefaultLockTimeout = 5 * time.Second

// JSONStore implements DirectoryStore on a single JSON file. The file lock is
// held from Open until Close so a whole synchronization pass owns the file.
type JSONStore struct {
	path   string
	lock   *FileLock
	mu     sync.Mutex
	closed bool
}

var _ DirectoryStore = (*JSONStore)(nil)

// Open locks the directory file at path. The file itself need not exist yet.
func Open(ctx context.Context, path string, lockTimeout time.Duration) (*JSONStore, error) {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	s := &JSONStore{
		path: path,
		lock: NewFileLock(path),
	}
	if err := s.lock.Lock(ctx, lockTimeout); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the directory file location.
func (s *JSONStore) Path() string { return s.path }

// Load reads and decodes the directory file.
func (s *JSONStore) Load(ctx context.Context) (*Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &StorageError{Op: "read", Entity: "directory", ID: s.path, Err: ErrClosed}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Directory{Entries: []Entry{}}, nil
		}
		return nil, &StorageError{Op: "read", Entity: "directory", ID: s.path, Err: err}
	}

	dir := &Directory{}
	if len(bytes.TrimSpace(data)) == 0 {
		dir.Entries = []Entry{}
		return dir, nil
	}
	if err := json.Unmarshal(data, dir); err != nil {
		return nil, &StorageError{Op: "read", Entity: "directory", ID: s.path, Err: errors.Join(ErrStorageCorrupt, err)}
	}
	if dir.Entries == nil {
		dir.Entries = []Entry{}
	}
	return dir, nil
}

// Save replaces the directory file with dir in one atomic rename.
func (s *JSONStore) Save(ctx context.Context, dir *Directory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &StorageError{Op: "write", Entity: "directory", ID: s.path, Err: ErrClosed}
	}
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "write", Entity: "directory", ID: s.path, Err: err}
	}

	writer, err := NewAtomicWriter(s.path)
	if err != nil {
		return &StorageError{Op: "write", Entity: "directory", ID: s.path, Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(dir); err != nil {
		writer.Abort()
		return &StorageError{Op: "write", Entity: "directory", ID: s.path, Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StorageError{Op: "write", Entity: "directory", ID: s.path, Err: err}
	}
	return nil
}

// Close releases the file lock.
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.lock.Unlock()
}
