package session

import (
	"errors"
	"io/fs"
	"os"
	"sync"
)

// ErrNotFound reports that durable storage holds no session record.
var ErrNotFound = errors.New("session: no stored record")

// Storage persists the minimal session projection as a single JSON record.
// Implementations must treat a missing record as ErrNotFound, not a failure.
type Storage interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Clear() error
}

// FileStorage keeps the record in a single file, the process analogue of the
// browser's localStorage entry.
type FileStorage struct {
	path string
}

// NewFileStorage creates storage backed by the file at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FileStorage) Write(data []byte) error {
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStorage) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStorage is an in-memory Storage for tests and ephemeral sessions.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrNotFound
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemoryStorage) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.set = true
	return nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.set = false
	return nil
}
