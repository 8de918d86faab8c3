package pending

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage is a synchronous key-value area scoped to one session.
// Load reports ok=false for a missing key.
type Storage interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// Memory keeps values in the process; each instance is its own session
type Memory struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemory returns an empty in-process storage
func NewMemory() *Memory { return &Memory{m: make(map[string][]byte)} }

// Load implements Storage
func (s *Memory) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Save implements Storage
func (s *Memory) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), data...)
	return nil
}

// Delete implements Storage
func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Dir keeps one file per key in a session directory. Two sessions never share
// a directory, so they cannot clobber each other.
type Dir struct {
	path string
}

// NewDir uses path as the session directory, creating it owner-only
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, err
	}
	return &Dir{path: path}, nil
}

// Path reports the session directory
func (d *Dir) Path() string { return d.path }

func (d *Dir) file(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(d.path, name+".json")
}

// Load implements Storage
func (d *Dir) Load(key string) ([]byte, bool, error) {
	b, err := os.ReadFile(d.file(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Save implements Storage; the write is atomic through a rename
func (d *Dir) Save(key string, data []byte) error {
	tmp, err := os.CreateTemp(d.path, ".pending-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, d.file(key))
}

// Delete implements Storage; deleting a missing key is not an error
func (d *Dir) Delete(key string) error {
	err := os.Remove(d.file(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
