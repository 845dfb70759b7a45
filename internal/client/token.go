package client

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the bearer token between calls. It is the only
// client-side state: written on login/registration, removed on logout, read
// at request time. No expiry bookkeeping happens here.
type TokenStore interface {
	Token() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryTokenStore keeps the token in process memory. Used as the default
// store and throughout the tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileTokenStore persists the token in a file, mode 0600. A missing file
// reads as "no token".
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store backed by the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultFileTokenStore places the token under the user's config directory
// (e.g. ~/.config/stratcom/token).
func DefaultFileTokenStore() (*FileTokenStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewFileTokenStore(filepath.Join(dir, "stratcom", "token")), nil
}

func (s *FileTokenStore) Token() (string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
