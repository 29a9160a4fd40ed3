package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// TokenSlot persists the session token between runs of an application.
type TokenSlot interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemorySlot keeps the token in process memory only.
type MemorySlot struct {
	mu    sync.Mutex
	token string
}

func (s *MemorySlot) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemorySlot) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemorySlot) Clear() error {
	return s.Save("")
}

type fileSlotPayload struct {
	AccessToken string `json:"access_token"`
}

// FileSlot persists the token as a JSON file, created with owner-only
// permissions.
type FileSlot struct {
	mu   sync.Mutex
	path string
}

// NewFileSlot returns a FileSlot writing to the given path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

func (s *FileSlot) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var payload fileSlotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	return payload.AccessToken, nil
}

func (s *FileSlot) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileSlotPayload{AccessToken: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileSlot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
