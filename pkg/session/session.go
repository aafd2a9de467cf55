// Package session persists the client-side gateway state: the bearer token
// and per-provider integration flags that outlive a single process run.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store reads and writes persisted client state.
type Store interface {
	Token() (string, error)
	SetToken(token string) error
	Flag(name string) (bool, error)
	SetFlag(name string, value bool) error
	Clear() error
}

// ConnectedKey names the flag recording that a provider was connected.
func ConnectedKey(provider string) string { return "connected_" + provider }

// SyncedKey names the flag recording that a provider finished a data sync.
func SyncedKey(provider string) string { return "synced_" + provider }

type state struct {
	Token string          `json:"token,omitempty"`
	Flags map[string]bool `json:"flags,omitempty"`
}

// MemoryStore keeps session state in process memory. Useful for tests and
// ephemeral tooling.
type MemoryStore struct {
	mu    sync.RWMutex
	state state
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: state{Flags: map[string]bool{}}}
}

// Token returns the stored bearer token.
func (s *MemoryStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token, nil
}

// SetToken stores the bearer token.
func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = token
	return nil
}

// Flag returns a persisted boolean flag; missing flags read as false.
func (s *MemoryStore) Flag(name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Flags[name], nil
}

// SetFlag stores a boolean flag.
func (s *MemoryStore) SetFlag(name string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Flags == nil {
		s.state.Flags = map[string]bool{}
	}
	s.state.Flags[name] = value
	return nil
}

// Clear wipes the token and every flag.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{Flags: map[string]bool{}}
	return nil
}

// FileStore persists session state as a JSON file. Every mutation rewrites
// the file so state survives process restarts.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore builds a store backed by the given path. The file is created
// on first write; a missing file reads as empty state.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("session: store path is required")
	}
	return &FileStore{path: path}, nil
}

// Token returns the stored bearer token.
func (s *FileStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return "", err
	}
	return st.Token, nil
}

// SetToken stores the bearer token.
func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	st.Token = token
	return s.save(st)
}

// Flag returns a persisted boolean flag; missing flags read as false.
func (s *FileStore) Flag(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return false, err
	}
	return st.Flags[name], nil
}

// SetFlag stores a boolean flag.
func (s *FileStore) SetFlag(name string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	if st.Flags == nil {
		st.Flags = map[string]bool{}
	}
	st.Flags[name] = value
	return s.save(st)
}

// Clear removes the backing file entirely.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: clear store: %w", err)
	}
	return nil
}

func (s *FileStore) load() (state, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return state{Flags: map[string]bool{}}, nil
	}
	if err != nil {
		return state{}, fmt.Errorf("session: read store: %w", err)
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return state{}, fmt.Errorf("session: decode store: %w", err)
	}
	if st.Flags == nil {
		st.Flags = map[string]bool{}
	}
	return st, nil
}

func (s *FileStore) save(st state) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("session: create store dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session: write store: %w", err)
	}
	return nil
}
