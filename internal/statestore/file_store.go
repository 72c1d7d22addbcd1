package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lecturelens/internal/workflow"
)

// FileStore writes the snapshot to a single JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = filepath.Join("tmp", "workflow_state.json")
	}
	return &FileStore{path: path}
}

func (s *FileStore) Save(state *workflow.State) error {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("statestore: encode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("statestore: ensure dir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("statestore: write snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Load() (*workflow.State, error) {
	s.mu.Lock()
	b, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("statestore: read snapshot: %w", err)
	}
	var state workflow.State
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("statestore: decode snapshot: %w", err)
	}
	return &state, nil
}
