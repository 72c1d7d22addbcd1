package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore serves documents from a staging directory on disk.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	if strings.TrimSpace(dir) == "" {
		dir = "tmp"
	}
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Resolve(_ context.Context, name string) (Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Document{}, ErrNotFound
	}
	// Reject names escaping the staging directory.
	clean := filepath.Clean(name)
	if clean != filepath.Base(clean) {
		return Document{}, fmt.Errorf("document: invalid name %q", name)
	}

	path := filepath.Join(s.dir, clean)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Document{}, fmt.Errorf("document: read %s: %w", path, err)
	}
	return Document{Name: clean, MIMEType: MIMEForName(clean), Data: data}, nil
}
