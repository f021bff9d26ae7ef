// Package local writes debug artifacts to a directory on disk.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"entrygate/internal/port"
)

// Store writes artifacts to {dir}/{draftID}/{name}.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on first
// use.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "debug_output"
	}
	return &Store{dir: dir}
}

// Save writes every artifact and returns the group directory. Existing files
// with the same name are replaced.
func (s *Store) Save(ctx context.Context, draftID string, artifacts []port.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if draftID == "" || filepath.Base(draftID) != draftID {
		return "", fmt.Errorf("local.Store.Save: invalid draft id %q", draftID)
	}
	groupDir := filepath.Join(s.dir, draftID)
	if err := os.MkdirAll(groupDir, 0o755); err != nil {
		return "", fmt.Errorf("local.Store.Save: creating %s: %w", groupDir, err)
	}
	for _, a := range artifacts {
		name := filepath.Base(a.Name)
		if err := os.WriteFile(filepath.Join(groupDir, name), a.Data, 0o644); err != nil {
			return "", fmt.Errorf("local.Store.Save: writing %s: %w", name, err)
		}
	}
	return groupDir, nil
}
