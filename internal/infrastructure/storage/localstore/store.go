// Package localstore persists dashboard working state as JSON files on
// local disk. It backs the draft autosave: durable data lives on the
// inventory server, this store only has to survive process restarts.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"inventario/internal/domain/count"
)

// Store reads and writes JSON blobs under a base directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a Store rooted at dir, creating it when missing.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("localstore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// SaveDraft writes the snapshot for a slot.
func (s *Store) SaveDraft(slot string, snap count.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(s.draftPath(slot), snap)
}

// LoadDraft reads the snapshot for a slot. found is false when no snapshot
// exists.
func (s *Store) LoadDraft(slot string) (count.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap count.Snapshot
	data, err := os.ReadFile(s.draftPath(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return count.Snapshot{}, false, nil
		}
		return count.Snapshot{}, false, fmt.Errorf("localstore: read draft %s: %w", slot, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return count.Snapshot{}, false, fmt.Errorf("localstore: decode draft %s: %w", slot, err)
	}
	return snap, true, nil
}

// DeleteDraft removes the snapshot for a slot. Missing files are fine.
func (s *Store) DeleteDraft(slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.draftPath(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("localstore: delete draft %s: %w", slot, err)
	}
	return nil
}

func (s *Store) draftPath(slot string) string {
	return filepath.Join(s.dir, "draft_"+sanitize(slot)+".json")
}

// writeJSON writes atomically: temp file in the same directory, then rename.
// A crash mid-write leaves the previous snapshot intact.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("localstore: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("localstore: write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("localstore: sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("localstore: close %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("localstore: rename %s: %w", path, err)
	}
	return nil
}

// sanitize keeps slot-derived file names shell and filesystem safe.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
