// Package numerator provides document auto-numbering.
// Numbers follow PREFIX-YYYY-NNNNN and restart at 1 each year. Sequences
// persist as a JSON file so restarts never reissue a number.
package numerator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Service issues sequential document numbers per prefix and year.
type Service struct {
	path string

	mu   sync.Mutex
	seqs map[string]int64
}

// New creates a Service persisting its sequences at path. An existing file
// is loaded; a missing one starts all sequences at zero.
func New(path string) (*Service, error) {
	if path == "" {
		return nil, fmt.Errorf("numerator: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("numerator: create dir: %w", err)
	}

	s := &Service{path: path, seqs: make(map[string]int64)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("numerator: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.seqs); err != nil {
		return nil, fmt.Errorf("numerator: decode %s: %w", path, err)
	}
	return s, nil
}

// Next issues the next number for a prefix, e.g. "ACTA-2026-00001".
func (s *Service) Next(prefix string, now time.Time) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("numerator: prefix is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s-%d", prefix, now.Year())
	s.seqs[key]++

	if err := s.flush(); err != nil {
		s.seqs[key]--
		return "", err
	}
	return fmt.Sprintf("%s-%05d", key, s.seqs[key]), nil
}

// flush writes the sequence map atomically, callers hold the lock.
func (s *Service) flush() error {
	data, err := json.MarshalIndent(s.seqs, "", "  ")
	if err != nil {
		return fmt.Errorf("numerator: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".numerator-*")
	if err != nil {
		return fmt.Errorf("numerator: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("numerator: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("numerator: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("numerator: rename: %w", err)
	}
	return nil
}
