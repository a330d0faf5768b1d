package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mcorbin/vigil/pkg/history"
)

// Store persists history records as one JSON file per key under a directory.
type Store struct {
	logger *slog.Logger
	dir    string
}

func New(logger *slog.Logger, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("fail to create the data directory %s: %w", dir, err)
	}
	return &Store{
		logger: logger,
		dir:    dir,
	}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// WriteRecord writes the record through a temporary file and a rename so a
// crash never leaves a half-written record behind.
func (s *Store) WriteRecord(ctx context.Context, key string, data []byte) error {
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("fail to write record %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("fail to write record %s: %w", key, err)
	}
	return nil
}

func (s *Store) ReadRecord(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, history.ErrRecordNotFound
		}
		return nil, fmt.Errorf("fail to read record %s: %w", key, err)
	}
	return data, nil
}
