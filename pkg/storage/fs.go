package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FSStore keeps artifacts on the local filesystem. Destinations are
// directory paths, relative to the working directory unless absolute.
type FSStore struct{}

// NewFSStore creates a filesystem store
func NewFSStore() *FSStore {
	return &FSStore{}
}

// Location returns the artifact path
func (s *FSStore) Location(destination, identifier string) string {
	return filepath.Join(destination, ArtifactName(identifier))
}

// Exists checks if the artifact file is present
func (s *FSStore) Exists(ctx context.Context, destination, identifier string) (bool, error) {
	_, err := os.Stat(s.Location(destination, identifier))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat artifact: %w", err)
	}
}

// Put writes the artifact through a temporary file and an atomic rename.
// Concurrent writers of the same identifier each use their own temporary
// file; the last rename wins.
func (s *FSStore) Put(ctx context.Context, destination, identifier string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(destination, 0755); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	filename := s.Location(destination, identifier)
	out, err := os.CreateTemp(destination, ArtifactName(identifier)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to save artifact data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return n, nil
}

// Close is a no-op
func (s *FSStore) Close() error {
	return nil
}
