package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"saafetch/pkg/config"
)

// ArtifactExt is the extension of every stored scan
const ArtifactExt = ".pdf"

// Store persists scan artifacts at <destination>/<identifier>.pdf.
// A stored artifact is the only record that an identifier was fetched.
type Store interface {
	// Exists reports whether the artifact is fully written
	Exists(ctx context.Context, destination, identifier string) (bool, error)
	// Put writes the artifact so that readers never observe a partial file
	Put(ctx context.Context, destination, identifier string, r io.Reader) (int64, error)
	// Location returns a human-readable location of the artifact
	Location(destination, identifier string) string
	Close() error
}

// ArtifactName returns the file name of an identifier's artifact
func ArtifactName(identifier string) string {
	return identifier + ArtifactExt
}

// Open returns the store selected by the output configuration
func Open(ctx context.Context, cfg config.OutputConfig) (Store, error) {
	switch strings.ToLower(cfg.Store) {
	case config.StoreFilesystem, "":
		return NewFSStore(), nil
	case config.StoreBlob:
		return OpenBlobStore(ctx, cfg.BucketURL)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
