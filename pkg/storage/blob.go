package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

// BlobStore keeps artifacts in a gocloud.dev bucket. Destinations become
// key prefixes.
type BlobStore struct {
	bucket *blob.Bucket
	url    string
}

// OpenBlobStore opens the bucket at bucketURL (file:///dir, mem://, ...)
func OpenBlobStore(ctx context.Context, bucketURL string) (*BlobStore, error) {
	bkt, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %q: %w", bucketURL, err)
	}
	return &BlobStore{bucket: bkt, url: bucketURL}, nil
}

// NewBlobStore wraps an already opened bucket
func NewBlobStore(bkt *blob.Bucket) *BlobStore {
	return &BlobStore{bucket: bkt}
}

// Key returns the object key of an artifact
func (s *BlobStore) Key(destination, identifier string) string {
	dir := path.Clean(filepath.ToSlash(destination))
	dir = strings.TrimLeft(dir, "/")
	if dir == "." || dir == "" {
		return ArtifactName(identifier)
	}
	return dir + "/" + ArtifactName(identifier)
}

// Location returns the object key, prefixed with the bucket URL when known
func (s *BlobStore) Location(destination, identifier string) string {
	key := s.Key(destination, identifier)
	if s.url == "" {
		return key
	}
	return strings.TrimSuffix(s.url, "/") + "/" + key
}

// Exists checks for the artifact object
func (s *BlobStore) Exists(ctx context.Context, destination, identifier string) (bool, error) {
	_, err := s.bucket.Attributes(ctx, s.Key(destination, identifier))
	if err == nil {
		return true, nil
	}
	if gcerrors.Code(err) == gcerrors.NotFound {
		return false, nil
	}
	return false, fmt.Errorf("artifact attributes: %w", err)
}

// Put uploads the artifact. Buckets only expose an object once its writer
// closes, so an aborted upload leaves nothing behind.
func (s *BlobStore) Put(ctx context.Context, destination, identifier string, r io.Reader) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(ctx, s.Key(destination, identifier), &blob.WriterOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return 0, fmt.Errorf("create writer: %w", err)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		cancel()
		_ = w.Close()
		return n, fmt.Errorf("upload artifact: %w", err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("finish upload: %w", err)
	}
	return n, nil
}

// Close closes the bucket
func (s *BlobStore) Close() error {
	return s.bucket.Close()
}
