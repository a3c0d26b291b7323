// Package storage persists fetched scans.
//
// A Store writes one artifact per identifier at <destination>/<identifier>.pdf
// and answers whether it already exists, which is how repeated runs skip
// finished work. There is no manifest: the artifact itself is the record.
//
// Two implementations are provided:
//   - FSStore writes to the local filesystem through a temporary file and
//     an atomic rename.
//   - BlobStore writes to a gocloud.dev bucket (file:// and mem:// drivers
//     are linked in), using the destination as a key prefix.
//
// Usage:
//
//	store, err := storage.Open(ctx, cfg.Output)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if ok, _ := store.Exists(ctx, "downloads", "KLAC00161000001"); !ok {
//	    _, err = store.Put(ctx, "downloads", "KLAC00161000001", body)
//	}
package storage
