package snapshot

import (
	"context"
	stderrors "errors"
	"path"
	"strings"

	"github.com/vango-dev/vfiber/internal/config"
	"github.com/vango-dev/vfiber/internal/errors"
)

// Common errors.
var (
	ErrNotFound   = stderrors.New("snapshot: not found")
	ErrInvalidKey = stderrors.New("snapshot: invalid key")
)

// Store persists snapshots.
type Store interface {
	// Put stores data under key and returns where it was written.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)

	// Get returns the data stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}

// Open returns the store selected by cfg: S3 when a bucket is configured,
// otherwise a DiskStore under cfg.SnapshotPath().
func Open(cfg *config.Config) (Store, error) {
	if cfg.UsesS3() {
		return NewS3StoreFromConfig(cfg.Snapshot.S3), nil
	}
	return NewDiskStore(cfg.SnapshotPath())
}

// CleanKey validates a snapshot key and returns its canonical form. Keys are
// relative slash-separated paths; absolute keys and keys escaping the store
// root are rejected.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// ParseS3URL splits "s3://bucket/key" into its bucket and key.
func ParseS3URL(raw string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(raw, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func storageError(op, key string, err error) error {
	if stderrors.Is(err, ErrNotFound) || stderrors.Is(err, ErrInvalidKey) {
		return err
	}
	return errors.New(errors.CodeSnapshot).
		WithDetail(op + " " + key).
		Wrap(err)
}
