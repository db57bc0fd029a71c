// Package storage moves staged artifacts to a named backend and lets the
// retention engine enumerate and delete them. The core depends only on the
// Backend interface; concrete backends are selected by a string tag at
// configuration time.
package storage

import (
	"context"
	"time"

	"logvault/internal/platform/config"
	perr "logvault/internal/platform/errors"
)

// Backend tags
const (
	TagLocal = "local"
	TagGCS   = "gcs"
)

// Object describes one stored artifact
type Object struct {
	Key      string
	Size     int64
	Modified time.Time
}

// Backend is the storage capability consumed by the pipeline and retention.
// Upload must be idempotent for a fixed key (re-upload overwrites)
type Backend interface {
	// Upload moves a staged local file under key and returns the canonical reference
	Upload(ctx context.Context, localPath, key string) (string, error)

	// List enumerates objects under prefix
	List(ctx context.Context, prefix string) ([]Object, error)

	// Remove deletes the given objects, returning removed count and bytes
	Remove(ctx context.Context, objects []Object) (int, int64, error)
}

// New selects a backend by tag using config under CORE_STORAGE_
func New(ctx context.Context, cfg config.Conf) (Backend, error) {
	sc := cfg.Prefix("CORE_STORAGE_")
	switch tag := sc.MayString("BACKEND", TagLocal); tag {
	case TagLocal:
		return NewLocal(sc.MustString("LOCAL_ROOT")), nil
	case TagGCS:
		return NewGCS(ctx, GCSConfig{
			Bucket:      sc.MustString("GCS_BUCKET"),
			Prefix:      sc.MayString("GCS_PREFIX", "logvault"),
			DeleteBatch: sc.MayInt("GCS_DELETE_BATCH", 100),
		})
	default:
		return nil, perr.Configf("unknown storage backend %q", tag)
	}
}
