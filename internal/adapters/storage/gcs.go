package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSConfig configures the object-store backend
type GCSConfig struct {
	Bucket      string
	Prefix      string
	DeleteBatch int // objects deleted per batch during retention
}

// GCS is the Google Cloud Storage backend. Keys are stored under
// <Prefix>/<key>; the canonical reference is a gs:// URL
type GCS struct {
	cfg    GCSConfig
	bucket *gcs.BucketHandle
}

// NewGCS opens a client using ambient credentials
func NewGCS(ctx context.Context, cfg GCSConfig) (*GCS, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: empty bucket")
	}
	if cfg.DeleteBatch <= 0 {
		cfg.DeleteBatch = 100
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCS{cfg: cfg, bucket: client.Bucket(cfg.Bucket)}, nil
}

func (g *GCS) objectName(key string) string {
	return path.Join(g.cfg.Prefix, key)
}

// relKey strips the pipeline prefix from a listed object name. Names outside
// the prefix, including a bare object named exactly like it, are skipped
func (g *GCS) relKey(name string) (string, bool) {
	if g.cfg.Prefix == "" {
		return name, true
	}
	rel := strings.TrimPrefix(name, g.cfg.Prefix+"/")
	if rel == name || rel == "" {
		return "", false
	}
	return rel, true
}

// Upload streams the staged file into the bucket, overwriting by name
func (g *GCS) Upload(ctx context.Context, localPath, key string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	name := g.objectName(key)
	w := g.bucket.Object(name).NewWriter(ctx)
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return "gs://" + g.cfg.Bucket + "/" + name, nil
}

// List enumerates objects under the pipeline prefix + key prefix
func (g *GCS) List(ctx context.Context, prefix string) ([]Object, error) {
	q := &gcs.Query{Prefix: g.objectName(prefix)}
	it := g.bucket.Objects(ctx, q)

	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		key, ok := g.relKey(attrs.Name)
		if !ok {
			continue
		}
		out = append(out, Object{Key: key, Size: attrs.Size, Modified: attrs.Updated})
	}
	return out, nil
}

// Remove deletes in bounded batches, accumulating objects and bytes removed.
// Deletions already performed are kept on error (each is independently committed)
func (g *GCS) Remove(ctx context.Context, objects []Object) (int, int64, error) {
	removed := 0
	var bytes int64
	for start := 0; start < len(objects); start += g.cfg.DeleteBatch {
		end := start + g.cfg.DeleteBatch
		if end > len(objects) {
			end = len(objects)
		}
		for _, o := range objects[start:end] {
			err := g.bucket.Object(g.objectName(o.Key)).Delete(ctx)
			if errors.Is(err, gcs.ErrObjectNotExist) {
				continue
			}
			if err != nil {
				return removed, bytes, err
			}
			removed++
			bytes += o.Size
		}
	}
	return removed, bytes, nil
}
