package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local is the filesystem backend. Keys are slash-separated relative paths
// under Root; the canonical reference is the absolute path
type Local struct {
	Root string
}

// NewLocal constructs a Local backend rooted at root
func NewLocal(root string) *Local { return &Local{Root: root} }

func (l *Local) abs(key string) string {
	return filepath.Join(l.Root, filepath.FromSlash(key))
}

// Upload copies the staged file into place, overwriting any previous artifact
func (l *Local) Upload(_ context.Context, localPath, key string) (string, error) {
	dst := l.abs(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	// write to a temp sibling then rename so readers never see partial files
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return dst, nil
}

// List walks Root and returns every regular file under prefix
func (l *Local) List(_ context.Context, prefix string) ([]Object, error) {
	var out []Object
	start := l.Root
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.Root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, Object{Key: key, Size: info.Size(), Modified: info.ModTime()})
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return out, err
}

// Remove deletes files and then prunes any directory left empty
func (l *Local) Remove(_ context.Context, objects []Object) (int, int64, error) {
	removed := 0
	var bytes int64
	dirs := map[string]struct{}{}
	for _, o := range objects {
		p := l.abs(o.Key)
		if err := os.Remove(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, bytes, err
		}
		removed++
		bytes += o.Size
		dirs[filepath.Dir(p)] = struct{}{}
	}
	if err := l.pruneEmptyDirs(dirs); err != nil {
		return removed, bytes, err
	}
	return removed, bytes, nil
}

// pruneEmptyDirs removes empty directories bottom-up until Root
func (l *Local) pruneEmptyDirs(touched map[string]struct{}) error {
	// deepest-first so a parent emptied by child removal is also pruned
	paths := make([]string, 0, len(touched))
	for d := range touched {
		paths = append(paths, d)
	}
	sort.Slice(paths, func(i, j int) bool { return len(paths[i]) > len(paths[j]) })

	for _, d := range paths {
		for d != l.Root && strings.HasPrefix(d, l.Root) {
			entries, err := os.ReadDir(d)
			if err != nil || len(entries) > 0 {
				break
			}
			if err := os.Remove(d); err != nil {
				break
			}
			d = filepath.Dir(d)
		}
	}
	return nil
}
