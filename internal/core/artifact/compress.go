package artifact

import (
	"archive/zip"
	"bytes"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	perr "logvault/internal/platform/errors"
)

// Compression algorithms
const (
	CompressGzip   = "gzip"
	CompressBrotli = "brotli"
	CompressZip    = "zip"
)

// CompressOptions gates and tunes artifact compression
type CompressOptions struct {
	Enabled   bool
	Algorithm string `validate:"omitempty,oneof=gzip brotli zip"`
	Level     int
	MinBytes  int64 // content below this size is written uncompressed
}

// Ext returns the filename extension for the configured algorithm
func (o CompressOptions) Ext() string {
	switch o.Algorithm {
	case CompressBrotli:
		return ".br"
	case CompressZip:
		return ".zip"
	default:
		return ".gz"
	}
}

// shouldCompress applies the size threshold
func (o CompressOptions) shouldCompress(size int) bool {
	return o.Enabled && int64(size) >= o.MinBytes
}

// compress encodes content with the configured algorithm. innerName is the
// uncompressed file name, used for the zip entry
func (o CompressOptions) compress(content []byte, innerName string) ([]byte, error) {
	var buf bytes.Buffer
	switch o.Algorithm {
	case CompressBrotli:
		w := brotli.NewWriterLevel(&buf, brotliLevel(o.Level))
		if _, err := w.Write(content); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressZip:
		zw := zip.NewWriter(&buf)
		f, err := zw.Create(innerName)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(content); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
	case CompressGzip, "":
		w, err := gzip.NewWriterLevel(&buf, gzipLevel(o.Level))
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(content); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, perr.Configf("unknown compression algorithm %q", o.Algorithm)
	}
	return buf.Bytes(), nil
}

func gzipLevel(l int) int {
	if l < gzip.HuffmanOnly || l > gzip.BestCompression || l == 0 {
		return gzip.DefaultCompression
	}
	return l
}

func brotliLevel(l int) int {
	if l < brotli.BestSpeed || l > brotli.BestCompression {
		return brotli.DefaultCompression
	}
	return l
}
