package artifact

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	perr "logvault/internal/platform/errors"
)

// Output formats
const (
	FormatJSON = "json" // one JSON array
	FormatCSV  = "csv"  // delimited table, header = sorted union of keys
	FormatText = "txt"  // one JSON object per line
)

// Options configures a Writer
type Options struct {
	Root   string `validate:"required"` // local staging root
	Format string `validate:"oneof=json csv txt"`
	Folder FolderOptions
	Comp   CompressOptions
}

// Writer serializes record collections into local artifact files
type Writer struct {
	opt Options
}

// Result describes one written artifact
type Result struct {
	LocalPath string // absolute local path of the staged file
	FileName  string // final name including compression extension
	Key       string // relative storage key (folder policy dir + file name)
	Bytes     int    // bytes written after compression
}

// NewWriter validates options structurally; enum validation is the module's job
func NewWriter(opt Options) *Writer { return &Writer{opt: opt} }

// FileName derives the artifact name for an hour range given the current
// format; the compression extension is appended only when a write compresses
func (w *Writer) FileName(hourRange string) string {
	return hourRange + "." + w.opt.Format
}

// Write serializes records and stages the file under the folder policy dir.
// status feeds the optional status sub-folder
func (w *Writer) Write(date, hourRange, status string, records []map[string]any) (Result, error) {
	content, err := w.serialize(records)
	if err != nil {
		return Result{}, err
	}

	name := w.FileName(hourRange)
	if w.opt.Comp.shouldCompress(len(content)) {
		compressed, err := w.opt.Comp.compress(content, name)
		if err != nil {
			return Result{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "compress %s", name)
		}
		content = compressed
		name += w.opt.Comp.Ext()
	}

	dir := w.opt.Folder.Dir(date, hourRange, status)
	absDir := filepath.Join(w.opt.Root, filepath.FromSlash(dir))
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return Result{}, err
	}
	abs := filepath.Join(absDir, name)
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return Result{}, err
	}

	return Result{
		LocalPath: abs,
		FileName:  name,
		Key:       dir + "/" + name,
		Bytes:     len(content),
	}, nil
}

func (w *Writer) serialize(records []map[string]any) ([]byte, error) {
	if records == nil {
		records = []map[string]any{}
	}
	switch w.opt.Format {
	case FormatCSV:
		return marshalCSV(records)
	case FormatText:
		return marshalLines(records)
	case FormatJSON, "":
		return json.MarshalIndent(records, "", "  ")
	default:
		return nil, perr.Configf("unknown output format %q", w.opt.Format)
	}
}

// marshalLines writes one compact JSON object per line
func marshalLines(records []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// marshalCSV flattens records into a table whose header is the sorted union
// of all keys; nested values are embedded as compact JSON
func marshalCSV(records []map[string]any) ([]byte, error) {
	keys := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec {
			keys[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keys))
	for k := range keys {
		header = append(header, k)
	}
	sort.Strings(header)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	row := make([]string, len(header))
	for _, rec := range records {
		for i, k := range header {
			row[i] = cell(rec[k])
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64, int, int64, bool:
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
