package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Result is a downloaded dataset with the problems met along the way.
type Result struct {
	Table    *Table
	Warnings []string
	Citation string
}

// Source is one remote typological database.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Result, error)
}

// now is replaced in tests to pin citation dates.
var now = time.Now

func accessed() string {
	return now().Format("2006-01-02")
}

func (r *Result) warn(log *zap.Logger, source, msg string, fields ...zap.Field) {
	log.Debug(msg, append([]zap.Field{zap.String("source", source)}, fields...)...)
	r.Warnings = append(r.Warnings, fmt.Sprintf("(%s) %s", source, msg))
}

// finish rejects empty results. The warnings gathered so far explain why
// nothing was left, so they travel in the error.
func (r *Result) finish(source string, t *Table) (*Result, error) {
	if t == nil || t.Len() == 0 {
		if len(r.Warnings) > 0 {
			return nil, fmt.Errorf("%w from %s: %s", ErrNoData, source, strings.Join(r.Warnings, "; "))
		}
		return nil, fmt.Errorf("%w from %s", ErrNoData, source)
	}
	t.Source = source
	r.Table = t
	return r, nil
}

// unzip returns the members of a zip archive whose base names satisfy want.
func unzip(body []byte, want func(name string) bool) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening zip: %v", ErrInvalidResponse, err)
	}
	out := make(map[string][]byte)
	for _, f := range zr.File {
		name := path.Base(f.Name)
		if f.FileInfo().IsDir() || !want(name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		out[name] = buf.Bytes()
	}
	return out, nil
}

// Rename changes a column name in place.
func (t *Table) Rename(from, to string) error {
	i := t.Index(from)
	if i < 0 {
		return fmt.Errorf("no column %q in %s table", from, t.Source)
	}
	t.Columns[i] = to
	return nil
}

func hasColumns(t *Table, names ...string) error {
	var missing []string
	for _, n := range names {
		if t.Index(n) < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrInvalidResponse, strings.Join(missing, ", "))
	}
	return nil
}
