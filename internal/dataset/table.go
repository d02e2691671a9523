// Package dataset downloads typological databases into flat tables and
// provides the joins used to combine them.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NA marks a missing cell.
const NA = "~N/A~"

// Table is a rectangular string table with named columns.
type Table struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given columns.
func NewTable(source string, columns ...string) *Table {
	return &Table{Source: source, Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, true
}

// Get returns the cell at row and column name, or "" when the column is absent.
func (t *Table) Get(row int, name string) string {
	i := t.Index(name)
	if i < 0 {
		return ""
	}
	return t.Rows[row][i]
}

// Append adds a row. Its length must match the column count.
func (t *Table) Append(row ...string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// AddColumn appends a column with one value per row.
func (t *Table) AddColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Select returns a table with only the named columns, in that order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		idx[k] = t.Index(n)
		if idx[k] < 0 {
			return nil, fmt.Errorf("no column %q in %s table", n, t.Source)
		}
	}
	out := NewTable(t.Source, names...)
	for _, row := range t.Rows {
		r := make([]string, len(idx))
		for k, i := range idx {
			r[k] = row[i]
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

// Filter returns the rows for which keep is true.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := NewTable(t.Source, t.Columns...)
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// FillEmpty replaces empty cells with v.
func (t *Table) FillEmpty(v string) {
	for _, row := range t.Rows {
		for i, c := range row {
			if strings.TrimSpace(c) == "" {
				row[i] = v
			}
		}
	}
}

// StripNA drops rows with NA in any of the given columns. Unknown columns are ignored.
func (t *Table) StripNA(columns ...string) *Table {
	var idx []int
	for _, c := range columns {
		if i := t.Index(c); i >= 0 {
			idx = append(idx, i)
		}
	}
	return t.Filter(func(row []string) bool {
		for _, i := range idx {
			if row[i] == NA {
				return false
			}
		}
		return true
	})
}

// ReadCSV reads a table whose first record is the header. Short rows are
// padded with empty cells.
func ReadCSV(r io.Reader, sep rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidResponse)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := NewTable("", header...)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", t.Len()+1, err)
		}
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV writes the header and rows as comma-separated values.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

// JoinHow selects which unmatched rows a join keeps.
type JoinHow string

const (
	// JoinInner keeps rows whose keys appear in both tables.
	JoinInner JoinHow = "inner"
	// JoinOuter also keeps unmatched rows from either side, padded with NA.
	JoinOuter JoinHow = "outer"
)

// ParseJoinHow validates a join mode name.
func ParseJoinHow(s string) (JoinHow, error) {
	switch JoinHow(s) {
	case JoinInner, JoinOuter:
		return JoinHow(s), nil
	}
	return "", fmt.Errorf("unknown join %q, use inner or outer", s)
}

// Join merges right into left on the key columns. Non-key columns of right
// that clash with a left column get a "_right" suffix. Output rows follow left
// order, then unmatched right rows for an outer join.
func Join(left, right *Table, keys []string, how JoinHow) (*Table, error) {
	lk, err := keyIndexes(left, keys)
	if err != nil {
		return nil, err
	}
	rk, err := keyIndexes(right, keys)
	if err != nil {
		return nil, err
	}

	isKey := make(map[int]bool, len(rk))
	for _, i := range rk {
		isKey[i] = true
	}
	var rest []int
	columns := append([]string(nil), left.Columns...)
	for i, c := range right.Columns {
		if isKey[i] {
			continue
		}
		rest = append(rest, i)
		if left.Index(c) >= 0 {
			c += "_right"
		}
		columns = append(columns, c)
	}
	out := NewTable(left.Source, columns...)

	byKey := make(map[string][]int)
	for r, row := range right.Rows {
		k := joinKey(row, rk)
		byKey[k] = append(byKey[k], r)
	}

	matched := make([]bool, len(right.Rows))
	for _, lrow := range left.Rows {
		hits := byKey[joinKey(lrow, lk)]
		if len(hits) == 0 {
			if how == JoinOuter {
				out.Rows = append(out.Rows, pad(lrow, len(rest)))
			}
			continue
		}
		for _, r := range hits {
			matched[r] = true
			row := append([]string(nil), lrow...)
			for _, i := range rest {
				row = append(row, right.Rows[r][i])
			}
			out.Rows = append(out.Rows, row)
		}
	}

	if how == JoinOuter {
		for r, rrow := range right.Rows {
			if matched[r] {
				continue
			}
			row := make([]string, len(left.Columns))
			for i := range row {
				row[i] = NA
			}
			for k, i := range lk {
				row[i] = rrow[rk[k]]
			}
			for _, i := range rest {
				row = append(row, rrow[i])
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func keyIndexes(t *Table, keys []string) ([]int, error) {
	idx := make([]int, len(keys))
	for k, name := range keys {
		idx[k] = t.Index(name)
		if idx[k] < 0 {
			return nil, fmt.Errorf("join key %q missing from %s table", name, t.Source)
		}
	}
	return idx, nil
}

func joinKey(row []string, idx []int) string {
	parts := make([]string, len(idx))
	for k, i := range idx {
		parts[k] = row[i]
	}
	return strings.Join(parts, "\x00")
}

func pad(row []string, n int) []string {
	out := append([]string(nil), row...)
	for i := 0; i < n; i++ {
		out = append(out, NA)
	}
	return out
}
