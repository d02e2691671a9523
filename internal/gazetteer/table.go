// Package gazetteer loads a Glottolog-style languoid table and answers
// read-only lookups by language name, glottocode and ISO 639-3 code.
package gazetteer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matsen/lingmap/internal/geo"
)

// ErrMalformedTable is returned when a table lacks required columns or cannot be parsed.
var ErrMalformedTable = errors.New("malformed gazetteer table")

// affiliationCacheSize bounds the memoized affiliation strings.
const affiliationCacheSize = 4096

// Entry is one row of the table. Optional fields are empty when absent.
type Entry struct {
	Name           string           `json:"name"`
	ID             string           `json:"glottocode"`
	ISO            string           `json:"iso,omitempty"`
	Macroarea      string           `json:"macroarea,omitempty"`
	Classification string           `json:"classification,omitempty"`
	Coordinates    *geo.Coordinates `json:"coordinates,omitempty"`
}

// Table is an immutable, indexed gazetteer. It is safe for concurrent use.
type Table struct {
	entries []Entry
	byName  map[string]int
	byID    map[string]int
	byISO   map[string]int

	affiliations *lru.Cache[string, string]
}

// header aliases, lower-cased.
var columnAliases = map[string][]string{
	"name":           {"name"},
	"id":             {"id", "glottocode"},
	"latitude":       {"latitude", "lat"},
	"longitude":      {"longitude", "lon", "lng"},
	"iso":            {"iso639p3code", "iso", "iso_code"},
	"macroarea":      {"macroarea"},
	"classification": {"classification"},
}

var requiredColumns = []string{"name", "id", "latitude", "longitude"}

// Load reads a table from disk. Files ending in .tsv or .tab are tab separated.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gazetteer: %w", err)
	}
	defer f.Close()

	sep := ','
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		sep = '\t'
	}
	return ParseSep(f, sep)
}

// Parse reads a comma separated table.
func Parse(r io.Reader) (*Table, error) {
	return ParseSep(r, ',')
}

// ParseSep reads a table using the given field separator.
func ParseSep(r io.Reader, sep rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedTable, err)
	}
	cols := resolveColumns(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedTable, name)
		}
	}

	t := &Table{
		byName: make(map[string]int),
		byID:   make(map[string]int),
		byISO:  make(map[string]int),
	}
	t.affiliations, err = lru.New[string, string](affiliationCacheSize)
	if err != nil {
		return nil, err
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		e := Entry{
			Name:           field("name"),
			ID:             field("id"),
			ISO:            field("iso"),
			Macroarea:      field("macroarea"),
			Classification: field("classification"),
		}
		if c, err := geo.Parse(field("latitude"), field("longitude")); err == nil && c.Valid() {
			e.Coordinates = &c
		}
		t.add(e)
	}
	return t, nil
}

func resolveColumns(header []string) map[string]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	cols := make(map[string]int)
	for canon, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				cols[canon] = i
				break
			}
		}
	}
	return cols
}

func (t *Table) add(e Entry) {
	i := len(t.entries)
	t.entries = append(t.entries, e)
	if e.Name != "" {
		if _, ok := t.byName[e.Name]; !ok {
			t.byName[e.Name] = i
		}
	}
	if e.ID != "" {
		if _, ok := t.byID[e.ID]; !ok {
			t.byID[e.ID] = i
		}
	}
	if e.ISO != "" {
		if _, ok := t.byISO[e.ISO]; !ok {
			t.byISO[e.ISO] = i
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the first entry with the given name.
func (t *Table) Lookup(name string) (Entry, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// LookupGlotID returns the entry with the given glottocode.
func (t *Table) LookupGlotID(id string) (Entry, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// LookupISO returns the first entry with the given ISO 639-3 code.
func (t *Table) LookupISO(iso string) (Entry, bool) {
	i, ok := t.byISO[iso]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

func (t *Table) Coordinates(name string) (geo.Coordinates, bool) {
	e, ok := t.Lookup(name)
	if !ok || e.Coordinates == nil {
		return geo.Coordinates{}, false
	}
	return *e.Coordinates, true
}

func (t *Table) GlotID(name string) (string, bool) {
	e, ok := t.Lookup(name)
	return e.ID, ok && e.ID != ""
}

func (t *Table) ISO(name string) (string, bool) {
	e, ok := t.Lookup(name)
	return e.ISO, ok && e.ISO != ""
}

func (t *Table) Macroarea(name string) (string, bool) {
	e, ok := t.Lookup(name)
	return e.Macroarea, ok && e.Macroarea != ""
}

func (t *Table) CoordinatesByGlotID(id string) (geo.Coordinates, bool) {
	e, ok := t.LookupGlotID(id)
	if !ok || e.Coordinates == nil {
		return geo.Coordinates{}, false
	}
	return *e.Coordinates, true
}

func (t *Table) NameByGlotID(id string) (string, bool) {
	e, ok := t.LookupGlotID(id)
	return e.Name, ok && e.Name != ""
}

func (t *Table) ISOByGlotID(id string) (string, bool) {
	e, ok := t.LookupGlotID(id)
	return e.ISO, ok && e.ISO != ""
}

func (t *Table) NameByISO(iso string) (string, bool) {
	e, ok := t.LookupISO(iso)
	return e.Name, ok && e.Name != ""
}

func (t *Table) GlotIDByISO(iso string) (string, bool) {
	e, ok := t.LookupISO(iso)
	return e.ID, ok && e.ID != ""
}

// Affiliation resolves the slash-separated Classification chain of a language
// into ancestor names joined by ", ". Ancestors missing from the table are skipped.
// A language with an empty classification (a family root or isolate) has an
// empty affiliation and ok is still true.
func (t *Table) Affiliation(name string) (string, bool) {
	e, ok := t.Lookup(name)
	if !ok {
		return "", false
	}
	if e.Classification == "" {
		return "", true
	}
	if aff, ok := t.affiliations.Get(e.Classification); ok {
		return aff, true
	}

	var names []string
	for _, id := range strings.Split(e.Classification, "/") {
		if n, ok := t.NameByGlotID(strings.TrimSpace(id)); ok {
			names = append(names, n)
		}
	}
	aff := strings.Join(names, ", ")
	t.affiliations.Add(e.Classification, aff)
	return aff, true
}
