package gazetteer

import (
	"fmt"

	"github.com/matsen/lingmap/internal/geo"
)

// Warning records one lookup miss.
type Warning struct {
	Func   string `json:"func"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("(%s) %s: %s", w.Func, w.Key, w.Reason)
}

// Resolver wraps a Table and accumulates a warning for every miss, so a batch
// of lookups never aborts on one unknown language. Not safe for concurrent use.
type Resolver struct {
	table    *Table
	warnings []Warning
}

// NewResolver returns a resolver over t.
func NewResolver(t *Table) *Resolver {
	return &Resolver{table: t}
}

func (r *Resolver) warn(fn, key, reason string) {
	r.warnings = append(r.warnings, Warning{Func: fn, Key: key, Reason: reason})
}

// Warnings returns a copy of the accumulated warnings.
func (r *Resolver) Warnings() []Warning {
	return append([]Warning(nil), r.warnings...)
}

// Reset clears accumulated warnings.
func (r *Resolver) Reset() {
	r.warnings = nil
}

// Resolve returns everything known about name. Each missing field produces a warning.
func (r *Resolver) Resolve(name string) Entry {
	e, ok := r.table.Lookup(name)
	if !ok {
		r.warn("resolve", name, "language not found")
		return Entry{Name: name}
	}
	if e.Coordinates == nil {
		r.warn("resolve", name, "coordinates not found")
	}
	if e.ISO == "" {
		r.warn("resolve", name, "ISO code not found")
	}
	if e.Macroarea == "" {
		r.warn("resolve", name, "macroarea not found")
	}
	return e
}

// Coordinates looks up one language, warning on a miss.
func (r *Resolver) Coordinates(name string) (geo.Coordinates, bool) {
	c, ok := r.table.Coordinates(name)
	if !ok {
		r.warn("coordinates", name, "coordinates not found")
	}
	return c, ok
}

// GlotID looks up one glottocode, warning on a miss.
func (r *Resolver) GlotID(name string) (string, bool) {
	id, ok := r.table.GlotID(name)
	if !ok {
		r.warn("glot_id", name, "glottocode not found")
	}
	return id, ok
}

// CoordinatesAll resolves every name. Misses are nil.
func (r *Resolver) CoordinatesAll(names []string) []*geo.Coordinates {
	out := make([]*geo.Coordinates, len(names))
	for i, n := range names {
		if c, ok := r.Coordinates(n); ok {
			out[i] = &c
		}
	}
	return out
}

// Affiliations resolves the genealogical affiliation of every name. Misses are empty.
func (r *Resolver) Affiliations(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		aff, ok := r.table.Affiliation(n)
		if !ok {
			r.warn("affiliations", n, "affiliation not found")
			continue
		}
		out[i] = aff
	}
	return out
}

// ISOs resolves ISO 639-3 codes. Misses are empty.
func (r *Resolver) ISOs(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		iso, ok := r.table.ISO(n)
		if !ok {
			r.warn("iso", n, "ISO code not found")
			continue
		}
		out[i] = iso
	}
	return out
}

// Macroareas resolves macroareas. Misses are empty.
func (r *Resolver) Macroareas(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		m, ok := r.table.Macroarea(n)
		if !ok {
			r.warn("macroarea", n, "macroarea not found")
			continue
		}
		out[i] = m
	}
	return out
}

// NamesByGlotID maps glottocodes to names. Misses are empty.
func (r *Resolver) NamesByGlotID(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		n, ok := r.table.NameByGlotID(id)
		if !ok {
			r.warn("by_glot_id", id, "language not found")
			continue
		}
		out[i] = n
	}
	return out
}

// NamesByISO maps ISO codes to names. Misses are empty.
func (r *Resolver) NamesByISO(isos []string) []string {
	out := make([]string, len(isos))
	for i, iso := range isos {
		n, ok := r.table.NameByISO(iso)
		if !ok {
			r.warn("by_iso", iso, "language not found")
			continue
		}
		out[i] = n
	}
	return out
}
