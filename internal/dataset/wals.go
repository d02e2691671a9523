package dataset

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultWalsURL is the prefix of WALS feature pages.
const DefaultWalsURL = "https://wals.info/feature/"

// walsPreamble is the number of citation lines before the header of a .tab page.
const walsPreamble = 7

var walsKeys = []string{"wals_code", "language", "genus", "family", "latitude", "longitude"}

// Wals downloads features from the World Atlas of Language Structures.
type Wals struct {
	Fetcher  *Fetcher
	BaseURL  string
	Features []string
	// Join combines several features; inner by default.
	Join JoinHow
}

func (w *Wals) Name() string { return "wals" }

// Citation is the reference for WALS as a whole.
func (w *Wals) Citation() string {
	return "Dryer, Matthew S. & Haspelmath, Martin (eds.) 2013.\n" +
		"The World Atlas of Language Structures Online.\n" +
		"Leipzig: Max Planck Institute for Evolutionary Anthropology.\n" +
		fmt.Sprintf("(Available online at http://wals.info, Accessed on %s.)", accessed())
}

// Fetch downloads every feature and joins them on the language columns.
// A feature that cannot be read is skipped with a warning.
func (w *Wals) Fetch(ctx context.Context) (*Result, error) {
	if len(w.Features) == 0 {
		return nil, fmt.Errorf("%w: no WALS features requested", ErrNoData)
	}
	base := w.BaseURL
	if base == "" {
		base = DefaultWalsURL
	}
	how := w.Join
	if how == "" {
		how = JoinInner
	}
	log := w.Fetcher.Logger()

	res := &Result{Citation: w.Citation()}
	var merged *Table
	for _, f := range w.Features {
		f = strings.ToUpper(strings.TrimSpace(f))
		url := base + f + ".tab"
		body, err := w.Fetcher.Get(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.warn(log, w.Name(), "cannot read WALS feature "+f, zap.String("feature", f), zap.String("url", url), zap.Error(err))
			continue
		}

		t, cite, err := parseWalsFeature(f, body)
		if err != nil {
			res.warn(log, w.Name(), fmt.Sprintf("cannot parse WALS feature %s: %v", f, err), zap.String("feature", f))
			continue
		}
		res.Citation += fmt.Sprintf("\n\nCitation for feature %s:\n%s", f, cite)

		if merged == nil {
			merged = t
			continue
		}
		if merged, err = Join(merged, t, walsKeys, how); err != nil {
			return nil, err
		}
	}

	if merged != nil {
		merged = merged.Filter(func(row []string) bool {
			lang := row[1]
			return lang != "" && lang != NA
		})
	}
	return res.finish(w.Name(), merged)
}

// parseWalsFeature reads a WALS .tab page: a citation preamble followed by a
// tab-separated table.
func parseWalsFeature(feature string, body []byte) (*Table, string, error) {
	lines := strings.Split(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n")
	if len(lines) <= walsPreamble {
		return nil, "", fmt.Errorf("%w: page too short", ErrInvalidResponse)
	}
	cite := strings.Join(lines[:5], "\n")

	raw, err := ReadCSV(strings.NewReader(strings.Join(lines[walsPreamble:], "\n")), '\t')
	if err != nil {
		return nil, "", err
	}
	if err := hasColumns(raw, "wals code", "name", "value", "description", "latitude", "longitude", "genus", "family", "area"); err != nil {
		return nil, "", err
	}

	t := NewTable("wals", append(append([]string(nil), walsKeys...),
		"_"+feature+"_area", "_"+feature, "_"+feature+"_num", "_"+feature+"_desc")...)
	for r := range raw.Rows {
		value := raw.Get(r, "value")
		desc := raw.Get(r, "description")
		t.Rows = append(t.Rows, []string{
			raw.Get(r, "wals code"),
			raw.Get(r, "name"),
			raw.Get(r, "genus"),
			raw.Get(r, "family"),
			raw.Get(r, "latitude"),
			raw.Get(r, "longitude"),
			raw.Get(r, "area"),
			value + ". " + desc,
			value,
			desc,
		})
	}
	return t, cite, nil
}
