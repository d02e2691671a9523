package dataset

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultSailsURL is the SAILS CLDF archive.
const DefaultSailsURL = "https://cdstar.shh.mpg.de/bitstreams/EAEA0-0A75-A1F1-F344-0/SAILS_dataset.cldf.zip"

// SailsCitation points to the SAILS site, which gives the preferred reference.
const SailsCitation = "Muysken, Pieter et al. 2016. South American Indigenous Language Structures (SAILS).\n" +
	"Please consult https://sails.clld.org/ for the preferred citation."

// Sails downloads the South American Indigenous Language Structures dataset.
type Sails struct {
	Fetcher  *Fetcher
	URL      string
	Features []string
}

func (s *Sails) Name() string { return "sails" }

type sailsData struct {
	languages  *Table
	parameters *Table
	values     *Table
}

func (s *Sails) load(ctx context.Context) (*sailsData, error) {
	url := s.URL
	if url == "" {
		url = DefaultSailsURL
	}
	body, err := s.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	want := map[string]bool{"languages.csv": true, "parameters.csv": true, "values.csv": true}
	files, err := unzip(body, func(name string) bool { return want[name] })
	if err != nil {
		return nil, err
	}

	tables := make(map[string]*Table, len(want))
	for name := range want {
		data, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing from SAILS archive", ErrInvalidResponse, name)
		}
		t, err := ReadCSV(bytes.NewReader(data), ',')
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		tables[name] = t
	}
	d := &sailsData{
		languages:  tables["languages.csv"],
		parameters: tables["parameters.csv"],
		values:     tables["values.csv"],
	}
	if err := hasColumns(d.languages, "ID", "Name", "Latitude", "Longitude"); err != nil {
		return nil, err
	}
	if err := hasColumns(d.parameters, "ID", "Name"); err != nil {
		return nil, err
	}
	if err := hasColumns(d.values, "Language_ID", "Parameter_ID", "Value"); err != nil {
		return nil, err
	}
	return d, nil
}

// Available lists the feature IDs, sorted.
func (s *Sails) Available(ctx context.Context) ([]string, error) {
	d, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ids, _ := d.parameters.Column("ID")
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Descriptions returns a Feature/Description table for the given feature IDs,
// or for all features when none are given.
func (s *Sails) Descriptions(ctx context.Context, features ...string) (*Table, error) {
	d, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(features))
	for _, f := range features {
		want[strings.ToUpper(f)] = true
	}
	out := NewTable(s.Name(), "Feature", "Description")
	for r := range d.parameters.Rows {
		id := d.parameters.Get(r, "ID")
		if len(want) == 0 || want[id] {
			out.Rows = append(out.Rows, []string{id, d.parameters.Get(r, "Name")})
		}
	}
	return out, nil
}

var sailsKeys = []string{"language", "latitude", "longitude"}

// Fetch returns one value and one readable description column per feature,
// outer-joined on language and coordinates.
func (s *Sails) Fetch(ctx context.Context) (*Result, error) {
	if len(s.Features) == 0 {
		return nil, fmt.Errorf("%w: no SAILS features requested", ErrNoData)
	}
	log := s.Fetcher.Logger()

	d, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	type language struct{ name, lat, lon string }
	langs := make(map[string]language, d.languages.Len())
	for r := range d.languages.Rows {
		langs[d.languages.Get(r, "ID")] = language{
			name: d.languages.Get(r, "Name"),
			lat:  d.languages.Get(r, "Latitude"),
			lon:  d.languages.Get(r, "Longitude"),
		}
	}

	res := &Result{Citation: SailsCitation}
	var merged *Table
	for _, f := range s.Features {
		f = strings.ToUpper(strings.TrimSpace(f))
		t := NewTable(s.Name(), append(append([]string(nil), sailsKeys...), f, f+"_desc")...)
		for r := range d.values.Rows {
			if d.values.Get(r, "Parameter_ID") != f {
				continue
			}
			lid := d.values.Get(r, "Language_ID")
			lang, ok := langs[lid]
			if !ok {
				res.warn(log, s.Name(), "unknown language ID "+lid, zap.String("feature", f))
				continue
			}
			v := d.values.Get(r, "Value")
			t.Rows = append(t.Rows, []string{lang.name, lang.lat, lang.lon, v, sailsDescription(v)})
		}
		if t.Len() == 0 {
			res.warn(log, s.Name(), "no values for feature "+f, zap.String("feature", f))
			continue
		}

		if merged == nil {
			merged = t
			continue
		}
		if merged, err = Join(merged, t, sailsKeys, JoinOuter); err != nil {
			return nil, err
		}
	}
	if merged != nil {
		merged.FillEmpty(NA)
	}
	return res.finish(s.Name(), merged)
}

func sailsDescription(v string) string {
	switch v {
	case "0":
		return "No"
	case "1":
		return "Yes"
	}
	return v
}
