package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// DefaultAutotypURL is the prefix of AUTOTYP module tables.
const DefaultAutotypURL = "https://raw.githubusercontent.com/autotyp/autotyp-data/master/data/"

// AutotypCitation is the reference for the AUTOTYP databases.
const AutotypCitation = "Bickel, Balthasar, Johanna Nichols, Taras Zakharko,\n" +
	"Alena Witzlack-Makarevich, Kristine Hildebrandt, Michael Rießler,\n" +
	"Lennart Bierkandt, Fernando Zúñiga & John B. Lowe.\n" +
	"2017. The AUTOTYP typological databases.\n" +
	"Version 0.1.0 https://github.com/autotyp/autotyp-data/tree/0.1.0"

// NameResolver maps glottocodes to language names. *gazetteer.Table satisfies it.
type NameResolver interface {
	NameByGlotID(id string) (string, bool)
}

// Autotyp downloads AUTOTYP module tables and joins them on LID.
type Autotyp struct {
	Fetcher *Fetcher
	BaseURL string
	Tables  []string
	// StripNA drops rows that have no value in these columns.
	StripNA []string
	// Mapping maps AUTOTYP LIDs to glottocodes.
	Mapping map[string]string
	// Names resolves glottocodes to names; nil keeps the glottocode.
	Names NameResolver
}

func (a *Autotyp) Name() string { return "autotyp" }

// LoadAutotypMapping reads a JSON object of LID to glottocode.
func LoadAutotypMapping(r io.Reader) (map[string]string, error) {
	var m map[string]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing AUTOTYP mapping: %w", err)
	}
	return m, nil
}

// LoadAutotypMappingFile reads the mapping from path.
func LoadAutotypMappingFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening AUTOTYP mapping: %w", err)
	}
	defer f.Close()
	return LoadAutotypMapping(f)
}

// Fetch downloads the tables. The first table contributes a language column
// resolved through Mapping and Names; later tables are inner-joined on LID.
func (a *Autotyp) Fetch(ctx context.Context) (*Result, error) {
	if len(a.Tables) == 0 {
		return nil, fmt.Errorf("%w: no AUTOTYP tables requested", ErrNoData)
	}
	base := a.BaseURL
	if base == "" {
		base = DefaultAutotypURL
	}
	log := a.Fetcher.Logger()

	res := &Result{Citation: AutotypCitation}
	var merged *Table
	for _, name := range a.Tables {
		url := base + name + ".csv"
		body, err := a.Fetcher.Get(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.warn(log, a.Name(), "unable to find table "+name, zap.String("feature", name), zap.String("url", url), zap.Error(err))
			continue
		}
		t, err := ReadCSV(bytes.NewReader(body), ',')
		if err != nil {
			res.warn(log, a.Name(), fmt.Sprintf("cannot parse table %s: %v", name, err), zap.String("feature", name))
			continue
		}
		if err := hasColumns(t, "LID"); err != nil {
			res.warn(log, a.Name(), fmt.Sprintf("table %s: %v", name, err), zap.String("feature", name))
			continue
		}
		t.Source = name
		t.FillEmpty(NA)

		if merged == nil {
			merged = a.withLanguages(t, res)
			continue
		}
		if merged, err = Join(merged, t, []string{"LID"}, JoinInner); err != nil {
			return nil, err
		}
	}

	if merged != nil {
		merged = merged.StripNA(a.StripNA...)
	}
	return res.finish(a.Name(), merged)
}

func (a *Autotyp) withLanguages(t *Table, res *Result) *Table {
	log := a.Fetcher.Logger()
	out := NewTable(t.Source, append([]string{"language"}, t.Columns...)...)
	lids, _ := t.Column("LID")
	for r, lid := range lids {
		lang := ""
		if id, ok := a.Mapping[lid]; !ok {
			res.warn(log, a.Name(), "unable to find glottocode for LID "+lid, zap.String("lid", lid))
		} else if a.Names == nil {
			lang = id
		} else if name, ok := a.Names.NameByGlotID(id); ok {
			lang = name
		} else {
			res.warn(log, a.Name(), "unknown glottocode "+id, zap.String("lid", lid))
		}
		out.Rows = append(out.Rows, append([]string{lang}, t.Rows[r]...))
	}
	return out
}
