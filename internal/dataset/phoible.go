package dataset

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPhoibleURL serves the aggregated inventories and languages tables.
	DefaultPhoibleURL = "https://phoible.org/"
	// DefaultPhoibleRawURL is the full segment-level table.
	DefaultPhoibleRawURL = "https://raw.githubusercontent.com/phoible/dev/master/data/phoible.csv"
)

// PhoibleSubsets are the contributing databases accepted as Subset.
var PhoibleSubsets = []string{"all", "UPSID", "SPA", "AA", "PH", "GM", "RA", "SAPHON"}

// Phoible downloads phonological inventories from PHOIBLE.
type Phoible struct {
	Fetcher *Fetcher
	BaseURL string
	RawURL  string
	// Subset restricts to one contributing database; "" or "all" keeps everything.
	Subset string
	// Aggregated returns one row per inventory with segment counts instead of
	// one row per segment.
	Aggregated bool
	StripNA    []string
}

func (p *Phoible) Name() string { return "phoible" }

// Citation is the reference for PHOIBLE 2.0.
func (p *Phoible) Citation() string {
	return "Moran, Steven & McCloy, Daniel (eds.) 2019.\nPHOIBLE 2.0.\n" +
		"Jena: Max Planck Institute for the Science of Human History.\n" +
		fmt.Sprintf("(Available online at http://phoible.org, Accessed on %s.)", accessed())
}

func (p *Phoible) subset() (string, error) {
	if p.Subset == "" || strings.EqualFold(p.Subset, "all") {
		return "", nil
	}
	for _, s := range PhoibleSubsets {
		if strings.EqualFold(s, p.Subset) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown PHOIBLE subset %q: must be one of %s", p.Subset, strings.Join(PhoibleSubsets, ", "))
}

func (p *Phoible) get(ctx context.Context, url string) (*Table, error) {
	body, err := p.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ReadCSV(bytes.NewReader(body), ',')
}

// Fetch downloads the inventories.
func (p *Phoible) Fetch(ctx context.Context) (*Result, error) {
	subset, err := p.subset()
	if err != nil {
		return nil, err
	}
	var t *Table
	if p.Aggregated {
		t, err = p.aggregated(ctx, subset)
	} else {
		t, err = p.segments(ctx, subset)
	}
	if err != nil {
		return nil, err
	}
	t.FillEmpty(NA)
	t = t.StripNA(p.StripNA...)
	res := &Result{Citation: p.Citation()}
	return res.finish(p.Name(), t)
}

func (p *Phoible) aggregated(ctx context.Context, subset string) (*Table, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultPhoibleURL
	}
	inv, err := p.get(ctx, base+"inventories.csv")
	if err != nil {
		return nil, fmt.Errorf("inventories: %w", err)
	}
	langs, err := p.get(ctx, base+"languages.csv")
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}

	inv, err = inv.Select("name", "count_consonant", "count_tone", "count_vowel", "language_pk", "source_url")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if subset != "" {
		inv = inv.Filter(func(row []string) bool { return strings.Contains(row[0], strings.ToUpper(subset)) })
	}
	langs, err = langs.Select("id", "latitude", "longitude", "macroarea", "name", "pk")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	_ = inv.Rename("language_pk", "pk")
	_ = inv.Rename("name", "contribution_name")
	_ = langs.Rename("name", "language")

	joined, err := Join(langs, inv, []string{"pk"}, JoinInner)
	if err != nil {
		return nil, err
	}

	out := NewTable(p.Name(), "contribution_name", "language", "latitude", "longitude", "glottocode",
		"macroarea", "phonemes", "consonants", "vowels", "tones", "source", "inventory_page")
	for r := range joined.Rows {
		cons := joined.Get(r, "count_consonant")
		vow := joined.Get(r, "count_vowel")
		id := joined.Get(r, "id")
		out.Rows = append(out.Rows, []string{
			joined.Get(r, "contribution_name"),
			joined.Get(r, "language"),
			joined.Get(r, "latitude"),
			joined.Get(r, "longitude"),
			id,
			joined.Get(r, "macroarea"),
			sumCounts(cons, vow),
			cons,
			vow,
			joined.Get(r, "count_tone"),
			joined.Get(r, "source_url"),
			base + "languages/" + id,
		})
	}
	return out, nil
}

func (p *Phoible) segments(ctx context.Context, subset string) (*Table, error) {
	url := p.RawURL
	if url == "" {
		url = DefaultPhoibleRawURL
	}
	t, err := p.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if subset == "" {
		return t, nil
	}
	i := t.Index("Source")
	if i < 0 {
		return nil, fmt.Errorf("%w: no Source column", ErrInvalidResponse)
	}
	want := strings.ToLower(subset)
	return t.Filter(func(row []string) bool { return row[i] == want }), nil
}

// sumCounts adds two integer cells; either missing gives "".
func sumCounts(a, b string) string {
	x, err1 := strconv.Atoi(strings.TrimSpace(a))
	y, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return ""
	}
	return strconv.Itoa(x + y)
}
