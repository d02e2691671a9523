package dataset

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultAfboURL is the AfBo pair table archive.
const DefaultAfboURL = "https://cdstar.shh.mpg.de/bitstreams/EAEA0-59C8-38F2-28DC-0/afbo_pair.csv.zip"

// afboFeatureOffset is the first feature column of the pair table.
const afboFeatureOffset = 10

// AfBo downloads the AfBo survey of affix borrowing.
type AfBo struct {
	Fetcher  *Fetcher
	URL      string
	Features []string
}

func (a *AfBo) Name() string { return "afbo" }

// Citation is the reference for AfBo.
func (a *AfBo) Citation() string {
	return "Seifart, Frank. 2013.\n" +
		"AfBo: A world-wide survey of affix borrowing.\n" +
		"Leipzig: Max Planck Institute for Evolutionary Anthropology.\n" +
		fmt.Sprintf("(Available online at http://afbo.info, Accessed on %s.)", accessed())
}

func (a *AfBo) load(ctx context.Context) (*Table, error) {
	url := a.URL
	if url == "" {
		url = DefaultAfboURL
	}
	body, err := a.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	files, err := unzip(body, func(name string) bool { return strings.HasSuffix(name, ".csv") })
	if err != nil {
		return nil, err
	}
	for _, data := range files {
		t, err := ReadCSV(bytes.NewReader(data), ',')
		if err != nil {
			return nil, err
		}
		t.FillEmpty("0")
		return t, nil
	}
	return nil, fmt.Errorf("%w: no CSV file in AfBo archive", ErrInvalidResponse)
}

// Available lists the feature columns of the pair table.
func (a *AfBo) Available(ctx context.Context) ([]string, error) {
	t, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(t.Columns) <= afboFeatureOffset {
		return nil, nil
	}
	return append([]string(nil), t.Columns[afboFeatureOffset:]...), nil
}

// Fetch returns recipient, donor and reliability plus the requested features.
func (a *AfBo) Fetch(ctx context.Context) (*Result, error) {
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("%w: no AfBo features requested", ErrNoData)
	}
	log := a.Fetcher.Logger()

	data, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := hasColumns(data, "Recipient name", "Donor name", "reliability"); err != nil {
		return nil, err
	}

	res := &Result{Citation: a.Citation()}
	columns := []string{"Recipient name", "Donor name", "reliability"}
	for _, f := range a.Features {
		if data.Index(f) < 0 {
			res.warn(log, a.Name(), "no feature named "+f, zap.String("feature", f))
			continue
		}
		columns = append(columns, f)
	}
	t, err := data.Select(columns...)
	if err != nil {
		return nil, err
	}
	t.Columns[0], t.Columns[1] = "language_recipient", "language_donor"
	return res.finish(a.Name(), t)
}
