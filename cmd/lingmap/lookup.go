package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matsen/lingmap/internal/gazetteer"
	"github.com/matsen/lingmap/internal/geo"
)

var lookupBy string

func init() {
	lookupCmd.Flags().StringVar(&lookupBy, "by", "name", "Key to look up by: name, glottocode or iso")
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <key>...",
	Short: "Look up languages in the gazetteer",
	Long: `Look up languages in the gazetteer by name, glottocode or ISO 639-3 code.

Examples:
  lingmap lookup Adyghe Kabardian
  lingmap lookup --by glottocode adyg1241
  lingmap lookup --by iso ady --human`,
	Args: cobra.MinimumNArgs(1),
	Run:  runLookup,
}

// LookupResult is one gazetteer lookup.
type LookupResult struct {
	Query       string           `json:"query"`
	Found       bool             `json:"found"`
	Name        string           `json:"name,omitempty"`
	Glottocode  string           `json:"glottocode,omitempty"`
	ISO         string           `json:"iso,omitempty"`
	Macroarea   string           `json:"macroarea,omitempty"`
	Affiliation string           `json:"affiliation,omitempty"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
}

// LookupResponse is the response for lookup.
type LookupResponse struct {
	Results  []LookupResult      `json:"results"`
	Warnings []gazetteer.Warning `json:"warnings,omitempty"`
}

func runLookup(cmd *cobra.Command, args []string) {
	t := mustLoadGazetteer()
	r := gazetteer.NewResolver(t)

	var lookup func(string) (gazetteer.Entry, bool)
	switch lookupBy {
	case "name":
		lookup = func(name string) (gazetteer.Entry, bool) {
			e := r.Resolve(name)
			return e, e.ID != ""
		}
	case "glottocode":
		lookup = t.LookupGlotID
	case "iso":
		lookup = t.LookupISO
	default:
		exitWithError(ExitError, "unknown --by %q: use name, glottocode or iso", lookupBy)
	}

	resp := LookupResponse{Results: make([]LookupResult, 0, len(args))}
	for _, q := range args {
		e, ok := lookup(q)
		res := LookupResult{Query: q, Found: ok}
		if ok {
			res.Name = e.Name
			res.Glottocode = e.ID
			res.ISO = e.ISO
			res.Macroarea = e.Macroarea
			res.Coordinates = e.Coordinates
			res.Affiliation, _ = t.Affiliation(e.Name)
		} else if lookupBy != "name" {
			fmt.Fprintf(os.Stderr, "warning: %s %q not found\n", lookupBy, q)
		}
		resp.Results = append(resp.Results, res)
	}
	resp.Warnings = r.Warnings()

	if !humanOutput {
		outputJSON(resp)
		return
	}
	for _, w := range resp.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Query", "Name", "Glottocode", "ISO", "Macroarea", "Coordinates", "Affiliation"})
	for _, res := range resp.Results {
		coords := "-"
		if res.Coordinates != nil {
			coords = res.Coordinates.String()
		}
		if !res.Found {
			tw.AppendRow(table.Row{res.Query, "not found", "", "", "", "", ""})
			continue
		}
		tw.AppendRow(table.Row{res.Query, res.Name, res.Glottocode, res.ISO, res.Macroarea, coords, res.Affiliation})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
