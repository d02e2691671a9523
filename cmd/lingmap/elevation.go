package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matsen/lingmap/internal/dataset"
	"github.com/matsen/lingmap/internal/gazetteer"
	"github.com/matsen/lingmap/internal/geo"
)

var elevationChunk int

func init() {
	elevationCmd.Flags().IntVar(&elevationChunk, "chunk-size", dataset.DefaultChunkSize, "Locations per request")
	rootCmd.AddCommand(elevationCmd)
}

var elevationCmd = &cobra.Command{
	Use:   "elevation <language>...",
	Short: "Elevation of languages",
	Long: `Look up the elevation of languages from their gazetteer coordinates.

Queries an Open-Elevation compatible service (elevation_url in the config).
Languages without coordinates are skipped with a warning.

Examples:
  lingmap elevation Adyghe Kabardian --human`,
	Args: cobra.MinimumNArgs(1),
	Run:  runElevation,
}

// ElevationResult is the elevation of one language.
type ElevationResult struct {
	Language    string          `json:"language"`
	Coordinates geo.Coordinates `json:"coordinates"`
	Elevation   float64         `json:"elevation"`
}

func runElevation(cmd *cobra.Command, args []string) {
	cfg := mustLoadGlobalConfig()
	r := gazetteer.NewResolver(mustLoadGazetteer())

	var langs []string
	var coords []geo.Coordinates
	for _, name := range args {
		c, ok := r.Coordinates(name)
		if !ok {
			continue
		}
		langs = append(langs, name)
		coords = append(coords, c)
	}
	for _, w := range r.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(coords) == 0 {
		exitWithError(ExitNoData, "no coordinates found for any language")
	}

	fetcher, closeCache := newFetcher(cfg)
	defer closeCache()
	ctx, cancel := fetchContext()
	defer cancel()

	e := &dataset.Elevation{Fetcher: fetcher, URL: cfg.ElevationURL, ChunkSize: elevationChunk}
	heights, err := e.Lookup(ctx, coords)
	if err != nil {
		closeCache()
		fail(err)
	}

	results := make([]ElevationResult, len(langs))
	for i := range langs {
		results[i] = ElevationResult{Language: langs[i], Coordinates: coords[i], Elevation: heights[i]}
	}
	if !humanOutput {
		outputJSON(results)
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Language", "Coordinates", "Elevation (m)"})
	for _, res := range results {
		tw.AppendRow(table.Row{res.Language, res.Coordinates.String(), res.Elevation})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
