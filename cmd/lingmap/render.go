package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/lingmap/internal/config"
	"github.com/matsen/lingmap/internal/lingmap"
	"github.com/matsen/lingmap/internal/mapfile"
)

var (
	renderOutput  string
	renderGeoJSON string
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output HTML file (default: stdout)")
	renderCmd.Flags().StringVar(&renderGeoJSON, "geojson", "", "Also write the placed points as GeoJSON")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <map.yml>",
	Short: "Render a map description to HTML",
	Long: `Render a YAML map description to a self-contained HTML page.

Columns named in the description are read from its data table, a CSV file
given relative to the description.

Examples:
  # Render to stdout
  lingmap render map.yml > map.html

  # Render to a file and export the points
  lingmap render map.yml -o map.html --geojson points.geojson`,
	Args: cobra.ExactArgs(1),
	Run:  runRender,
}

func runRender(cmd *cobra.Command, args []string) {
	f, err := mapfile.Load(args[0])
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	b, err := f.Builder()
	if err != nil {
		fail(err)
	}
	buildAndWrite(b, renderOutput, renderGeoJSON)
}

// RenderResponse is the response for render and quick.
type RenderResponse struct {
	Output      string   `json:"output"`
	GeoJSON     string   `json:"geojson,omitempty"`
	Points      int      `json:"points"`
	Stage       string   `json:"stage"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// buildAndWrite builds the map and writes its artifacts. A gazetteer is only
// required when some language has no custom coordinates.
func buildAndWrite(b *lingmap.Builder, output, geojsonPath string) {
	cfg, err := b.Config()
	if err != nil {
		fail(err)
	}

	var gaz lingmap.Gazetteer
	optional := cfg.Coordinates != nil || cfg.HeatmapOnly
	t, err := loadGazetteer(optional)
	if errors.Is(err, config.ErrGazetteerNotConfigured) {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		exit(ExitConfigError)
	}
	if err != nil {
		fail(err)
	}
	if t != nil {
		gaz = t
	}

	art, err := lingmap.Build(cfg, gaz, lingmap.WithLogger(logger))
	if err != nil {
		fail(err)
	}

	if err := writeFile(output, func(w io.Writer) error {
		_, err := io.WriteString(w, art.HTML)
		return err
	}); err != nil {
		exitWithError(ExitError, "writing map: %v", err)
	}
	if geojsonPath != "" {
		data, err := art.GeoJSON()
		if err != nil {
			exitWithError(ExitError, "exporting GeoJSON: %v", err)
		}
		if err := os.WriteFile(geojsonPath, data, 0644); err != nil {
			exitWithError(ExitError, "writing GeoJSON: %v", err)
		}
	}

	printWarnings(art.Diagnostics)
	if output == "" || output == "-" {
		return
	}
	if humanOutput {
		outputHuman("Map written to %s (%d points)\n", output, len(art.Points))
		if geojsonPath != "" {
			outputHuman("Points written to %s\n", geojsonPath)
		}
		return
	}
	outputJSON(RenderResponse{
		Output:      output,
		GeoJSON:     geojsonPath,
		Points:      len(art.Points),
		Stage:       string(art.Stage),
		Diagnostics: art.Diagnostics,
	})
}
