package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/lingmap"
	"github.com/matsen/lingmap/internal/viz"
)

var (
	quickLanguages      []string
	quickFeatures       []string
	quickStrokeFeatures []string
	quickPopups         []string
	quickTooltips       []string
	quickStartLocation  string
	quickStartZoom      int
	quickMinimap        bool
	quickLegendTitle    string
	quickStrokeTitle    string
	quickTitle          string
	quickNumeric        bool
	quickControl        bool
	quickShapes         bool
	quickHeatmap        bool
	quickOutput         string
	quickGeoJSON        string
)

func init() {
	f := quickCmd.Flags()
	f.StringSliceVarP(&quickLanguages, "languages", "l", nil, "Languages to draw (comma separated or repeated)")
	f.StringSliceVarP(&quickFeatures, "features", "f", nil, "One feature value per language")
	f.StringSliceVar(&quickStrokeFeatures, "stroke-features", nil, "One stroke feature value per language")
	f.StringSliceVar(&quickPopups, "popups", nil, "One popup text per language")
	f.StringSliceVar(&quickTooltips, "tooltips", nil, "One tooltip per language")
	f.StringVar(&quickStartLocation, "start-location", "", `Region shortcut (e.g. "Caucasus") or "lat,lon"`)
	f.IntVar(&quickStartZoom, "start-zoom", -1, "Initial zoom level (0-18)")
	f.BoolVar(&quickMinimap, "minimap", false, "Add an overview minimap")
	f.StringVar(&quickLegendTitle, "legend-title", "", "Title of the feature legend")
	f.StringVar(&quickStrokeTitle, "stroke-legend-title", "", "Title of the stroke legend")
	f.StringVar(&quickTitle, "title", "", "Map title")
	f.BoolVar(&quickNumeric, "numeric", false, "Treat features as numbers and draw a colormap")
	f.BoolVar(&quickControl, "control", false, "Put each feature value in its own toggleable layer")
	f.BoolVar(&quickShapes, "shapes", false, "Draw features as shapes instead of colours")
	f.BoolVar(&quickHeatmap, "heatmap", false, "Add a density layer of the languages")
	f.StringVarP(&quickOutput, "output", "o", "", "Output HTML file (default: stdout)")
	f.StringVar(&quickGeoJSON, "geojson", "", "Also write the placed points as GeoJSON")
	_ = quickCmd.MarkFlagRequired("languages")
	rootCmd.AddCommand(quickCmd)
}

var quickCmd = &cobra.Command{
	Use:   "quick",
	Short: "Draw a map straight from flags",
	Long: `Draw a map of languages and one feature without writing a map description.

Examples:
  lingmap quick -l Adyghe,Russian,Kabardian -f SOV,SVO,SOV -o order.html
  lingmap quick -l Adyghe,Kabardian --start-location Caucasus --minimap -o caucasus.html
  lingmap quick -l Adyghe,Russian -f 3,12 --numeric --legend-title Vowels -o vowels.html`,
	Args: cobra.NoArgs,
	Run:  runQuick,
}

func runQuick(cmd *cobra.Command, args []string) {
	b, err := quickBuilder()
	if err != nil {
		fail(err)
	}
	buildAndWrite(b, quickOutput, quickGeoJSON)
}

func quickBuilder() (*lingmap.Builder, error) {
	b := lingmap.NewBuilder(quickLanguages...)

	if len(quickFeatures) > 0 {
		var opts []lingmap.FeatureOption
		if quickNumeric {
			opts = append(opts, lingmap.Numeric())
		}
		if quickControl {
			opts = append(opts, lingmap.Control())
		}
		if quickShapes {
			opts = append(opts, lingmap.UseShapes())
		}
		if err := b.AddFeatures(quickFeatures, opts...); err != nil {
			return nil, err
		}
	}
	if len(quickStrokeFeatures) > 0 {
		if err := b.AddStrokeFeatures(quickStrokeFeatures); err != nil {
			return nil, err
		}
	}
	if len(quickPopups) > 0 {
		if err := b.AddPopups(quickPopups, false); err != nil {
			return nil, err
		}
	}
	if len(quickTooltips) > 0 {
		if err := b.AddTooltips(quickTooltips); err != nil {
			return nil, err
		}
	}
	if quickStartLocation != "" {
		if err := setStartLocation(b, quickStartLocation); err != nil {
			return nil, err
		}
	}
	if quickStartZoom >= 0 {
		if err := b.SetStartZoom(quickStartZoom); err != nil {
			return nil, err
		}
	}
	if quickMinimap {
		if err := b.AddMinimap(viz.DefaultMinimap()); err != nil {
			return nil, err
		}
	}
	if quickHeatmap {
		if err := b.AddHeatmap(nil); err != nil {
			return nil, err
		}
	}
	if quickLegendTitle != "" {
		l := lingmap.DefaultLegend
		l.Title = quickLegendTitle
		b.SetLegend(l)
	}
	if quickStrokeTitle != "" {
		l := lingmap.DefaultStrokeLegend
		l.Title = quickStrokeTitle
		b.SetStrokeLegend(l)
	}
	b.SetTitle(quickTitle)
	return b, nil
}

// setStartLocation accepts a region shortcut or "lat,lon".
func setStartLocation(b *lingmap.Builder, s string) error {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return b.SetStartLocationShortcut(s)
	}
	c, err := geo.Parse(lat, lon)
	if err != nil {
		return fmt.Errorf("start location: %w", err)
	}
	return b.SetStartLocation(c)
}
