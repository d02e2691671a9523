package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/matsen/lingmap/internal/config"
	"github.com/matsen/lingmap/internal/dataset"
)

var fetchOutput string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download typological datasets",
	Long: `Download a typological dataset as a CSV table.

Without --output the table is written to stdout as CSV, or as a table with
--human. With --output a JSON summary is printed. Warnings and the citation
go to stderr.`,
}

func init() {
	fetchCmd.PersistentFlags().StringVarP(&fetchOutput, "output", "o", "", "Write the CSV table to this file")
	rootCmd.AddCommand(fetchCmd)
}

// FetchResponse is the response for fetch commands written to a file.
type FetchResponse struct {
	Source   string   `json:"source"`
	Output   string   `json:"output"`
	Rows     int      `json:"rows"`
	Columns  []string `json:"columns"`
	Warnings []string `json:"warnings,omitempty"`
	Citation string   `json:"citation"`
}

// fetchContext is cancelled on interrupt.
func fetchContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// runSource fetches from the source built by newSource and writes the result.
func runSource(newSource func(cfg *config.GlobalConfig, f *dataset.Fetcher) (dataset.Source, error)) {
	cfg := mustLoadGlobalConfig()
	fetcher, closeCache := newFetcher(cfg)
	defer closeCache()

	src, err := newSource(cfg, fetcher)
	if err != nil {
		closeCache()
		fail(err)
	}

	ctx, cancel := fetchContext()
	defer cancel()
	res, err := src.Fetch(ctx)
	if err != nil {
		closeCache()
		fail(err)
	}
	writeResult(src.Name(), res)
}

func writeResult(source string, res *dataset.Result) {
	printWarnings(res.Warnings)

	switch {
	case fetchOutput != "":
		if err := writeFile(fetchOutput, res.Table.WriteCSV); err != nil {
			exitWithError(ExitError, "writing %s: %v", fetchOutput, err)
		}
		if humanOutput {
			outputHuman("%d rows written to %s\n\n%s\n", res.Table.Len(), fetchOutput, res.Citation)
			return
		}
		outputJSON(FetchResponse{
			Source:   source,
			Output:   fetchOutput,
			Rows:     res.Table.Len(),
			Columns:  res.Table.Columns,
			Warnings: res.Warnings,
			Citation: res.Citation,
		})
	case humanOutput:
		renderTable(os.Stdout, res.Table)
		fmt.Fprintf(os.Stderr, "\n%s\n", res.Citation)
	default:
		if err := res.Table.WriteCSV(os.Stdout); err != nil {
			exitWithError(ExitError, "writing table: %v", err)
		}
		fmt.Fprintf(os.Stderr, "%s\n", res.Citation)
	}
}

// printList prints a list of names as JSON or one per line.
func printList(w io.Writer, key string, names []string) {
	if !humanOutput {
		outputJSON(map[string][]string{key: names})
		return
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}

// WALS

var (
	walsFeatures []string
	walsJoin     string
)

var fetchWalsCmd = &cobra.Command{
	Use:   "wals",
	Short: "Features from the World Atlas of Language Structures",
	Long: `Download WALS features and join them on the language columns.

Examples:
  lingmap fetch wals --features 1A,81A -o wals.csv
  lingmap fetch wals --features 1A --features 2A --join outer --human`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runSource(func(cfg *config.GlobalConfig, f *dataset.Fetcher) (dataset.Source, error) {
			how, err := dataset.ParseJoinHow(walsJoin)
			if err != nil {
				return nil, err
			}
			return &dataset.Wals{Fetcher: f, BaseURL: cfg.WalsURL, Features: walsFeatures, Join: how}, nil
		})
	},
}

// AUTOTYP

var (
	autotypTables  []string
	autotypStripNA []string
	autotypMapping string
)

var fetchAutotypCmd = &cobra.Command{
	Use:   "autotyp",
	Short: "Module tables from the AUTOTYP databases",
	Long: `Download AUTOTYP tables and join them on LID.

LIDs are mapped to glottocodes with a JSON mapping file and then to names
with the gazetteer, when one is configured.

Examples:
  lingmap fetch autotyp --tables Gender,Numeral_classifiers --mapping lid.json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runSource(func(cfg *config.GlobalConfig, f *dataset.Fetcher) (dataset.Source, error) {
			path := autotypMapping
			if path == "" {
				path = cfg.AutotypMappingPath
			}
			var mapping map[string]string
			if path != "" {
				var err error
				if mapping, err = dataset.LoadAutotypMappingFile(config.ExpandPath(path)); err != nil {
					return nil, err
				}
			}
			a := &dataset.Autotyp{Fetcher: f, BaseURL: cfg.AutotypURL, Tables: autotypTables, StripNA: autotypStripNA, Mapping: mapping}
			t, err := loadGazetteer(true)
			if err != nil {
				return nil, err
			}
			if t != nil {
				a.Names = t
			}
			return a, nil
		})
	},
}

// AfBo

var (
	afboFeatures []string
	afboList     bool
)

var fetchAfboCmd = &cobra.Command{
	Use:   "afbo",
	Short: "Borrowed affixes from AfBo",
	Long: `Download AfBo recipient/donor pairs with the requested affix features.

Examples:
  lingmap fetch afbo --list
  lingmap fetch afbo --features "adjective derivation" -o afbo.csv`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if afboList {
			cfg := mustLoadGlobalConfig()
			f, closeCache := newFetcher(cfg)
			defer closeCache()
			ctx, cancel := fetchContext()
			defer cancel()
			names, err := (&dataset.AfBo{Fetcher: f, URL: cfg.AfboURL}).Available(ctx)
			if err != nil {
				closeCache()
				fail(err)
			}
			printList(os.Stdout, "features", names)
			return
		}
		runSource(func(cfg *config.GlobalConfig, f *dataset.Fetcher) (dataset.Source, error) {
			return &dataset.AfBo{Fetcher: f, URL: cfg.AfboURL, Features: afboFeatures}, nil
		})
	},
}

// SAILS

var (
	sailsFeatures []string
	sailsList     bool
	sailsDescribe bool
)

var fetchSailsCmd = &cobra.Command{
	Use:   "sails",
	Short: "Features from South American Indigenous Language Structures",
	Long: `Download SAILS features, outer-joined on language and coordinates.

Examples:
  lingmap fetch sails --list
  lingmap fetch sails --describe --features ARG1
  lingmap fetch sails --features ARG1,ARG2 -o sails.csv`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if sailsList || sailsDescribe {
			cfg := mustLoadGlobalConfig()
			f, closeCache := newFetcher(cfg)
			defer closeCache()
			ctx, cancel := fetchContext()
			defer cancel()
			s := &dataset.Sails{Fetcher: f, URL: cfg.SailsURL}
			if sailsList {
				names, err := s.Available(ctx)
				if err != nil {
					closeCache()
					fail(err)
				}
				printList(os.Stdout, "features", names)
				return
			}
			t, err := s.Descriptions(ctx, sailsFeatures...)
			if err != nil {
				closeCache()
				fail(err)
			}
			writeResult(s.Name(), &dataset.Result{Table: t, Citation: dataset.SailsCitation})
			return
		}
		runSource(func(cfg *config.GlobalConfig, f *dataset.Fetcher) (dataset.Source, error) {
			return &dataset.Sails{Fetcher: f, URL: cfg.SailsURL, Features: sailsFeatures}, nil
		})
	},
}

// PHOIBLE

var (
	phoibleSubset     string
	phoibleAggregated bool
	phoibleStripNA    []string
)

var fetchPhoibleCmd = &cobra.Command{
	Use:   "phoible",
	Short: "Phonological inventories from PHOIBLE",
	Long: `Download PHOIBLE inventories, either one row per segment or one row per
inventory with segment counts (--aggregated).

Subsets: all, UPSID, SPA, AA, PH, GM, RA, SAPHON.

Examples:
  lingmap fetch phoible --subset UPSID --aggregated -o upsid.csv`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runSource(func(cfg *config.GlobalConfig, f *dataset.Fetcher) (dataset.Source, error) {
			return &dataset.Phoible{
				Fetcher:    f,
				BaseURL:    cfg.PhoibleURL,
				RawURL:     cfg.PhoibleRawURL,
				Subset:     phoibleSubset,
				Aggregated: phoibleAggregated,
				StripNA:    phoibleStripNA,
			}, nil
		})
	},
}

func init() {
	fetchWalsCmd.Flags().StringSliceVar(&walsFeatures, "features", nil, "WALS feature IDs (e.g. 1A,81A)")
	fetchWalsCmd.Flags().StringVar(&walsJoin, "join", string(dataset.JoinInner), "How to join features: inner or outer")
	_ = fetchWalsCmd.MarkFlagRequired("features")

	fetchAutotypCmd.Flags().StringSliceVar(&autotypTables, "tables", nil, "AUTOTYP module tables")
	fetchAutotypCmd.Flags().StringSliceVar(&autotypStripNA, "strip-na", nil, "Drop rows with no value in these columns")
	fetchAutotypCmd.Flags().StringVar(&autotypMapping, "mapping", "", "JSON file mapping LIDs to glottocodes (default: autotyp_mapping_path)")
	_ = fetchAutotypCmd.MarkFlagRequired("tables")

	fetchAfboCmd.Flags().StringSliceVar(&afboFeatures, "features", nil, "Affix features")
	fetchAfboCmd.Flags().BoolVar(&afboList, "list", false, "List the available features")

	fetchSailsCmd.Flags().StringSliceVar(&sailsFeatures, "features", nil, "SAILS feature IDs")
	fetchSailsCmd.Flags().BoolVar(&sailsList, "list", false, "List the available features")
	fetchSailsCmd.Flags().BoolVar(&sailsDescribe, "describe", false, "Describe the given features, or all")

	fetchPhoibleCmd.Flags().StringVar(&phoibleSubset, "subset", "all", "Contributing database")
	fetchPhoibleCmd.Flags().BoolVar(&phoibleAggregated, "aggregated", false, "One row per inventory with segment counts")
	fetchPhoibleCmd.Flags().StringSliceVar(&phoibleStripNA, "strip-na", nil, "Drop rows with no value in these columns")

	fetchCmd.AddCommand(fetchWalsCmd, fetchAutotypCmd, fetchAfboCmd, fetchSailsCmd, fetchPhoibleCmd)
}
