package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matsen/lingmap/internal/cache"
)

func init() {
	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the download cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached downloads",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c := mustOpenCache()
		defer c.Close()

		entries, err := c.List()
		if err != nil {
			c.Close()
			exitWithError(ExitError, "listing cache: %v", err)
		}
		if !humanOutput {
			outputJSON(entries)
			return
		}
		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"URL", "Bytes", "Fetched"})
		for _, e := range entries {
			tw.AppendRow(table.Row{e.URL, e.Size, e.FetchedAt.Format("2006-01-02 15:04")})
		}
		tw.SetStyle(table.StyleLight)
		tw.Render()
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached download",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c := mustOpenCache()
		defer c.Close()

		n, err := c.Purge()
		if err != nil {
			c.Close()
			exitWithError(ExitError, "purging cache: %v", err)
		}
		if humanOutput {
			outputHuman("Removed %d cached downloads\n", n)
		} else {
			outputJSON(map[string]int64{"removed": n})
		}
	},
}

// mustOpenCache opens the configured cache, exits on error.
func mustOpenCache() *cache.Cache {
	cfg := mustLoadGlobalConfig()
	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	return c
}
