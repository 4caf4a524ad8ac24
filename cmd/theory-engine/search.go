package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/theory-engine/internal/search"
	"github.com/pdiddy/theory-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the literature the way the novelty stage does",
	Long: `Search sends a free-text query to OpenAlex, drops results at or below the
citation threshold, and prints the rest. --prompt prints the exact text the
novelty stage would show the model.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: bindCommandFlags(map[string]string{
		"result-limit":  "search.result_limit",
		"min-citations": "search.min_citations",
		"cache":         "search.cache_path",
	}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		searcher, closer, err := newSearcher(cfg.Search)
		if err != nil {
			return err
		}
		defer closer.Close()

		query := strings.Join(args, " ")
		results, err := searcher.Search(cmd.Context(), query, cfg.Search.ResultLimit)
		if err != nil {
			return err
		}
		format := "table"
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			format = "json"
		}
		if asPrompt, _ := cmd.Flags().GetBool("prompt"); asPrompt {
			format = "prompt"
		}
		return writeSearchResults(os.Stdout, results, cfg.Search.MinCitations, format)
	},
}

// writeSearchResults filters results by citations and writes them in the
// given format. The prompt format is exactly what the novelty stage shows
// the model, so it skips deduplication as that stage does.
func writeSearchResults(w io.Writer, results []types.SearchResult, minCitations int, format string) error {
	results = search.FilterByCitations(results, minCitations)
	if format == "prompt" {
		_, err := fmt.Fprintln(w, search.FormatResults(results))
		return err
	}

	results, dropped := search.Deduplicate(results)
	if dropped > 0 {
		logger.Debug("dropped duplicate results", "count", dropped)
	}
	if format == "json" {
		return search.FormatJSON(results, w)
	}
	search.FormatTable(results, w)
	return nil
}

func init() {
	searchCmd.Flags().Int("result-limit", 10, "works requested from OpenAlex")
	searchCmd.Flags().Int("min-citations", 50, "drop results at or below this citation count")
	searchCmd.Flags().String("cache", "", "SQLite file caching queries")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("prompt", false, "output results as the novelty prompt text")

	rootCmd.AddCommand(searchCmd)
}
