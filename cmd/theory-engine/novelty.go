package main

import (
	"os"

	"github.com/spf13/cobra"
)

var noveltyCmd = &cobra.Command{
	Use:   "novelty",
	Short: "Check archived ideas for novelty against the literature",
	Long: `Novelty visits every idea without a novelty decision. For at most --rounds
rounds the model either decides or issues a literature query; results with
more than --min-citations citations are shown back to it. Ideas that already
carry a decision are skipped, so re-running is safe.`,
	PreRunE: bindCommandFlags(map[string]string{
		"rounds":        "novelty.rounds",
		"result-limit":  "search.result_limit",
		"min-citations": "search.min_citations",
		"cache":         "search.cache_path",
	}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, cleanup, err := buildPipeline(cfg, stages{novelty: true}, os.Stdout)
		if err != nil {
			return err
		}
		defer cleanup()

		_, err = p.Novelty(cmd.Context())
		return err
	},
}

func init() {
	noveltyCmd.Flags().Int("rounds", 5, "maximum decide-or-query rounds per idea")
	noveltyCmd.Flags().Int("result-limit", 10, "works requested per literature query")
	noveltyCmd.Flags().Int("min-citations", 50, "drop results at or below this citation count")
	noveltyCmd.Flags().String("cache", "", "SQLite file caching literature queries")

	rootCmd.AddCommand(noveltyCmd)
}
