package main

import (
	"os"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run generate, novelty, and review in sequence",
	Long: `Run executes the full pipeline on one archive. Each stage saves the archive
before the next starts; a stage error stops the run. Round limits and search
settings come from the config file or environment.`,
	PreRunE: bindCommandFlags(map[string]string{
		"num-ideas": "generation.num_ideas",
	}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, cleanup, err := buildPipeline(cfg, stages{generate: true, novelty: true, review: true}, os.Stdout)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		if report.HasFailures() {
			logger.Warn("pipeline finished with failed ideas",
				"generation", report.Generation.Failed(),
				"novelty", report.Novelty.Failed,
				"review", report.Review.Failed)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Int("num-ideas", 10, "number of generation attempts")

	rootCmd.AddCommand(runCmd)
}
