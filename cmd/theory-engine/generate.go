package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new three-level ideas and refine them for coherence",
	Long: `Generate makes --num-ideas attempts. Each attempt asks the model for a
high-level theory, a mid-level model, and a low-level mechanism, then runs the
coherence loop for at most --rounds rounds. Successful ideas are appended to
the archive; failed attempts are logged and skipped.`,
	PreRunE: bindCommandFlags(map[string]string{
		"num-ideas": "generation.num_ideas",
		"rounds":    "generation.coherence_rounds",
	}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, cleanup, err := buildPipeline(cfg, stages{generate: true}, os.Stdout)
		if err != nil {
			return err
		}
		defer cleanup()

		batch, err := p.Generate(cmd.Context())
		if err != nil {
			return err
		}
		if batch.Generated() == 0 && batch.HasFailures() {
			return fmt.Errorf("all %d generation attempts failed", batch.Failed())
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().Int("num-ideas", 10, "number of generation attempts")
	generateCmd.Flags().Int("rounds", 5, "maximum coherence refinement rounds per idea")

	rootCmd.AddCommand(generateCmd)
}
