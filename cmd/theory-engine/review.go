package main

import (
	"os"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Refine novel ideas for scientific validity",
	Long: `Review runs the validity loop for at most --rounds rounds on every idea
marked novel and rewrites it in place. It refuses to start, before any model
call, when the archive holds no novel idea.`,
	PreRunE: bindCommandFlags(map[string]string{
		"rounds": "review.rounds",
	}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, cleanup, err := buildPipeline(cfg, stages{review: true}, os.Stdout)
		if err != nil {
			return err
		}
		defer cleanup()

		_, err = p.Review(cmd.Context())
		return err
	},
}

func init() {
	reviewCmd.Flags().Int("rounds", 5, "maximum validity refinement rounds per idea")

	rootCmd.AddCommand(reviewCmd)
}
