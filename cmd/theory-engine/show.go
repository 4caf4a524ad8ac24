package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/theory-engine/internal/archive"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the idea archive",
	Long: `Show prints every idea in the archive as a summary table, the archive JSON,
or a YAML export. --novel-only restricts output to ideas marked novel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ideas, err := archive.New(cfg.ArchiveDir).Load()
		if err != nil {
			return err
		}

		novelOnly, _ := cmd.Flags().GetBool("novel-only")
		if novelOnly {
			kept := ideas[:0]
			for _, idea := range ideas {
				if idea.IsNovel() {
					kept = append(kept, idea)
				}
			}
			ideas = kept
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "table":
			archive.FormatTable(os.Stdout, ideas)
			return nil
		case "json":
			data, err := archive.Encode(ideas)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, string(data))
			return err
		case "yaml":
			return archive.ExportYAML(os.Stdout, ideas)
		default:
			return fmt.Errorf("unknown format %q: use table, json, or yaml", format)
		}
	},
}

func init() {
	showCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	showCmd.Flags().Bool("novel-only", false, "show only ideas marked novel")

	rootCmd.AddCommand(showCmd)
}
