// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the theory-engine CLI.
//
// Each pipeline stage is a subcommand: generate, novelty, and review, with
// run chaining all three. show prints the archive and search queries the
// bibliographic backend directly.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/theory-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// logger is the CLI's stderr logger, configured from --log-level.
var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

// rootCmd is the base command for the theory-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "theory-engine",
	Short: "Generate, verify, and refine computational neuroscience hypotheses",
	Long: `theory-engine drives a language model through a staged pipeline that
produces three-level neuroscience hypotheses: a high-level theory, a mid-level
computational model, and a low-level biological mechanism.

generate creates ideas and refines them for coherence, novelty checks each
idea against the literature, and review refines novel ideas for scientific
validity. All stages share one JSON archive (<archive-dir>/ideas.json).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(viper.GetString("log_level"))
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logger.SetLevel(level)

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug("loaded secrets", "keys", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./theory-engine.yaml or ~/.config/theory-engine/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("archive-dir", "", "directory holding ideas.json")
	pf.String("prompts", "", "YAML file overriding the built-in prompt templates")
	pf.String("provider", "", "model provider: anthropic or openai")
	pf.String("model", "", "model identifier")
	pf.String("base-url", "", "model API base URL (OpenAI-compatible endpoints)")

	bindFlag(pf.Lookup("log-level"), "log_level")
	bindFlag(pf.Lookup("archive-dir"), "archive_dir")
	bindFlag(pf.Lookup("prompts"), "prompts_file")
	bindFlag(pf.Lookup("provider"), "ai.provider")
	bindFlag(pf.Lookup("model"), "ai.model")
	bindFlag(pf.Lookup("base-url"), "ai.base_url")

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("theory-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "theory-engine"))
		}
	}

	viper.SetEnvPrefix("THEORY_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
