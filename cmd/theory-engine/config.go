// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/theory-engine/internal/secrets"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// setDefaults registers every config key so that environment variables and
// config files are visible to viper.Unmarshal.
func setDefaults() {
	d := types.DefaultPipelineConfig()

	viper.SetDefault("log_level", "info")
	viper.SetDefault("archive_dir", d.ArchiveDir)
	viper.SetDefault("prompts_file", d.PromptsFile)

	viper.SetDefault("ai.provider", string(d.AI.Provider))
	viper.SetDefault("ai.model", d.AI.Model)
	viper.SetDefault("ai.base_url", d.AI.BaseURL)
	viper.SetDefault("ai.api_key", d.AI.APIKey)
	viper.SetDefault("ai.max_retries", d.AI.MaxRetries)
	viper.SetDefault("ai.max_tokens", d.AI.MaxTokens)
	viper.SetDefault("ai.temperature", d.AI.Temperature)

	viper.SetDefault("search.timeout", d.Search.Timeout)
	viper.SetDefault("search.user_agent", d.Search.UserAgent)
	viper.SetDefault("search.result_limit", d.Search.ResultLimit)
	viper.SetDefault("search.min_citations", d.Search.MinCitations)
	viper.SetDefault("search.email", d.Search.Email)
	viper.SetDefault("search.cache_path", d.Search.CachePath)
	viper.SetDefault("search.cache_ttl", d.Search.CacheTTL)

	viper.SetDefault("generation.num_ideas", d.Generation.NumIdeas)
	viper.SetDefault("generation.coherence_rounds", d.Generation.CoherenceRounds)
	viper.SetDefault("novelty.rounds", d.Novelty.Rounds)
	viper.SetDefault("review.rounds", d.Review.Rounds)
}

func bindFlag(f *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", f.Name, err))
	}
}

// bindCommandFlags binds a command's local flags to config keys. It runs at
// execution time so that commands sharing a key do not overwrite each
// other's binding.
func bindCommandFlags(keys map[string]string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for name, key := range keys {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
		return nil
	}
}

// loadConfig resolves the pipeline configuration from defaults, config
// file, environment, and flags, then fills API credentials from secrets.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	switch cfg.AI.Provider {
	case types.ProviderAnthropic:
		cfg.AI.APIKey = loadedSecrets.Get(secrets.AnthropicAPIKey, cfg.AI.APIKey)
	case types.ProviderOpenAI:
		key := secrets.OpenAIAPIKey
		if cfg.AI.BaseURL != "" && loadedSecrets[secrets.OpenRouterAPIKey] != "" {
			key = secrets.OpenRouterAPIKey
		}
		cfg.AI.APIKey = loadedSecrets.Get(key, cfg.AI.APIKey)
	default:
		return cfg, fmt.Errorf("unknown provider %q", cfg.AI.Provider)
	}
	cfg.Search.Email = loadedSecrets.Get(secrets.OpenAlexEmail, cfg.Search.Email)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
