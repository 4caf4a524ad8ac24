// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "theory-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Provider selects the model API family.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// AIConfig holds settings for the model-invocation backend.
type AIConfig struct {
	// Provider is "anthropic" or "openai". Any OpenAI-compatible endpoint
	// (OpenRouter, DeepSeek) uses "openai" with BaseURL set.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the API endpoint. Empty uses the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	// Retries belong to the invocation backend; stages never retry.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxTokens caps each response (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Temperature is the sampling temperature (default 0.75).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
}

// SearchConfig holds settings for the bibliographic search backend.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ResultLimit is the number of works requested per query (default 10).
	ResultLimit int `json:"result_limit" yaml:"result_limit" mapstructure:"result_limit"`

	// MinCitations drops results at or below this citation count (default 50).
	MinCitations int `json:"min_citations" yaml:"min_citations" mapstructure:"min_citations"`

	// Email is sent to OpenAlex as mailto for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// CachePath is the SQLite query cache file. Empty disables caching.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty" mapstructure:"cache_path"`

	// CacheTTL is how long a cached query stays fresh (default 7 days).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// GenerationConfig holds settings for the generation stage.
type GenerationConfig struct {
	// NumIdeas is the number of generation attempts (default 10).
	NumIdeas int `json:"num_ideas" yaml:"num_ideas" mapstructure:"num_ideas"`

	// CoherenceRounds bounds the coherence refinement loop (default 5).
	CoherenceRounds int `json:"coherence_rounds" yaml:"coherence_rounds" mapstructure:"coherence_rounds"`
}

// NoveltyConfig holds settings for the novelty stage.
type NoveltyConfig struct {
	// Rounds bounds the decide-or-query loop per idea (default 5).
	Rounds int `json:"rounds" yaml:"rounds" mapstructure:"rounds"`
}

// ReviewConfig holds settings for the validity review stage.
type ReviewConfig struct {
	// Rounds bounds the validity refinement loop per idea (default 5).
	Rounds int `json:"rounds" yaml:"rounds" mapstructure:"rounds"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	// ArchiveDir holds ideas.json.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir" mapstructure:"archive_dir"`

	// PromptsFile optionally overrides the built-in prompt templates.
	PromptsFile string `json:"prompts_file,omitempty" yaml:"prompts_file,omitempty" mapstructure:"prompts_file"`

	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Novelty    NoveltyConfig    `json:"novelty" yaml:"novelty" mapstructure:"novelty"`
	Review     ReviewConfig     `json:"review" yaml:"review" mapstructure:"review"`
}

// Validate rejects settings no stage can run with.
func (c PipelineConfig) Validate() error {
	switch {
	case c.Search.ResultLimit <= 0:
		return fmt.Errorf("search.result_limit must be positive, got %d", c.Search.ResultLimit)
	case c.Search.MinCitations < 0:
		return fmt.Errorf("search.min_citations must not be negative, got %d", c.Search.MinCitations)
	case c.Generation.NumIdeas < 0:
		return fmt.Errorf("generation.num_ideas must not be negative, got %d", c.Generation.NumIdeas)
	case c.Generation.CoherenceRounds < 0, c.Novelty.Rounds < 0, c.Review.Rounds < 0:
		return fmt.Errorf("round limits must not be negative")
	}
	return nil
}

// DefaultPipelineConfig returns the configuration used when nothing is set.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ArchiveDir: "neuroscientist",
		AI: AIConfig{
			Provider:    ProviderAnthropic,
			Model:       "claude-sonnet-4-5-20250929",
			MaxRetries:  3,
			MaxTokens:   4096,
			Temperature: 0.75,
		},
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "theory-engine/0.1",
			},
			ResultLimit:  10,
			MinCitations: 50,
			CacheTTL:     7 * 24 * time.Hour,
		},
		Generation: GenerationConfig{NumIdeas: 10, CoherenceRounds: 5},
		Novelty:    NoveltyConfig{Rounds: 5},
		Review:     ReviewConfig{Rounds: 5},
	}
}
