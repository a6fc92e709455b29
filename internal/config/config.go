// Package config provides configuration loading and validation for the search service and CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/talent-search/internal/types"
)

// EnvPrefix is the prefix for environment variable overrides (e.g. TALENT_DATABASE_URL).
const EnvPrefix = "TALENT"

// Config is the immutable process configuration. It is loaded once and passed
// explicitly into each component's constructor.
type Config struct {
	Database         DatabaseConfig       `mapstructure:"database"`
	Embeddings       EmbeddingsConfig     `mapstructure:"embeddings"`
	ExperienceRanges map[string]YearRange `mapstructure:"experience_ranges" validate:"dive"`
	MaxYearsCap      int                  `mapstructure:"max_years_cap" validate:"gt=0"`
	Cities           []string             `mapstructure:"cities"`
	Scoring          ScoringConfig        `mapstructure:"scoring"`
	Filters          FilterConfig         `mapstructure:"filters"`
	Search           SearchConfig         `mapstructure:"search"`
	Skills           SkillsConfig         `mapstructure:"skills"`
	LLM              LLMConfig            `mapstructure:"llm"`
	Server           ServerConfig         `mapstructure:"server"`
	RateLimit        RateLimitConfig      `mapstructure:"rate_limit"`
	Jobs             []types.Job          `mapstructure:"jobs"`
}

// DatabaseConfig selects the candidate store.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"` // postgres://... or sqlite://path
}

// EmbeddingsConfig configures the embedder and the flat vector store.
type EmbeddingsConfig struct {
	Provider         string        `mapstructure:"provider" validate:"oneof=hashing ollama gemini"`
	Model            string        `mapstructure:"model"`
	APIURL           string        `mapstructure:"api_url"`
	APIKey           string        `mapstructure:"api_key"`
	PersistDirectory string        `mapstructure:"persist_directory" validate:"required"`
	Dimensions       int           `mapstructure:"dimensions" validate:"gt=0"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// YearRange is an inclusive experience range in years.
type YearRange struct {
	Min int `mapstructure:"min" validate:"gte=0"`
	Max int `mapstructure:"max" validate:"gtefield=Min"`
}

// ScoringConfig holds fusion weights. Weights need not sum to 1.
type ScoringConfig struct {
	SemanticWeight        float64 `mapstructure:"semantic_weight" validate:"gte=0"`
	SkillWeight           float64 `mapstructure:"skill_weight" validate:"gte=0"`
	ExperienceWeight      float64 `mapstructure:"experience_weight" validate:"gte=0"`
	MinRelevanceThreshold float64 `mapstructure:"min_relevance_threshold" validate:"gte=0"`
}

// FilterConfig toggles strict enforcement.
type FilterConfig struct {
	EnforceMustHave         bool `mapstructure:"enforce_must_have"`
	EnforceStrictLocation   bool `mapstructure:"enforce_strict_location"`
	EnforceStrictExperience bool `mapstructure:"enforce_strict_experience"`
}

// SearchConfig holds semantic retrieval settings.
type SearchConfig struct {
	VectorTopK int `mapstructure:"vector_top_k" validate:"gt=0"`
}

// SkillsConfig locates the skills dictionary and tunes fuzzy matching.
type SkillsConfig struct {
	DictionaryPath string  `mapstructure:"dictionary_path"`
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" validate:"gt=0,lte=1"`
}

// LLMConfig configures the optional LLM-backed query parser.
type LLMConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Provider  string        `mapstructure:"provider" validate:"oneof=ollama gemini"`
	APIURL    string        `mapstructure:"api_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxTokens int           `mapstructure:"max_tokens" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"gt=0,lte=65535"`
}

// RateLimitConfig configures HTTP request limiting. Per-route limits are
// built in; these settings cover everything else.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit" validate:"gte=0"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// Load reads configuration from path (YAML or JSON) layered over defaults and
// TALENT_* environment variables. An empty path uses defaults and env only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.ExperienceRanges = normalizeRangeKeys(cfg.ExperienceRanges)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are static and always decode.
	_ = v.Unmarshal(&cfg)
	cfg.ExperienceRanges = normalizeRangeKeys(cfg.ExperienceRanges)
	return &cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Scoring.SemanticWeight+c.Scoring.SkillWeight+c.Scoring.ExperienceWeight <= 0 {
		return fmt.Errorf("config error: scoring weights must not all be zero")
	}
	if c.LLM.Enabled && c.LLM.Provider == "ollama" && c.LLM.APIURL == "" {
		return fmt.Errorf("config error: llm.api_url is required for the ollama provider")
	}
	return nil
}

// SeniorityRange returns the configured year range for a seniority label (case-insensitive).
func (c *Config) SeniorityRange(label string) (YearRange, bool) {
	r, ok := c.ExperienceRanges[strings.ToLower(label)]
	return r, ok
}

// FindJob returns the configured job with the given ID.
func (c *Config) FindJob(id string) (types.Job, bool) {
	for _, j := range c.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return types.Job{}, false
}

// normalizeRangeKeys lowercases seniority keys; viper already does this for
// file-sourced maps but struct literals in tests may not.
func normalizeRangeKeys(in map[string]YearRange) map[string]YearRange {
	out := make(map[string]YearRange, len(in))
	for k, r := range in {
		out[strings.ToLower(k)] = r
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "sqlite://data/candidates.db")

	v.SetDefault("embeddings.provider", "hashing")
	v.SetDefault("embeddings.model", "")
	v.SetDefault("embeddings.api_url", "http://localhost:11434/api/embeddings")
	v.SetDefault("embeddings.api_key", "")
	v.SetDefault("embeddings.persist_directory", "data/vectors")
	v.SetDefault("embeddings.dimensions", 256)
	v.SetDefault("embeddings.timeout", 30*time.Second)

	v.SetDefault("experience_ranges", map[string]any{
		"fresher": map[string]any{"min": 0, "max": 1},
		"junior":  map[string]any{"min": 1, "max": 3},
		"mid":     map[string]any{"min": 3, "max": 6},
		"senior":  map[string]any{"min": 5, "max": 10},
		"lead":    map[string]any{"min": 8, "max": 15},
	})
	v.SetDefault("max_years_cap", 100)
	v.SetDefault("cities", []string{
		"Pune", "Bangalore", "Bengaluru", "Mumbai", "Hyderabad", "Chennai",
		"Delhi", "Noida", "Gurgaon", "Kolkata", "Ahmedabad",
	})

	v.SetDefault("scoring.semantic_weight", 0.5)
	v.SetDefault("scoring.skill_weight", 0.3)
	v.SetDefault("scoring.experience_weight", 0.2)
	v.SetDefault("scoring.min_relevance_threshold", 0.2)

	v.SetDefault("filters.enforce_must_have", true)
	v.SetDefault("filters.enforce_strict_location", true)
	v.SetDefault("filters.enforce_strict_experience", true)

	v.SetDefault("search.vector_top_k", 50)

	v.SetDefault("skills.dictionary_path", "")
	v.SetDefault("skills.fuzzy_threshold", 0.85)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.api_url", "http://localhost:11434/api/generate")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama3")
	v.SetDefault("llm.timeout", 20*time.Second)
	v.SetDefault("llm.max_tokens", 256)

	v.SetDefault("server.port", 8080)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})

	v.SetDefault("jobs", []map[string]any{
		{"id": "job1", "title": "Senior Java Developer", "location": "Pune", "skills": []string{"Java", "Spring Boot", "AWS"}},
		{"id": "job2", "title": "Data Scientist", "location": "Bangalore", "skills": []string{"Python", "TensorFlow", "PyTorch"}},
	})
}
