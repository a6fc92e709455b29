package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.MaxYearsCap)
	assert.Equal(t, 0.5, cfg.Scoring.SemanticWeight)
	assert.Equal(t, 0.3, cfg.Scoring.SkillWeight)
	assert.Equal(t, 0.2, cfg.Scoring.ExperienceWeight)
	assert.Equal(t, 0.2, cfg.Scoring.MinRelevanceThreshold)
	assert.Equal(t, 50, cfg.Search.VectorTopK)
	assert.Equal(t, 0.85, cfg.Skills.FuzzyThreshold)
	assert.True(t, cfg.Filters.EnforceMustHave)
	assert.True(t, cfg.Filters.EnforceStrictLocation)
	assert.True(t, cfg.Filters.EnforceStrictExperience)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Contains(t, cfg.Cities, "Pune")

	senior, ok := cfg.SeniorityRange("Senior")
	require.True(t, ok)
	assert.Equal(t, YearRange{Min: 5, Max: 10}, senior)
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `
database:
  url: postgres://localhost/test
experience_ranges:
  Senior: {min: 6, max: 12}
cities: [Pune, Bangalore]
scoring:
  semantic_weight: 0.6
  skill_weight: 0.4
  experience_weight: 0
filters:
  enforce_strict_location: false
llm:
  enabled: true
  provider: ollama
  api_url: http://ollama:11434/api/generate
  timeout: 5s
jobs:
  - id: backend
    title: Backend Engineer
    location: Pune
    skills: [Go, PostgreSQL]
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/test", cfg.Database.URL)
	assert.Equal(t, []string{"Pune", "Bangalore"}, cfg.Cities)
	assert.Equal(t, 0.6, cfg.Scoring.SemanticWeight)
	assert.False(t, cfg.Filters.EnforceStrictLocation)
	assert.True(t, cfg.Filters.EnforceStrictExperience, "unset toggles keep their defaults")
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)

	senior, ok := cfg.SeniorityRange("senior")
	require.True(t, ok)
	assert.Equal(t, 6, senior.Min)
	assert.Equal(t, 12, senior.Max)

	job, ok := cfg.FindJob("backend")
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, job.Skills)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TALENT_SEARCH_VECTOR_TOP_K", "7")
	t.Setenv("TALENT_DATABASE_URL", "sqlite:///tmp/x.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.VectorTopK)
	assert.Equal(t, "sqlite:///tmp/x.db", cfg.Database.URL)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"negative weight", func(c *Config) { c.Scoring.SkillWeight = -1 }, "config error"},
		{"all weights zero", func(c *Config) {
			c.Scoring = ScoringConfig{}
		}, "must not all be zero"},
		{"inverted seniority range", func(c *Config) {
			c.ExperienceRanges["senior"] = YearRange{Min: 10, Max: 5}
		}, "config error"},
		{"zero top k", func(c *Config) { c.Search.VectorTopK = 0 }, "config error"},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "hf" }, "config error"},
		{"ollama without url", func(c *Config) {
			c.LLM.Enabled = true
			c.LLM.APIURL = ""
		}, "llm.api_url"},
		{"fuzzy threshold above one", func(c *Config) { c.Skills.FuzzyThreshold = 1.5 }, "config error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
