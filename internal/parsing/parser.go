// Package parsing converts free-text recruiter queries into structured ParsedQuery filters.
//
// Two strategies implement Parser: RuleParser (deterministic, always available)
// and LLMParser (optional, network-dependent). Selector chooses between them.
package parsing

import (
	"context"
	"strings"

	"github.com/jonathan/talent-search/internal/config"
	"github.com/jonathan/talent-search/internal/skills"
	"github.com/jonathan/talent-search/internal/types"
)

// Parser converts a raw query into a ParsedQuery.
type Parser interface {
	Parse(ctx context.Context, raw string) (*types.ParsedQuery, error)
}

// Options carries the configuration shared by all parsers.
type Options struct {
	Normalizer  *skills.Normalizer
	Seniority   map[string]config.YearRange // lowercase label -> range
	MaxYearsCap int
	Cities      []string
}

// OptionsFromConfig builds parser options from the process configuration.
func OptionsFromConfig(cfg *config.Config, normalizer *skills.Normalizer) Options {
	return Options{
		Normalizer:  normalizer,
		Seniority:   cfg.ExperienceRanges,
		MaxYearsCap: cfg.MaxYearsCap,
		Cities:      cfg.Cities,
	}
}

func (o Options) withDefaults() Options {
	if o.Normalizer == nil {
		o.Normalizer = skills.NewNormalizer(nil, 0)
	}
	if o.Seniority == nil {
		o.Seniority = config.Default().ExperienceRanges
	}
	if o.MaxYearsCap <= 0 {
		o.MaxYearsCap = 100
	}
	return o
}

func (o Options) seniorityRange(label string) (config.YearRange, bool) {
	r, ok := o.Seniority[strings.ToLower(label)]
	return r, ok
}

// canonicalCity returns the configured spelling of a city, or the trimmed input.
func (o Options) canonicalCity(city string) string {
	city = strings.TrimSpace(city)
	for _, c := range o.Cities {
		if strings.EqualFold(c, city) {
			return c
		}
	}
	return city
}
