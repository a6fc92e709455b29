// Package ranking fuses semantic similarity, skill coverage and experience fit
// into one ordered, starred candidate list.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jonathan/talent-search/internal/config"
	"github.com/jonathan/talent-search/internal/filtering"
	"github.com/jonathan/talent-search/internal/skills"
	"github.com/jonathan/talent-search/internal/types"
)

// NoResultsMessage is reported when fusion yields nothing worth showing.
const NoResultsMessage = "No results found. Please refine your search."

// Accessor resolves candidates that are not in the strict subset.
// db.Store satisfies it.
type Accessor interface {
	GetCandidate(ctx context.Context, id string) (*types.Candidate, error)
	ListCandidates(ctx context.Context) ([]*types.Candidate, error)
}

// Weights are the fusion coefficients. They need not sum to 1.
type Weights struct {
	Semantic   float64
	Skill      float64
	Experience float64
}

// Options configure an Engine.
type Options struct {
	Weights Weights
	// MinRelevance drops results below it that also match no must-have skill.
	MinRelevance float64
	// EnforceMustHave drops candidates matching none of the requested skills.
	EnforceMustHave bool
	// Normalizer canonicalizes candidate and query skills before comparison.
	// Nil compares names case-insensitively as stored.
	Normalizer *skills.Normalizer
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, n *skills.Normalizer) Options {
	return Options{
		Weights: Weights{
			Semantic:   cfg.Scoring.SemanticWeight,
			Skill:      cfg.Scoring.SkillWeight,
			Experience: cfg.Scoring.ExperienceWeight,
		},
		MinRelevance:    cfg.Scoring.MinRelevanceThreshold,
		EnforceMustHave: cfg.Filters.EnforceMustHave,
		Normalizer:      n,
	}
}

// Outcome is the result of one fusion run.
type Outcome struct {
	Results []types.ScoredResult
	// Strategy names the tier that produced Results. Empty when every tier
	// came up empty.
	Strategy  string
	NoResults bool
	Message   string
}

// Engine runs the fusion tiers in order until one produces results.
type Engine struct {
	opts       Options
	strategies []Strategy
}

// NewEngine creates an Engine using DefaultStrategies.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts, strategies: DefaultStrategies()}
}

// Strategies returns the tier names in evaluation order.
func (e *Engine) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name
	}
	return names
}

// Fuse ranks candidates for parsed. subset is the strict filter result, hits
// the semantic ranking, and acc resolves candidates outside the subset.
// Store failures are returned; an empty ranking is reported through
// Outcome.NoResults rather than as an error.
func (e *Engine) Fuse(
	ctx context.Context,
	parsed *types.ParsedQuery,
	subset *filtering.Subset,
	hits []types.SemanticHit,
	acc Accessor,
) (*Outcome, error) {
	req := e.newRequest(parsed, subset, hits, acc)

	for _, s := range e.strategies {
		results, err := s.Run(ctx, e, req)
		if errors.Is(err, ErrTryNext) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fusion strategy %s failed: %w", s.Name, err)
		}
		return finalize(s.Name, results), nil
	}
	return &Outcome{Results: []types.ScoredResult{}, NoResults: true, Message: NoResultsMessage}, nil
}

// finalize sorts results by final score and assigns stars. A list whose
// final scores are all zero counts as no results.
func finalize(strategy string, results []types.ScoredResult) *Outcome {
	best := 0.0
	for _, r := range results {
		if r.FinalScore > best {
			best = r.FinalScore
		}
	}
	if len(results) == 0 || allZero(results) {
		return &Outcome{Results: []types.ScoredResult{}, Strategy: strategy, NoResults: true, Message: NoResultsMessage}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	for i := range results {
		results[i].Star = Stars(results[i].FinalScore, best)
	}
	return &Outcome{Results: results, Strategy: strategy}
}

func allZero(results []types.ScoredResult) bool {
	for _, r := range results {
		if r.FinalScore != 0 {
			return false
		}
	}
	return true
}

// request carries the per-call state shared by the strategies.
type request struct {
	parsed *types.ParsedQuery
	must   []string
	subset *filtering.Subset
	hits   []types.SemanticHit
	acc    Accessor
	keys   map[string]string
}

func (e *Engine) newRequest(parsed *types.ParsedQuery, subset *filtering.Subset, hits []types.SemanticHit, acc Accessor) *request {
	if parsed == nil {
		parsed = types.NewParsedQuery("")
	}
	req := &request{
		parsed: parsed,
		subset: subset,
		hits:   hits,
		acc:    acc,
		keys:   make(map[string]string),
	}
	seen := make(map[string]bool, len(parsed.MustHave))
	for _, s := range parsed.MustHave {
		k := e.key(req, s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		req.must = append(req.must, k)
	}
	return req
}

// key returns the comparison key for a raw skill name, memoized per request
// since fuzzy normalization is the expensive part of scoring.
func (e *Engine) key(req *request, raw string) string {
	if k, ok := req.keys[raw]; ok {
		return k
	}
	name := raw
	if e.opts.Normalizer != nil {
		name = e.opts.Normalizer.Normalize(raw)
	}
	k := skillKey(name)
	req.keys[raw] = k
	return k
}

func (e *Engine) skillSet(req *request, c *types.Candidate) map[string]bool {
	set := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		if k := e.key(req, s); k != "" {
			set[k] = true
		}
	}
	return set
}

// scoreFull computes every component for c. keep is false when the
// must-have rule or the relevance floor drops c.
func (e *Engine) scoreFull(req *request, c *types.Candidate, semantic float64) (types.ScoredResult, bool) {
	skill, matches := SkillScore(req.must, e.skillSet(req, c))
	exp := ExperienceScore(req.parsed.MinYears, req.parsed.MaxYears, c.ExperienceYears())
	final := FinalScore(e.opts.Weights, semantic, skill, exp)

	if e.dropForMustHave(req, matches) {
		return types.ScoredResult{}, false
	}
	if final < e.opts.MinRelevance && matches == 0 {
		return types.ScoredResult{}, false
	}
	return types.ScoredResult{
		Candidate:  c,
		Semantic:   semantic,
		SkillScore: skill,
		ExpScore:   exp,
		FinalScore: final,
	}, true
}

// scoreSkillOnly ranks c on skill coverage alone.
func (e *Engine) scoreSkillOnly(req *request, c *types.Candidate) (types.ScoredResult, bool) {
	skill, matches := SkillScore(req.must, e.skillSet(req, c))
	if e.dropForMustHave(req, matches) {
		return types.ScoredResult{}, false
	}
	return types.ScoredResult{
		Candidate:  c,
		SkillScore: skill,
		FinalScore: e.opts.Weights.Skill * skill,
	}, true
}

func (e *Engine) dropForMustHave(req *request, matches int) bool {
	return e.opts.EnforceMustHave && len(req.must) > 0 && matches == 0
}
