// Package filtering turns a parsed query into the strict candidate subset that
// ranking is restricted to.
package filtering

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-search/internal/config"
	"github.com/jonathan/talent-search/internal/db"
	"github.com/jonathan/talent-search/internal/types"
)

// Querier is the part of db.Store the filter reads from.
type Querier interface {
	QueryCandidates(ctx context.Context, f db.CandidateFilter) ([]*types.Candidate, error)
}

// Subset is the result of applying the strict filter.
type Subset struct {
	// Rows are the matching candidates in store order.
	Rows []*types.Candidate
	// Constrained is true when at least one predicate was applied. An
	// unconstrained subset is the whole store.
	Constrained bool

	byID map[string]*types.Candidate
}

// NewSubset indexes rows by ID. Later duplicates are ignored.
func NewSubset(rows []*types.Candidate, constrained bool) *Subset {
	s := &Subset{
		Rows:        make([]*types.Candidate, 0, len(rows)),
		Constrained: constrained,
		byID:        make(map[string]*types.Candidate, len(rows)),
	}
	for _, c := range rows {
		if c == nil {
			continue
		}
		if _, dup := s.byID[c.ID]; dup {
			continue
		}
		s.byID[c.ID] = c
		s.Rows = append(s.Rows, c)
	}
	return s
}

// Len returns the number of candidates in the subset.
func (s *Subset) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Get returns the subset member with id.
func (s *Subset) Get(id string) (*types.Candidate, bool) {
	if s == nil {
		return nil, false
	}
	c, ok := s.byID[id]
	return c, ok
}

// IDs returns the member IDs in store order.
func (s *Subset) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.Rows))
	for i, c := range s.Rows {
		ids[i] = c.ID
	}
	return ids
}

// Filter builds and runs the strict pre-filter.
type Filter struct {
	store Querier
	cfg   config.FilterConfig
}

// New creates a Filter over store honoring the enforcement toggles in cfg.
func New(store Querier, cfg config.FilterConfig) *Filter {
	return &Filter{store: store, cfg: cfg}
}

// Build converts parsed into a store filter. Location and experience each
// contribute a predicate only when present and enforced. A missing upper
// bound yields an exact-years match.
func (f *Filter) Build(parsed *types.ParsedQuery) db.CandidateFilter {
	var cf db.CandidateFilter
	if parsed == nil {
		return cf
	}
	if f.cfg.EnforceStrictLocation && parsed.Location != nil && *parsed.Location != "" {
		loc := *parsed.Location
		cf.Location = &loc
	}
	if f.cfg.EnforceStrictExperience && parsed.MinYears != nil {
		lo := *parsed.MinYears
		cf.MinYears = &lo
		if parsed.MaxYears != nil {
			hi := *parsed.MaxYears
			cf.MaxYears = &hi
		}
	}
	return cf
}

// Apply runs the filter for parsed against the store.
func (f *Filter) Apply(ctx context.Context, parsed *types.ParsedQuery) (*Subset, error) {
	cf := f.Build(parsed)
	rows, err := f.store.QueryCandidates(ctx, cf)
	if err != nil {
		return nil, fmt.Errorf("failed to apply candidate filter: %w", err)
	}
	return NewSubset(rows, !cf.IsEmpty()), nil
}
