package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/talent-search/internal/types"
)

// ErrTryNext is returned by a Strategy that does not apply or found nothing.
var ErrTryNext = errors.New("try next strategy")

// Tier names, in default evaluation order.
const (
	StrategyStrictSemantic  = "strict-semantic"
	StrategyStrictSkillOnly = "strict-skill-only"
	StrategyOpenSemantic    = "open-semantic"
	StrategyOpenSkillOnly   = "open-skill-only"
)

// Strategy is one fusion tier. Run returns a non-empty result list or
// ErrTryNext; any other error aborts fusion.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, e *Engine, req *request) ([]types.ScoredResult, error)
}

// DefaultStrategies returns the fallback chain. The strict tiers apply when
// the filter returned candidates; the open tiers only when it returned none.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyStrictSemantic, Run: strictSemantic},
		{Name: StrategyStrictSkillOnly, Run: strictSkillOnly},
		{Name: StrategyOpenSemantic, Run: openSemantic},
		{Name: StrategyOpenSkillOnly, Run: openSkillOnly},
	}
}

func strictSemantic(_ context.Context, e *Engine, req *request) ([]types.ScoredResult, error) {
	if req.subset.Len() == 0 {
		return nil, ErrTryNext
	}
	out := make([]types.ScoredResult, 0)
	seen := make(map[string]bool)
	for _, hit := range req.hits {
		if seen[hit.ID] {
			continue
		}
		c, ok := req.subset.Get(hit.ID)
		if !ok {
			continue
		}
		seen[hit.ID] = true
		if r, keep := e.scoreFull(req, c, hit.Score); keep {
			out = append(out, r)
		}
	}
	return nonEmpty(out)
}

func strictSkillOnly(_ context.Context, e *Engine, req *request) ([]types.ScoredResult, error) {
	if req.subset.Len() == 0 {
		return nil, ErrTryNext
	}
	return e.skillOnly(req, req.subset.Rows)
}

func openSemantic(ctx context.Context, e *Engine, req *request) ([]types.ScoredResult, error) {
	if req.subset.Len() > 0 {
		return nil, ErrTryNext
	}
	if req.acc == nil {
		return nil, errors.New("no candidate accessor")
	}
	out := make([]types.ScoredResult, 0)
	seen := make(map[string]bool)
	for _, hit := range req.hits {
		if seen[hit.ID] {
			continue
		}
		seen[hit.ID] = true
		c, err := req.acc.GetCandidate(ctx, hit.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate %s: %w", hit.ID, err)
		}
		if c == nil {
			continue
		}
		if r, keep := e.scoreFull(req, c, hit.Score); keep {
			out = append(out, r)
		}
	}
	return nonEmpty(out)
}

func openSkillOnly(ctx context.Context, e *Engine, req *request) ([]types.ScoredResult, error) {
	if req.subset.Len() > 0 {
		return nil, ErrTryNext
	}
	if req.acc == nil {
		return nil, errors.New("no candidate accessor")
	}
	all, err := req.acc.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return e.skillOnly(req, all)
}

func (e *Engine) skillOnly(req *request, candidates []*types.Candidate) ([]types.ScoredResult, error) {
	out := make([]types.ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if r, keep := e.scoreSkillOnly(req, c); keep {
			out = append(out, r)
		}
	}
	return nonEmpty(out)
}

func nonEmpty(out []types.ScoredResult) ([]types.ScoredResult, error) {
	if len(out) == 0 {
		return nil, ErrTryNext
	}
	return out, nil
}
