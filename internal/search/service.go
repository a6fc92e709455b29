// Package search orchestrates one recruiter query: parse, then strict filter
// and semantic ranking in parallel, then fusion.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-search/internal/filtering"
	"github.com/jonathan/talent-search/internal/logging"
	"github.com/jonathan/talent-search/internal/ranking"
	"github.com/jonathan/talent-search/internal/types"
	"github.com/jonathan/talent-search/internal/vectorstore"
)

// EmptyQueryMessage is returned for blank queries.
const EmptyQueryMessage = "Enter a valid query"

const maxLoggedQuery = 200

// QueryParser turns raw text into a ParsedQuery and names the strategy used.
type QueryParser interface {
	ParseWithStrategy(ctx context.Context, raw string) (*types.ParsedQuery, string)
}

// SemanticRanker returns the most similar candidates for a query.
type SemanticRanker interface {
	Rank(ctx context.Context, query string, topK int) ([]types.SemanticHit, error)
}

// Recorder observes completed searches.
type Recorder interface {
	SearchCompleted(parser, strategy string, results int, elapsed time.Duration)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Parser   QueryParser
	Filter   *filtering.Filter
	Ranker   SemanticRanker
	Engine   *ranking.Engine
	Accessor ranking.Accessor
	TopK     int
	Logger   *zap.Logger
	Recorder Recorder
}

// Service answers search queries. It is safe for concurrent use.
type Service struct {
	parser   QueryParser
	filter   *filtering.Filter
	ranker   SemanticRanker
	engine   *ranking.Engine
	accessor ranking.Accessor
	topK     int
	logger   *zap.Logger
	recorder Recorder
}

// New creates a Service from d.
func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	topK := d.TopK
	if topK <= 0 {
		topK = 50
	}
	return &Service{
		parser:   d.Parser,
		filter:   d.Filter,
		ranker:   d.Ranker,
		engine:   d.Engine,
		accessor: d.Accessor,
		topK:     topK,
		logger:   logger,
		recorder: d.Recorder,
	}
}

// Search runs the full query pipeline. A blank query, or one with no
// matches, is answered with a message rather than an error. Candidate store
// and embedding store failures are returned as errors.
func (s *Service) Search(ctx context.Context, raw string) (*types.SearchResponse, error) {
	if strings.TrimSpace(raw) == "" {
		return &types.SearchResponse{Query: raw, Results: []types.ScoredResult{}, Message: EmptyQueryMessage}, nil
	}
	start := time.Now()

	parsed, parser := s.parser.ParseWithStrategy(ctx, raw)

	var subset *filtering.Subset
	var hits []types.SemanticHit

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subset, err = s.filter.Apply(gCtx, parsed)
		return err
	})
	g.Go(func() error {
		var err error
		hits, err = s.rank(gCtx, raw)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}

	outcome, err := s.engine.Fuse(ctx, parsed, subset, hits, s.accessor)
	if err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}

	elapsed := time.Since(start)
	s.logger.Info("search completed",
		zap.String("query", logging.Truncate(raw, maxLoggedQuery)),
		zap.String("parser", parser),
		zap.Int("subset", subset.Len()),
		zap.Bool("constrained", subset.Constrained),
		zap.Int("hits", len(hits)),
		zap.String("strategy", outcome.Strategy),
		zap.Int("results", len(outcome.Results)),
		zap.Duration("elapsed", elapsed),
	)
	if s.recorder != nil {
		s.recorder.SearchCompleted(parser, outcome.Strategy, len(outcome.Results), elapsed)
	}

	return &types.SearchResponse{
		Query:    raw,
		Parsed:   parsed,
		Results:  outcome.Results,
		Message:  outcome.Message,
		Strategy: outcome.Strategy,
		Parser:   parser,
	}, nil
}

// rank returns the semantic hits for raw. An unreadable embedding store is
// an error. Any other ranker failure, such as an unreachable embedding
// endpoint, degrades to no hits so the skill-only tiers can still answer.
func (s *Service) rank(ctx context.Context, raw string) ([]types.SemanticHit, error) {
	if s.ranker == nil {
		return nil, nil
	}
	hits, err := s.ranker.Rank(ctx, raw, s.topK)
	if errors.Is(err, vectorstore.ErrStoreUnavailable) {
		return nil, err
	}
	if err != nil {
		s.logger.Warn("semantic ranking failed, continuing without similarity scores",
			zap.String("query", logging.Truncate(raw, maxLoggedQuery)),
			zap.Error(err),
		)
		return nil, nil
	}
	return hits, nil
}
