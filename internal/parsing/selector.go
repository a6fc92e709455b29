package parsing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/types"
)

// Strategy names reported to the Recorder.
const (
	StrategyRules = "rules"
	StrategyLLM   = "llm"
)

// Outcome labels reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// Recorder observes which parser produced each query.
type Recorder interface {
	ParseOutcome(strategy, outcome string)
}

// Selector applies the parser selection policy: the LLM parser is tried when
// configured, under a timeout, and its result replaces the rule result whole.
// Any LLM failure falls back to the rule parser. Selector never returns an error.
type Selector struct {
	rules    *RuleParser
	llm      Parser
	timeout  time.Duration
	logger   *zap.Logger
	recorder Recorder
}

// NewSelector creates a Selector. A nil llmParser disables the LLM strategy.
func NewSelector(rules *RuleParser, llmParser Parser, timeout time.Duration, logger *zap.Logger, recorder Recorder) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Selector{rules: rules, llm: llmParser, timeout: timeout, logger: logger, recorder: recorder}
}

// Parse implements Parser.
func (s *Selector) Parse(ctx context.Context, raw string) (*types.ParsedQuery, error) {
	q, _ := s.ParseWithStrategy(ctx, raw)
	return q, nil
}

// ParseWithStrategy parses raw and reports which strategy produced the result.
func (s *Selector) ParseWithStrategy(ctx context.Context, raw string) (*types.ParsedQuery, string) {
	q, strategy := s.choose(ctx, raw)

	// Years stated in the text win even when the chosen parser missed them.
	if q.MinYears == nil {
		if lo, hi, ok := s.rules.ExplicitYears(expandAbbreviations(raw)); ok {
			q.SetYears(lo, hi)
		}
	}
	return q, strategy
}

func (s *Selector) choose(ctx context.Context, raw string) (*types.ParsedQuery, string) {
	if s.llm != nil {
		llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
		q, err := s.llm.Parse(llmCtx, raw)
		cancel()

		if err == nil && q != nil {
			s.record(StrategyLLM, OutcomeOK)
			return q, StrategyLLM
		}
		s.logger.Warn("llm query parsing failed, using rule parser",
			zap.String("query", raw),
			zap.Error(err),
		)
		s.record(StrategyLLM, OutcomeFallback)
	}

	q := s.rules.parse(raw)
	s.record(StrategyRules, OutcomeOK)
	return q, StrategyRules
}

func (s *Selector) record(strategy, outcome string) {
	if s.recorder != nil {
		s.recorder.ParseOutcome(strategy, outcome)
	}
}
