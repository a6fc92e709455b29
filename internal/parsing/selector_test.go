package parsing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorded struct{ strategy, outcome string }

type fakeRecorder struct{ calls []recorded }

func (f *fakeRecorder) ParseOutcome(strategy, outcome string) {
	f.calls = append(f.calls, recorded{strategy, outcome})
}

func TestSelector_LLMDisabled(t *testing.T) {
	rec := &fakeRecorder{}
	s := NewSelector(NewRuleParser(testOptions()), nil, time.Second, zap.NewNop(), rec)

	q, strategy := s.ParseWithStrategy(context.Background(), "Senior Java developer in Pune with 5+ years")
	assert.Equal(t, StrategyRules, strategy)
	assert.Equal(t, []string{"Java"}, q.MustHave)
	assert.Equal(t, []recorded{{StrategyRules, OutcomeOK}}, rec.calls)
}

func TestSelector_LLMResultSupersedes(t *testing.T) {
	rec := &fakeRecorder{}
	client := respond(`{"location":"Mumbai","must_have":["Python"],"min_years":2,"max_years":4}`)
	s := NewSelector(NewRuleParser(testOptions()), NewLLMParser(client, testOptions()), time.Second, zap.NewNop(), rec)

	q, strategy := s.ParseWithStrategy(context.Background(), "Senior Java developer in Pune")
	assert.Equal(t, StrategyLLM, strategy)
	assert.Equal(t, "Mumbai", *q.Location)
	assert.Equal(t, []string{"Python"}, q.MustHave)
	assert.Nil(t, q.Seniority, "no field-level merge with the rule result")
	assert.Equal(t, 2, *q.MinYears)
	assert.Equal(t, []recorded{{StrategyLLM, OutcomeOK}}, rec.calls)
}

func TestSelector_LLMFailureFallsBack(t *testing.T) {
	rec := &fakeRecorder{}
	client := &mockClient{generateJSON: func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	}}
	s := NewSelector(NewRuleParser(testOptions()), NewLLMParser(client, testOptions()), time.Second, zap.NewNop(), rec)

	q, err := s.Parse(context.Background(), "Senior Java developer in Pune")
	require.NoError(t, err)
	assert.Equal(t, "Pune", *q.Location)
	assert.Equal(t, []recorded{{StrategyLLM, OutcomeFallback}, {StrategyRules, OutcomeOK}}, rec.calls)
}

func TestSelector_LLMTimeoutFallsBack(t *testing.T) {
	client := &mockClient{generateJSON: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	s := NewSelector(NewRuleParser(testOptions()), NewLLMParser(client, testOptions()), 20*time.Millisecond, nil, nil)

	start := time.Now()
	q, strategy := s.ParseWithStrategy(context.Background(), "jr react dev")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, StrategyRules, strategy)
	assert.Equal(t, "Junior", *q.Seniority)
}

func TestSelector_BackfillsExplicitYears(t *testing.T) {
	client := respond(`{"title":"Developer","must_have":["Go"]}`)
	s := NewSelector(NewRuleParser(testOptions()), NewLLMParser(client, testOptions()), time.Second, nil, nil)

	q, strategy := s.ParseWithStrategy(context.Background(), "Go developer with 4+ years")
	assert.Equal(t, StrategyLLM, strategy)
	require.NotNil(t, q.MinYears)
	assert.Equal(t, 4, *q.MinYears)
	assert.Equal(t, 100, *q.MaxYears)
}
