package parsing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-search/internal/config"
	"github.com/jonathan/talent-search/internal/skills"
	"github.com/jonathan/talent-search/internal/types"
)

func testOptions() Options {
	return OptionsFromConfig(config.Default(), skills.NewNormalizer(skills.DefaultDictionary(), skills.DefaultFuzzyThreshold))
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestRuleParser_Parse(t *testing.T) {
	p := NewRuleParser(testOptions())

	tests := []struct {
		name  string
		query string
		want  *types.ParsedQuery
	}{
		{
			name:  "seniority, skill, city and open-ended years",
			query: "Senior Java developer in Pune with 5+ years",
			want: &types.ParsedQuery{
				Title: strp("Developer"), Seniority: strp("Senior"),
				MustHave: []string{"Java"}, AnyOf: []string{},
				Location: strp("Pune"), MinYears: intp(5), MaxYears: intp(100),
			},
		},
		{
			name:  "abbreviated seniority uses configured range",
			query: "Sr. Python engineer, Bangalore",
			want: &types.ParsedQuery{
				Title: strp("Engineer"), Seniority: strp("Senior"),
				MustHave: []string{"Python"}, AnyOf: []string{},
				Location: strp("Bangalore"), MinYears: intp(5), MaxYears: intp(10),
			},
		},
		{
			name:  "explicit years override seniority range",
			query: "jr react dev 2 years",
			want: &types.ParsedQuery{
				Seniority: strp("Junior"),
				MustHave:  []string{"React"}, AnyOf: []string{},
				MinYears: intp(2), MaxYears: intp(2),
			},
		},
		{
			name:  "separators, aliases and multi-word skills",
			query: "Machine Learning, k8s / golang | AWS; spring boot",
			want: &types.ParsedQuery{
				MustHave: []string{"Machine Learning", "Kubernetes", "Go", "AWS", "Spring Boot"},
				AnyOf:    []string{},
			},
		},
		{
			name:  "year range",
			query: "3-5 years data analyst",
			want: &types.ParsedQuery{
				Title:    strp("Analyst"),
				MustHave: []string{}, AnyOf: []string{},
				MinYears: intp(3), MaxYears: intp(5),
			},
		},
		{
			name:  "lead label",
			query: "Lead architect Mumbai",
			want: &types.ParsedQuery{
				Title: strp("Architect"), Seniority: strp("Lead"),
				MustHave: []string{}, AnyOf: []string{},
				Location: strp("Mumbai"), MinYears: intp(8), MaxYears: intp(15),
			},
		},
		{
			name:  "mid-level expands to mid",
			query: "mid-level QA",
			want: &types.ParsedQuery{
				Seniority: strp("Mid"),
				MustHave:  []string{}, AnyOf: []string{},
				MinYears: intp(3), MaxYears: intp(6),
			},
		},
		{
			name:  "entry level expands to fresher",
			query: "entry level candidates",
			want: &types.ParsedQuery{
				Seniority: strp("Fresher"),
				MustHave:  []string{}, AnyOf: []string{},
				MinYears: intp(0), MaxYears: intp(1),
			},
		},
		{
			name:  "duplicates collapse",
			query: "Java java JAVA",
			want:  &types.ParsedQuery{MustHave: []string{"Java"}, AnyOf: []string{}},
		},
		{
			name:  "empty query",
			query: "",
			want:  &types.ParsedQuery{MustHave: []string{}, AnyOf: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(context.Background(), tt.query)
			require.NoError(t, err)
			tt.want.RawQuery = tt.query
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleParser_SeniorityPriority(t *testing.T) {
	p := NewRuleParser(testOptions())

	q, err := p.Parse(context.Background(), "junior or senior engineers")
	require.NoError(t, err)
	require.NotNil(t, q.Seniority)
	assert.Equal(t, "Senior", *q.Seniority)
}

func TestRuleParser_SeniorityWordBoundary(t *testing.T) {
	p := NewRuleParser(testOptions())

	q, err := p.Parse(context.Background(), "seniority does not matter, misleading text")
	require.NoError(t, err)
	assert.Nil(t, q.Seniority)
	assert.Nil(t, q.MinYears)
}

func TestRuleParser_ExplicitYears(t *testing.T) {
	p := NewRuleParser(testOptions())

	tests := []struct {
		text   string
		lo, hi int
		ok     bool
	}{
		{"5+ years", 5, 100, true},
		{"5 + yrs", 5, 100, true},
		{"7 years", 7, 7, true},
		{"1 year", 1, 1, true},
		{"10yrs", 10, 10, true},
		{"2 to 4 years", 2, 4, true},
		{"6-3 years", 3, 6, true},
		{"no numbers", 0, 0, false},
		{"3 months", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			lo, hi, ok := p.ExplicitYears(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestRuleParser_ConfiguredCap(t *testing.T) {
	opts := testOptions()
	opts.MaxYearsCap = 40
	p := NewRuleParser(opts)

	q, err := p.Parse(context.Background(), "8+ years")
	require.NoError(t, err)
	assert.Equal(t, 8, *q.MinYears)
	assert.Equal(t, 40, *q.MaxYears)
}

func TestRuleParser_Deterministic(t *testing.T) {
	p := NewRuleParser(testOptions())
	query := "Senior Go / Kubernetes engineer Hyderabad 4+ yrs"

	first, err := p.Parse(context.Background(), query)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Parse(context.Background(), query)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
