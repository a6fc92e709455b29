package parsing

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/talent-search/internal/llm"
	"github.com/jonathan/talent-search/internal/prompts"
	"github.com/jonathan/talent-search/internal/schemas"
	"github.com/jonathan/talent-search/internal/types"
)

// llmQuery mirrors the JSON object the model is asked to return.
type llmQuery struct {
	Title     *string  `json:"title"`
	Seniority *string  `json:"seniority"`
	MustHave  []string `json:"must_have"`
	AnyOf     []string `json:"any_of"`
	Location  *string  `json:"location"`
	MinYears  *int     `json:"min_years"`
	MaxYears  *int     `json:"max_years"`
	RawQuery  *string  `json:"raw_query"`
}

// LLMParser asks a language model to fill in a ParsedQuery.
type LLMParser struct {
	client llm.Client
	opts   Options
}

// NewLLMParser creates an LLMParser backed by client.
func NewLLMParser(client llm.Client, opts Options) *LLMParser {
	return &LLMParser{client: client, opts: opts.withDefaults()}
}

// Parse returns an *APICallError when the model cannot be reached and a
// *ParseError when its output is not a conforming JSON object.
func (p *LLMParser) Parse(ctx context.Context, raw string) (*types.ParsedQuery, error) {
	prompt, err := p.buildPrompt(raw)
	if err != nil {
		return nil, &ParseError{Message: "failed to build prompt", Cause: err}
	}

	text, err := p.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate query filters", Cause: err}
	}

	obj := llm.ExtractJSONObject(llm.StripCodeFence(text))
	if obj == "" {
		return nil, &ParseError{Message: "no JSON object in model output"}
	}
	if err := schemas.ValidateParsedQuery([]byte(obj)); err != nil {
		return nil, &ParseError{Message: "model output does not match schema", Cause: err}
	}

	var out llmQuery
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return nil, &ParseError{Message: "failed to decode model output", Cause: err}
	}
	return p.sanitize(raw, &out), nil
}

func (p *LLMParser) buildPrompt(raw string) (string, error) {
	desc, err := prompts.Render(prompts.ParsingFile, prompts.ParseQueryKey, map[string]string{
		"Levels": strings.Join(types.SeniorityLevels, ", "),
	})
	if err != nil {
		return "", err
	}
	return llm.BuildExtractionPrompt(queryExtractionSchema(desc), raw), nil
}

func queryExtractionSchema(description string) llm.ExtractionSchema {
	return llm.ExtractionSchema{
		Name:        "ParsedQuery",
		Description: description,
		Fields: []llm.SchemaField{
			{Name: "title", Type: `"string" | null`, Description: "job title, e.g. Developer"},
			{Name: "seniority", Type: `"string" | null`},
			{Name: "must_have", Type: `["string"]`, Description: "required skills", Required: true},
			{Name: "any_of", Type: `["string"]`, Description: "optional skills"},
			{Name: "location", Type: `"string" | null`},
			{Name: "min_years", Type: "integer | null"},
			{Name: "max_years", Type: "integer | null"},
		},
	}
}

// sanitize applies the same conventions as RuleParser: non-nil collections,
// canonical skills, known seniority labels, and ordered year bounds.
func (p *LLMParser) sanitize(raw string, in *llmQuery) *types.ParsedQuery {
	q := types.NewParsedQuery(raw)

	if in.Title != nil {
		q.Title = types.StringPtr(strings.TrimSpace(*in.Title))
	}
	if in.Seniority != nil {
		q.Seniority = canonicalSeniority(*in.Seniority)
	}
	if in.Location != nil {
		q.Location = types.StringPtr(p.opts.canonicalCity(*in.Location))
	}

	q.MustHave = p.opts.Normalizer.NormalizeAll(in.MustHave)
	q.AnyOf = p.opts.Normalizer.NormalizeAll(in.AnyOf)

	switch {
	case in.MinYears != nil && in.MaxYears != nil:
		q.SetYears(*in.MinYears, *in.MaxYears)
	case in.MinYears != nil:
		q.MinYears = types.IntPtr(*in.MinYears)
	case in.MaxYears != nil:
		q.MaxYears = types.IntPtr(*in.MaxYears)
	}
	return q
}

func canonicalSeniority(s string) *string {
	s = strings.TrimSpace(s)
	for _, level := range types.SeniorityLevels {
		if strings.EqualFold(level, s) {
			return types.StringPtr(level)
		}
	}
	return nil
}
