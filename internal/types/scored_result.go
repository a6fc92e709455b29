package types

// SemanticHit is one entry of a similarity ranking.
type SemanticHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// ScoredResult is a candidate scored against one query.
//
// Star is relative: it is FinalScore rescaled so that the best result in the
// same list gets 5.0. Stars from different queries are not comparable.
type ScoredResult struct {
	Candidate  *Candidate `json:"candidate"`
	Semantic   float64    `json:"semantic"`
	SkillScore float64    `json:"skill_score"`
	ExpScore   float64    `json:"exp_score"`
	FinalScore float64    `json:"final_score"`
	Star       float64    `json:"star"`
}

// SearchResponse is the payload returned for a search request.
type SearchResponse struct {
	Query   string         `json:"query"`
	Parsed  *ParsedQuery   `json:"parsed,omitempty"`
	Results []ScoredResult `json:"results"`
	Message string         `json:"message,omitempty"`
	// Strategy names the fusion tier that produced Results.
	Strategy string `json:"strategy,omitempty"`
	// Parser names the query parser that produced Parsed.
	Parser string `json:"parser,omitempty"`
}
