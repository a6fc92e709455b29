package types

// Seniority levels in ascending order.
const (
	SeniorityFresher = "Fresher"
	SeniorityJunior  = "Junior"
	SeniorityMid     = "Mid"
	SenioritySenior  = "Senior"
	SeniorityLead    = "Lead"
)

// SeniorityLevels lists the recognized levels from least to most senior.
var SeniorityLevels = []string{SeniorityFresher, SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityLead}

// ParsedQuery is the structured interpretation of one recruiter query.
// Optional scalars are pointers so that "absent" serializes as null.
type ParsedQuery struct {
	Title     *string  `json:"title"`
	Seniority *string  `json:"seniority"`
	MustHave  []string `json:"must_have"`
	AnyOf     []string `json:"any_of"`
	Location  *string  `json:"location"`
	MinYears  *int     `json:"min_years"`
	MaxYears  *int     `json:"max_years"`
	RawQuery  string   `json:"raw_query"`
}

// NewParsedQuery returns an empty ParsedQuery for raw with non-nil collections.
func NewParsedQuery(raw string) *ParsedQuery {
	return &ParsedQuery{
		MustHave: []string{},
		AnyOf:    []string{},
		RawQuery: raw,
	}
}

// HasYears reports whether a lower experience bound is set.
func (q *ParsedQuery) HasYears() bool {
	return q != nil && q.MinYears != nil
}

// YearBounds returns the experience range. A missing upper bound collapses to the lower bound.
func (q *ParsedQuery) YearBounds() (lo, hi int, ok bool) {
	if !q.HasYears() {
		return 0, 0, false
	}
	lo = *q.MinYears
	hi = lo
	if q.MaxYears != nil {
		hi = *q.MaxYears
	}
	return lo, hi, true
}

// SetYears sets both experience bounds, swapping them if given inverted.
func (q *ParsedQuery) SetYears(lo, hi int) {
	if hi < lo {
		lo, hi = hi, lo
	}
	q.MinYears = IntPtr(lo)
	q.MaxYears = IntPtr(hi)
}

// StringPtr returns a pointer to s, or nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
