package parsing

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/talent-search/internal/types"
)

var abbreviations = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bsr\b\.?`), "senior"},
	{regexp.MustCompile(`(?i)\bjr\b\.?`), "junior"},
	{regexp.MustCompile(`(?i)\bmid[\s-]?level\b`), "mid"},
	{regexp.MustCompile(`(?i)\bentry[\s-]?level\b`), "fresher"},
	{regexp.MustCompile(`(?i)\bfreshers\b`), "fresher"},
	{regexp.MustCompile(`(?i)\btech(nical)?[\s-]?lead\b`), "lead"},
}

// seniorityPriority is the detection order; the first label found wins.
var seniorityPriority = []struct {
	label string
	re    *regexp.Regexp
}{
	{types.SenioritySenior, regexp.MustCompile(`(?i)\bsenior\b`)},
	{types.SeniorityJunior, regexp.MustCompile(`(?i)\bjunior\b`)},
	{types.SeniorityMid, regexp.MustCompile(`(?i)\bmid\b`)},
	{types.SeniorityLead, regexp.MustCompile(`(?i)\blead\b`)},
	{types.SeniorityFresher, regexp.MustCompile(`(?i)\bfresher\b`)},
}

var (
	yearsRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:-|to)\s*(\d{1,2})\s*(?:years?|yrs?)\b`)
	yearsPlusRe  = regexp.MustCompile(`(\d{1,2})\s*\+`)
	yearsExactRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:years?|yrs?)\b`)
	tokenSplitRe = regexp.MustCompile(`[\s,/;|]+`)
)

var titleVocabulary = []string{"developer", "engineer", "analyst", "manager", "architect"}

// RuleParser is the deterministic, offline query parser.
type RuleParser struct {
	opts Options
}

// NewRuleParser creates a RuleParser.
func NewRuleParser(opts Options) *RuleParser {
	return &RuleParser{opts: opts.withDefaults()}
}

// Parse never fails; fields it cannot infer are left nil or empty.
func (p *RuleParser) Parse(_ context.Context, raw string) (*types.ParsedQuery, error) {
	return p.parse(raw), nil
}

func (p *RuleParser) parse(raw string) *types.ParsedQuery {
	q := types.NewParsedQuery(raw)
	text := expandAbbreviations(raw)

	if label, ok := detectSeniority(text); ok {
		q.Seniority = types.StringPtr(label)
		if r, ok := p.opts.seniorityRange(label); ok {
			q.SetYears(r.Min, r.Max)
		}
	}

	if lo, hi, ok := p.ExplicitYears(text); ok {
		q.SetYears(lo, hi)
	}

	q.MustHave = p.skillTokens(raw)
	q.Title = detectTitle(text)
	q.Location = p.detectLocation(raw)
	return q
}

// ExplicitYears finds a numeric experience mention: "3-5 years" gives (3, 5),
// "5+ years" gives (5, cap), and "5 years" gives (5, 5).
func (p *RuleParser) ExplicitYears(text string) (lo, hi int, ok bool) {
	if m := yearsRangeRe.FindStringSubmatch(text); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if a > b {
			a, b = b, a
		}
		return a, b, true
	}
	if m := yearsPlusRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, max(n, p.opts.MaxYearsCap), true
	}
	if m := yearsExactRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, n, true
	}
	return 0, 0, false
}

func expandAbbreviations(text string) string {
	for _, a := range abbreviations {
		text = a.re.ReplaceAllString(text, a.repl)
	}
	return text
}

func detectSeniority(text string) (string, bool) {
	for _, s := range seniorityPriority {
		if s.re.MatchString(text) {
			return s.label, true
		}
	}
	return "", false
}

func detectTitle(text string) *string {
	lower := strings.ToLower(text)
	for _, t := range titleVocabulary {
		if strings.Contains(lower, t) {
			return types.StringPtr(strings.ToUpper(t[:1]) + t[1:])
		}
	}
	return nil
}

func (p *RuleParser) detectLocation(text string) *string {
	lower := strings.ToLower(text)
	for _, city := range p.opts.Cities {
		if city != "" && strings.Contains(lower, strings.ToLower(city)) {
			return types.StringPtr(city)
		}
	}
	return nil
}

// skillTokens keeps the query tokens the normalizer recognizes, in first-seen
// order. Adjacent token pairs are tried first so multi-word skills survive.
func (p *RuleParser) skillTokens(raw string) []string {
	var tokens []string
	for _, t := range tokenSplitRe.Split(raw, -1) {
		t = strings.TrimLeft(strings.TrimRight(t, ".!?:)\"'"), "(\"'")
		if utf8.RuneCountInString(t) >= 2 {
			tokens = append(tokens, t)
		}
	}

	out := []string{}
	seen := make(map[string]bool)
	add := func(s string) {
		k := strings.ToLower(s)
		if !seen[k] {
			seen[k] = true
			out = append(out, s)
		}
	}

	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) {
			if c, ok := p.opts.Normalizer.Lookup(tokens[i] + " " + tokens[i+1]); ok {
				add(c)
				i++
				continue
			}
		}
		if c, ok := p.opts.Normalizer.Canonical(tokens[i]); ok {
			add(c)
		}
	}
	return out
}
