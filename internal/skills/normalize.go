package skills

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultFuzzyThreshold is the minimum similarity ratio for a fuzzy match.
const DefaultFuzzyThreshold = 0.85

// Normalizer maps raw skill strings to canonical names using an alias table,
// exact canonical matches, and fuzzy matching against canonical names.
// A Normalizer is read-only after construction and safe for concurrent use.
type Normalizer struct {
	aliases   map[string]string // lowercase spelling -> canonical
	canonical []string
	lowered   [][]string // canonical names as lowercase rune sequences
	threshold float64
}

// NewNormalizer builds a Normalizer from dict. A threshold outside (0, 1]
// falls back to DefaultFuzzyThreshold.
func NewNormalizer(dict *Dictionary, threshold float64) *Normalizer {
	if dict == nil {
		dict = DefaultDictionary()
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}

	n := &Normalizer{
		aliases:   make(map[string]string),
		threshold: threshold,
	}

	order, syns := dict.synonyms()
	for _, canonical := range order {
		n.canonical = append(n.canonical, canonical)
		n.lowered = append(n.lowered, runes(strings.ToLower(canonical)))
		for _, s := range syns[canonical] {
			if _, taken := n.aliases[s]; !taken {
				n.aliases[s] = canonical
			}
		}
	}
	return n
}

// Canonical resolves raw to a canonical skill name. The boolean reports
// whether raw was recognized by alias, exact name, or fuzzy match.
func (n *Normalizer) Canonical(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	if c, ok := n.aliases[key]; ok {
		return c, true
	}
	if c, ok := n.closest(key); ok {
		return c, true
	}
	return "", false
}

// Lookup resolves raw by alias or exact canonical name only, without fuzzy matching.
func (n *Normalizer) Lookup(raw string) (string, bool) {
	c, ok := n.aliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// Normalize returns the canonical name for raw, or the trimmed input when
// nothing matches. Empty input yields "".
func (n *Normalizer) Normalize(raw string) string {
	if c, ok := n.Canonical(raw); ok {
		return c
	}
	return strings.TrimSpace(raw)
}

// NormalizeAll normalizes each entry, drops empties, and removes duplicates
// keeping first occurrence.
func (n *Normalizer) NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		s := n.Normalize(r)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

// Skills returns the canonical skill names in dictionary order.
func (n *Normalizer) Skills() []string {
	out := make([]string, len(n.canonical))
	copy(out, n.canonical)
	return out
}

// closest returns the canonical name most similar to key when its ratio
// reaches the threshold. Ties keep the earlier dictionary entry.
func (n *Normalizer) closest(key string) (string, bool) {
	m := difflib.NewMatcher(nil, runes(key))
	best, bestIdx := 0.0, -1
	for i, cand := range n.lowered {
		m.SetSeq1(cand)
		if m.RealQuickRatio() < n.threshold || m.QuickRatio() < n.threshold {
			continue
		}
		if r := m.Ratio(); r >= n.threshold && r > best {
			best, bestIdx = r, i
		}
	}
	if bestIdx < 0 {
		return "", false
	}
	return n.canonical[bestIdx], true
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
