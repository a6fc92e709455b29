package skills

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extractor finds canonical skills mentioned in free text.
type Extractor struct {
	order    []string
	synonyms map[string][]string
}

// NewExtractor builds an Extractor over dict.
func NewExtractor(dict *Dictionary) *Extractor {
	if dict == nil {
		dict = DefaultDictionary()
	}
	order, syns := dict.synonyms()
	return &Extractor{order: order, synonyms: syns}
}

// Extract returns the canonical skills found in text, ordered by their first
// word-bounded occurrence. Each skill appears at most once.
func (e *Extractor) Extract(text string) []string {
	norm := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if norm == "" {
		return []string{}
	}

	type hit struct {
		skill string
		pos   int
	}
	var hits []hit
	for _, canonical := range e.order {
		first := -1
		for _, syn := range e.synonyms[canonical] {
			if p := indexWord(norm, syn); p >= 0 && (first < 0 || p < first) {
				first = p
			}
		}
		if first >= 0 {
			hits = append(hits, hit{skill: canonical, pos: first})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.skill)
	}
	return out
}

// indexWord returns the byte offset of the first occurrence of word in s that
// is not adjacent to another word character, or -1.
func indexWord(s, word string) int {
	word = strings.Join(strings.Fields(word), " ")
	if word == "" {
		return -1
	}
	for from := 0; from <= len(s)-len(word); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(word)
		if !wordCharBefore(s, start) && !wordCharAt(s, end) {
			return start
		}
		from = start + 1
	}
	return -1
}

func wordCharBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordCharAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
