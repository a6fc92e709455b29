package ranking

import (
	"math"
	"strings"
)

// SkillScore returns the fraction of must that appears in have, and the
// number of matches. Both lists must already be comparison keys (see
// skillKey). A query with no must-have skills scores 0.
func SkillScore(must []string, have map[string]bool) (float64, int) {
	if len(must) == 0 {
		return 0.0, 0
	}
	matches := 0
	for _, m := range must {
		if have[m] {
			matches++
		}
	}
	return float64(matches) / float64(len(must)), matches
}

// ExperienceScore rates years against the requested range. With no lower
// bound it is 0. A missing upper bound collapses the range to minYears.
// Inside the range scores 1; outside, the score decays linearly with the
// distance to the nearest bound, scaled by the range width (at least 1).
func ExperienceScore(minYears, maxYears *int, years int) float64 {
	if minYears == nil {
		return 0.0
	}
	lo := *minYears
	hi := lo
	if maxYears != nil {
		hi = *maxYears
	}
	if years >= lo && years <= hi {
		return 1.0
	}

	diff := math.Min(math.Abs(float64(years-lo)), math.Abs(float64(years-hi)))
	width := math.Max(1, float64(hi-lo))
	return math.Max(0, 1-diff/width)
}

// FinalScore is the weighted fusion of the three component scores.
func FinalScore(w Weights, semantic, skill, exp float64) float64 {
	return w.Semantic*semantic + w.Skill*skill + w.Experience*exp
}

// Stars rescales final against the best score in the same list to 0..5,
// rounded to two decimals.
func Stars(final, best float64) float64 {
	if best <= 0 {
		return 0
	}
	return round2(final / best * 5)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// skillKey is the comparison form of an already-normalized skill name.
func skillKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
