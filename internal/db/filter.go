package db

import (
	"fmt"
	"strings"
)

// CandidateFilter is a conjunctive predicate over candidate rows. Nil fields
// are unconstrained.
type CandidateFilter struct {
	Location *string
	MinYears *int
	MaxYears *int // nil with MinYears set means exactly MinYears
}

// IsEmpty reports whether the filter applies no condition.
func (f CandidateFilter) IsEmpty() bool {
	return f.Location == nil && f.MinYears == nil
}

// placeholder renders the nth (1-based) bind parameter.
type placeholder func(n int) string

func dollar(n int) string { return fmt.Sprintf("$%d", n) }
func question(int) string { return "?" }

// where renders the filter as a SQL WHERE clause (empty when unconstrained).
func (f CandidateFilter) where(ph placeholder) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return ph(len(args))
	}

	if f.Location != nil {
		conds = append(conds, "LOWER(location) = LOWER("+next(*f.Location)+")")
	}
	if f.MinYears != nil {
		lo, hi := *f.MinYears, *f.MinYears
		if f.MaxYears != nil {
			hi = *f.MaxYears
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo == hi {
			conds = append(conds, "experience = "+next(lo))
		} else {
			conds = append(conds, "experience BETWEEN "+next(lo)+" AND "+next(hi))
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
