// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-search/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// PrintParsedQuery outputs the structured interpretation of a query.
func (p *Printer) PrintParsedQuery(q *types.ParsedQuery, parser string) {
	if q == nil {
		return
	}

	years := "-"
	if lo, hi, ok := q.YearBounds(); ok {
		years = fmt.Sprintf("%d-%d", lo, hi)
		if q.MaxYears == nil {
			years = fmt.Sprintf("%d (exact)", lo)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Query:     %s\n", q.RawQuery))
	if parser != "" {
		sb.WriteString(fmt.Sprintf("Parser:    %s\n", parser))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Title:     %s\n", orDash(q.Title)))
	sb.WriteString(fmt.Sprintf("Seniority: %s\n", orDash(q.Seniority)))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", orDash(q.Location)))
	sb.WriteString(fmt.Sprintf("Years:     %s\n", years))
	sb.WriteString(fmt.Sprintf("Must have: %s\n", listOrDash(q.MustHave)))
	sb.WriteString(fmt.Sprintf("Any of:    %s", listOrDash(q.AnyOf)))

	p.printBox("PARSED QUERY", sb.String())
}

// PrintResults outputs the top ranked candidates with their score breakdown.
func (p *Printer) PrintResults(resp *types.SearchResponse) {
	if resp == nil {
		return
	}
	if len(resp.Results) == 0 {
		msg := resp.Message
		if msg == "" {
			msg = "No results"
		}
		p.printBox("SEARCH RESULTS", msg)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Matched %d candidates", len(resp.Results)))
	if resp.Strategy != "" {
		sb.WriteString(fmt.Sprintf(" via %s", resp.Strategy))
	}
	sb.WriteString("\n\n")

	count := min(len(resp.Results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := resp.Results[i]
		name, location, years := "?", "-", "-"
		var skills []string
		if c := r.Candidate; c != nil {
			name, location, skills = c.Name, c.Location, c.Skills
			if location == "" {
				location = "-"
			}
			if c.Experience != nil {
				years = fmt.Sprintf("%dy", *c.Experience)
			}
		}
		sb.WriteString(fmt.Sprintf("#%d  %s  %s\n", i+1, name, stars(r.Star)))
		sb.WriteString(fmt.Sprintf("    %s, %s\n", location, years))
		sb.WriteString(fmt.Sprintf("    Final %.2f (sem %.2f, skill %.2f, exp %.2f)\n",
			r.FinalScore, r.Semantic, r.SkillScore, r.ExpScore))
		if len(skills) > 0 {
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", strings.Join(skills, ", ")))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(resp.Results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(resp.Results)-maxItemsToShow))
	}

	p.printBox("SEARCH RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidate outputs a stored candidate after ingestion.
func (p *Printer) PrintCandidate(c *types.Candidate, isNew bool) {
	if c == nil {
		return
	}
	status := "updated"
	if isNew {
		status = "created"
	}
	years := "-"
	if c.Experience != nil {
		years = fmt.Sprintf("%d", *c.Experience)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s (%s)\n", c.ID, status))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", c.Name))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", c.Email))
	sb.WriteString(fmt.Sprintf("Location: %s\n", c.Location))
	sb.WriteString(fmt.Sprintf("Years:    %s\n", years))
	sb.WriteString(fmt.Sprintf("Skills:   %s", listOrDash(c.Skills)))

	p.printBox("CANDIDATE", sb.String())
}

// stars renders a 0-5 rating rounded to the nearest half as filled and empty marks.
func stars(star float64) string {
	halves := int(star*2 + 0.5)
	halves = max(0, min(10, halves))
	full := halves / 2
	s := strings.Repeat("★", full)
	if halves%2 == 1 {
		s += "½"
	}
	s += strings.Repeat("☆", 5-full-halves%2)
	return fmt.Sprintf("%s %.2f", s, star)
}
