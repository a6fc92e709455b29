// Package types provides type definitions for structured data used throughout the talent-search system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Candidate is a stored applicant profile built from one ingested resume.
// A candidate is identified by Email when present, otherwise by TextHash.
type Candidate struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Title      string    `json:"title,omitempty"`
	Location   string    `json:"location,omitempty"`
	Experience *int      `json:"experience"` // years; nil when unknown
	Skills     []string  `json:"skills"`     // canonical names, first-occurrence order
	RawText    string    `json:"raw_text,omitempty"`
	TextHash   string    `json:"text_hash"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// ExperienceYears returns the candidate's experience, treating unknown as zero.
func (c *Candidate) ExperienceYears() int {
	if c == nil || c.Experience == nil {
		return 0
	}
	return *c.Experience
}

// CandidateMetadata is the small per-candidate record kept next to an embedding.
type CandidateMetadata struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Job is a posting candidates can apply to.
type Job struct {
	ID       string   `json:"id" mapstructure:"id"`
	Title    string   `json:"title" mapstructure:"title"`
	Location string   `json:"location" mapstructure:"location"`
	Skills   []string `json:"skills" mapstructure:"skills"`
}
