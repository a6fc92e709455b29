// Package db provides candidate storage backed by PostgreSQL or SQLite.
package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/talent-search/internal/types"
)

// Store persists candidates. Implementations are safe for concurrent use.
type Store interface {
	// UpsertCandidate inserts c, or updates the existing row matching c's email
	// (when set) or text hash. It returns the candidate ID and whether a new
	// row was created.
	UpsertCandidate(ctx context.Context, c *types.Candidate) (id string, isNew bool, err error)
	// GetCandidate returns the candidate with id, or nil when none exists.
	GetCandidate(ctx context.Context, id string) (*types.Candidate, error)
	// ListCandidates returns every candidate in insertion order.
	ListCandidates(ctx context.Context) ([]*types.Candidate, error)
	// QueryCandidates returns the candidates matching f in insertion order.
	QueryCandidates(ctx context.Context, f CandidateFilter) ([]*types.Candidate, error)
	Close() error
}

// Open connects to the store named by url: postgres://, postgresql://, or sqlite://path.
func Open(ctx context.Context, url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return NewPostgresStore(ctx, url)
	case strings.HasPrefix(url, "sqlite://"):
		return NewSQLiteStore(ctx, strings.TrimPrefix(url, "sqlite://"))
	default:
		return nil, fmt.Errorf("unsupported database url %q", url)
	}
}

// HashContent computes the SHA-256 hex digest used as the text dedupe key
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

const candidateColumns = `id, filename, name, email, phone, title, location, experience,
	skills_json, raw_text, text_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*types.Candidate, error) {
	var c types.Candidate
	var email *string
	var skillsJSON string
	if err := row.Scan(&c.ID, &c.Filename, &c.Name, &email, &c.Phone, &c.Title, &c.Location,
		&c.Experience, &skillsJSON, &c.RawText, &c.TextHash, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if email != nil {
		c.Email = *email
	}
	c.Skills = []string{}
	if skillsJSON != "" {
		if err := json.Unmarshal([]byte(skillsJSON), &c.Skills); err != nil {
			return nil, fmt.Errorf("failed to decode skills for candidate %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

// prepareCandidate fills derived fields before a write.
func prepareCandidate(c *types.Candidate, now time.Time) (skillsJSON string, email *string, err error) {
	if c.TextHash == "" {
		c.TextHash = HashContent(c.RawText)
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	b, err := json.Marshal(c.Skills)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode skills: %w", err)
	}
	c.Email = strings.TrimSpace(c.Email)
	if c.Email != "" {
		email = &c.Email
	}
	c.UpdatedAt = now
	return string(b), email, nil
}
