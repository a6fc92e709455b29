package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/talent-search/internal/types"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
		id          TEXT PRIMARY KEY,
		filename    TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL DEFAULT '',
		email       TEXT UNIQUE,
		phone       TEXT NOT NULL DEFAULT '',
		title       TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		experience  INTEGER,
		skills_json TEXT NOT NULL DEFAULT '[]',
		raw_text    TEXT NOT NULL DEFAULT '',
		text_hash   TEXT NOT NULL UNIQUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_location ON candidates (LOWER(location))`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_experience ON candidates (experience)`,
}

// PostgresStore implements Store on a PostgreSQL connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and ensures the schema exists
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// UpsertCandidate inserts or updates a candidate inside one transaction
func (s *PostgresStore) UpsertCandidate(ctx context.Context, c *types.Candidate) (string, bool, error) {
	now := time.Now().UTC()
	skillsJSON, email, err := prepareCandidate(c, now)
	if err != nil {
		return "", false, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	existingID, err := pgFindExisting(ctx, tx, email, c.TextHash)
	if err != nil {
		return "", false, err
	}

	isNew := existingID == ""
	if isNew {
		c.ID = uuid.New().String()
		c.CreatedAt = now
		_, err = tx.Exec(ctx,
			`INSERT INTO candidates (id, filename, name, email, phone, title, location, experience,
			                         skills_json, raw_text, text_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			c.ID, c.Filename, c.Name, email, c.Phone, c.Title, c.Location, c.Experience,
			skillsJSON, c.RawText, c.TextHash, c.CreatedAt, c.UpdatedAt,
		)
	} else {
		c.ID = existingID
		err = tx.QueryRow(ctx,
			`UPDATE candidates SET filename = $2, name = $3, email = $4, phone = $5, title = $6,
			        location = $7, experience = $8, skills_json = $9, raw_text = $10,
			        text_hash = $11, updated_at = $12
			 WHERE id = $1
			 RETURNING created_at`,
			c.ID, c.Filename, c.Name, email, c.Phone, c.Title, c.Location, c.Experience,
			skillsJSON, c.RawText, c.TextHash, c.UpdatedAt,
		).Scan(&c.CreatedAt)
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to upsert candidate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", false, fmt.Errorf("failed to commit candidate: %w", err)
	}
	return c.ID, isNew, nil
}

func pgFindExisting(ctx context.Context, tx pgx.Tx, email *string, textHash string) (string, error) {
	var id string
	if email != nil {
		err := tx.QueryRow(ctx, `SELECT id FROM candidates WHERE email = $1`, *email).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("failed to look up candidate by email: %w", err)
		}
	}
	err := tx.QueryRow(ctx, `SELECT id FROM candidates WHERE text_hash = $1`, textHash).Scan(&id)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return "", fmt.Errorf("failed to look up candidate by text hash: %w", err)
}

// GetCandidate retrieves a candidate by ID
func (s *PostgresStore) GetCandidate(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := scanCandidate(s.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns all candidates
func (s *PostgresStore) ListCandidates(ctx context.Context) ([]*types.Candidate, error) {
	return s.QueryCandidates(ctx, CandidateFilter{})
}

// QueryCandidates returns candidates matching f
func (s *PostgresStore) QueryCandidates(ctx context.Context, f CandidateFilter) ([]*types.Candidate, error) {
	where, args := f.where(dollar)
	rows, err := s.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates`+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var out []*types.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return out, nil
}
