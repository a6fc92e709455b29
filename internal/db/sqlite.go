package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jonathan/talent-search/internal/types"
)

var sqliteSchema = []string{
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
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_location ON candidates (LOWER(location))`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_experience ON candidates (experience)`,
}

// SQLiteStore implements Store on an embedded SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures the schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertCandidate inserts or updates a candidate inside one transaction.
func (s *SQLiteStore) UpsertCandidate(ctx context.Context, c *types.Candidate) (string, bool, error) {
	now := time.Now().UTC()
	skillsJSON, email, err := prepareCandidate(c, now)
	if err != nil {
		return "", false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existingID, err := sqliteFindExisting(ctx, tx, email, c.TextHash)
	if err != nil {
		return "", false, err
	}

	isNew := existingID == ""
	if isNew {
		c.ID = uuid.New().String()
		c.CreatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO candidates (id, filename, name, email, phone, title, location, experience,
			                         skills_json, raw_text, text_hash, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Filename, c.Name, email, c.Phone, c.Title, c.Location, c.Experience,
			skillsJSON, c.RawText, c.TextHash, c.CreatedAt, c.UpdatedAt,
		)
	} else {
		c.ID = existingID
		_, err = tx.ExecContext(ctx,
			`UPDATE candidates SET filename = ?, name = ?, email = ?, phone = ?, title = ?,
			        location = ?, experience = ?, skills_json = ?, raw_text = ?,
			        text_hash = ?, updated_at = ?
			 WHERE id = ?`,
			c.Filename, c.Name, email, c.Phone, c.Title, c.Location, c.Experience,
			skillsJSON, c.RawText, c.TextHash, c.UpdatedAt, c.ID,
		)
		if err == nil {
			err = tx.QueryRowContext(ctx, `SELECT created_at FROM candidates WHERE id = ?`, c.ID).Scan(&c.CreatedAt)
		}
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to upsert candidate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("failed to commit candidate: %w", err)
	}
	return c.ID, isNew, nil
}

func sqliteFindExisting(ctx context.Context, tx *sql.Tx, email *string, textHash string) (string, error) {
	var id string
	if email != nil {
		err := tx.QueryRowContext(ctx, `SELECT id FROM candidates WHERE email = ?`, *email).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("failed to look up candidate by email: %w", err)
		}
	}
	err := tx.QueryRowContext(ctx, `SELECT id FROM candidates WHERE text_hash = ?`, textHash).Scan(&id)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return "", fmt.Errorf("failed to look up candidate by text hash: %w", err)
}

// GetCandidate retrieves a candidate by ID, or nil when absent.
func (s *SQLiteStore) GetCandidate(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns all candidates.
func (s *SQLiteStore) ListCandidates(ctx context.Context) ([]*types.Candidate, error) {
	return s.QueryCandidates(ctx, CandidateFilter{})
}

// QueryCandidates returns candidates matching f.
func (s *SQLiteStore) QueryCandidates(ctx context.Context, f CandidateFilter) ([]*types.Candidate, error) {
	where, args := f.where(question)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates`+where+` ORDER BY created_at, rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
