// Package ingestion turns resume submissions into stored, indexed candidates.
package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/db"
	"github.com/jonathan/talent-search/internal/skills"
	"github.com/jonathan/talent-search/internal/types"
)

// Request is one resume submission.
type Request struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty"`
	Location   string `json:"location" validate:"required"`
	Experience *int   `json:"experience,omitempty" validate:"omitempty,gte=0,lte=100"`
	Title      string `json:"title,omitempty"`
	Filename   string `json:"filename,omitempty"`
	ResumeText string `json:"resume_text" validate:"required"`
}

// Result describes a completed ingestion.
type Result struct {
	CandidateID string           `json:"candidate_id"`
	IsNew       bool             `json:"is_new"`
	Candidate   *types.Candidate `json:"resume"`
}

// Upserter is the part of db.Store ingestion writes to.
type Upserter interface {
	UpsertCandidate(ctx context.Context, c *types.Candidate) (string, bool, error)
}

// Indexer stores a candidate's embedding.
type Indexer interface {
	Index(ctx context.Context, c *types.Candidate) error
}

// Recorder observes ingestions.
type Recorder interface {
	CandidateIngested(isNew bool)
}

// Service validates, enriches, stores and indexes resumes.
type Service struct {
	store     Upserter
	indexer   Indexer
	extractor *skills.Extractor
	validate  *validator.Validate
	logger    *zap.Logger
	recorder  Recorder
}

// NewService creates a Service. A nil indexer skips embedding.
func NewService(store Upserter, indexer Indexer, extractor *skills.Extractor, logger *zap.Logger, recorder Recorder) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		indexer:   indexer,
		extractor: extractor,
		validate:  validator.New(),
		logger:    logger,
		recorder:  recorder,
	}
}

// Ingest stores req as a candidate. A submission matching an existing
// candidate by email, or by resume text when no email is stored, updates it
// in place and reports IsNew false. Invalid input returns *ValidationError.
func (s *Service) Ingest(ctx context.Context, req Request) (*Result, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Location = strings.TrimSpace(req.Location)
	req.ResumeText = CleanText(req.ResumeText)

	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	c := &types.Candidate{
		Filename:   req.Filename,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      strings.TrimSpace(req.Phone),
		Title:      strings.TrimSpace(req.Title),
		Location:   req.Location,
		Experience: req.Experience,
		Skills:     s.extractor.Extract(req.ResumeText),
		RawText:    req.ResumeText,
		TextHash:   db.HashContent(req.ResumeText),
	}

	id, isNew, err := s.store.UpsertCandidate(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to store candidate: %w", err)
	}
	c.ID = id

	if s.indexer != nil {
		if err := s.indexer.Index(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to index candidate %s: %w", id, err)
		}
	}

	s.logger.Info("candidate ingested",
		zap.String("candidate_id", id),
		zap.Bool("is_new", isNew),
		zap.Int("skills", len(c.Skills)),
	)
	if s.recorder != nil {
		s.recorder.CandidateIngested(isNew)
	}

	return &Result{CandidateID: id, IsNew: isNew, Candidate: c}, nil
}
