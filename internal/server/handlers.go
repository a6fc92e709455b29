package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/ingestion"
	"github.com/jonathan/talent-search/internal/types"
)

// maxUploadBytes bounds multipart resume uploads.
const maxUploadBytes = 10 << 20

// ApplyResponse is returned by POST /apply/{job_id}.
type ApplyResponse struct {
	JobApplied  types.Job        `json:"job_applied"`
	Resume      *types.Candidate `json:"resume"`
	CandidateID string           `json:"candidate_id"`
	IsNew       bool             `json:"is_new"`
}

// handleSearch handles GET /search_candidates?query=...
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	resp, err := s.search.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.failResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListJobs handles GET /jobs
func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": s.jobList})
}

// handleApply handles POST /apply/{job_id}
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	job, ok := s.jobs[jobID]
	if !ok {
		s.failResponse(w, r, &ErrNotFound{Resource: "job", ID: jobID})
		return
	}

	result, err := s.submit(r)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}
	s.logger.Info("application received",
		zap.String("job_id", job.ID),
		zap.String("candidate_id", result.CandidateID),
	)
	s.jsonResponse(w, http.StatusOK, ApplyResponse{
		JobApplied:  job,
		Resume:      result.Candidate,
		CandidateID: result.CandidateID,
		IsNew:       result.IsNew,
	})
}

// handleCreateCandidate handles POST /candidates
func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	result, err := s.submit(r)
	if err != nil {
		s.failResponse(w, r, err)
		return
	}
	status := http.StatusOK
	if result.IsNew {
		status = http.StatusCreated
	}
	s.jsonResponse(w, status, result)
}

// handleGetCandidate handles GET /candidates/{id}
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.failResponse(w, r, fmt.Errorf("failed to get candidate: %w", err))
		return
	}
	if c == nil {
		s.failResponse(w, r, &ErrNotFound{Resource: "candidate", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

// submit decodes a resume submission from JSON or a multipart form and ingests it.
func (s *Server) submit(r *http.Request) (*ingestion.Result, error) {
	req, err := decodeSubmission(r)
	if err != nil {
		return nil, err
	}
	return s.ingest.Ingest(r.Context(), req)
}

func decodeSubmission(r *http.Request) (ingestion.Request, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return decodeMultipart(r)
	}

	var req ingestion.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		return req, &ErrBadRequest{Message: "invalid JSON body"}
	}
	return req, nil
}

// decodeMultipart reads form fields and an optional "file" part, whose text
// replaces resume_text.
func decodeMultipart(r *http.Request) (ingestion.Request, error) {
	var req ingestion.Request
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return req, &ErrBadRequest{Message: "invalid multipart form"}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req.Name = r.FormValue("name")
	req.Email = r.FormValue("email")
	req.Phone = r.FormValue("phone")
	req.Location = r.FormValue("location")
	req.Title = r.FormValue("title")
	req.ResumeText = r.FormValue("resume_text")
	if raw := strings.TrimSpace(r.FormValue("experience")); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return req, &ErrBadRequest{Message: "experience must be an integer"}
		}
		req.Experience = &years
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return req, &ErrBadRequest{Message: "failed to read uploaded file"}
	}
	defer func() { _ = file.Close() }()

	req.Filename = filepath.Base(header.Filename)
	text, err := extractUpload(file, req.Filename)
	if err != nil {
		return req, err
	}
	req.ResumeText = text
	return req, nil
}

// extractUpload spools an upload to a temp file keeping its extension so the
// converter can pick a format.
func extractUpload(src io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "resume-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	text, err := ingestion.ExtractText(tmp.Name())
	if err != nil {
		return "", &ErrBadRequest{Message: "could not read resume file " + filename}
	}
	return text, nil
}
