package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/talent-search/internal/ingestion"
)

// ErrNotFound indicates a missing job or candidate.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrBadRequest indicates a request body that could not be read.
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return "bad request: " + e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var notFound *ErrNotFound
	var badRequest *ErrBadRequest
	var validation *ingestion.ValidationError
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badRequest), errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
