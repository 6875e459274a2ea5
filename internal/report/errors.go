package report

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"taskboard/pkg/circuitbreaker"
)

// NotFoundError means a requested project, department or user id does not
// exist. The report fails with no partial data.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ValidationError means the request parameters are malformed. It is raised
// before any fetch is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ClassifyHTTP maps an engine error to an HTTP status and a body safe to
// return to the caller. Internal detail never leaks into the message.
func ClassifyHTTP(err error) (int, string) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, nf.Error()
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		return http.StatusServiceUnavailable, "store temporarily unavailable"
	}

	// pgx.ErrNoRows escaping the repositories counts as a missing
	// reference, not corruption.
	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, "not found"
	}

	if strings.Contains(err.Error(), "connection") || strings.Contains(err.Error(), "timeout") {
		return http.StatusServiceUnavailable, "store temporarily unavailable"
	}

	return http.StatusInternalServerError, "failed to build report"
}
