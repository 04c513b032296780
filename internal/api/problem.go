package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/onboarding"
	"github.com/hyperengineering/nurture/internal/session"
	"github.com/hyperengineering/nurture/internal/store"
	"github.com/hyperengineering/nurture/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

const problemBase = "https://nurture.dev/errors/"

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusBadRequest:          {problemBase + "bad-request", "Bad Request"},
	http.StatusUnauthorized:        {problemBase + "unauthorized", "Unauthorized"},
	http.StatusNotFound:            {problemBase + "not-found", "Not Found"},
	http.StatusConflict:            {problemBase + "conflict", "Conflict"},
	http.StatusUnprocessableEntity: {problemBase + "validation-error", "Validation Error"},
	http.StatusTooManyRequests:     {problemBase + "rate-limit", "Too Many Requests"},
	http.StatusInternalServerError: {problemBase + "internal-error", "Internal Server Error"},
	http.StatusNotImplemented:      {problemBase + "not-implemented", "Not Implemented"},
	http.StatusServiceUnavailable:  {problemBase + "service-unavailable", "Service Unavailable"},
}

func newProblem(r *http.Request, status int, detail string) Problem {
	pt, ok := problemTypes[status]
	if !ok {
		pt.typeURI = problemBase + "unknown"
		pt.title = http.StatusText(status)
	}
	return Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
}

func writeProblemBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblemBody(w, status, newProblem(r, status, detail))
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	writeProblemBody(w, http.StatusUnprocessableEntity, ProblemWithErrors{
		Problem: newProblem(r, http.StatusUnprocessableEntity, detail),
		Errors:  errs,
	})
}

// MapError converts domain errors to Problem Details responses.
// Anything unrecognised becomes a 500 without internal details.
func MapError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		inputErr    *session.InputError
		cooldownErr *session.CooldownError
	)
	switch {
	case errors.As(err, &inputErr):
		WriteProblemWithErrors(w, r, "Request contains invalid fields", inputErr.Errors)
	case errors.As(err, &cooldownErr):
		secs := int(math.Ceil(cooldownErr.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		WriteProblem(w, r, http.StatusTooManyRequests, "A code was sent recently; retry in "+strconv.Itoa(secs)+"s")
	case errors.Is(err, session.ErrAuthentication):
		WriteProblem(w, r, http.StatusUnauthorized, "Invalid verification code")
	case errors.Is(err, session.ErrInvalidToken):
		WriteProblem(w, r, http.StatusUnauthorized, "Missing or invalid session token")
	case errors.Is(err, onboarding.ErrInvalidTransition):
		WriteProblem(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrPhoneTaken):
		WriteProblem(w, r, http.StatusConflict, "Phone number already registered")
	case errors.Is(err, catalog.ErrUnknownCatalog):
		WriteProblem(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		WriteProblem(w, r, http.StatusServiceUnavailable, "Request cancelled")
	default:
		slog.Error("request failed",
			"component", "api",
			"path", r.URL.Path,
			"error", err,
		)
		// Never expose internal error details to client
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
