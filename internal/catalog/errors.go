package catalog

import "errors"

var (
	// ErrInvalidRecord indicates one or more catalog records failed validation.
	ErrInvalidRecord = errors.New("invalid catalog record")

	// ErrInvalidDocument indicates a catalog file could not be decoded.
	ErrInvalidDocument = errors.New("invalid catalog document")

	// ErrDuplicateCatalog indicates two documents declare the same catalog name.
	ErrDuplicateCatalog = errors.New("duplicate catalog")

	// ErrKindMismatch indicates an override reuses a catalog name with a
	// different kind.
	ErrKindMismatch = errors.New("catalog kind mismatch")
)

// ValidationError describes one invalid record field.
type ValidationError struct {
	Catalog  string `json:"catalog"`
	RecordID string `json:"record_id,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	prefix := e.Catalog
	if e.RecordID != "" {
		prefix += "/" + e.RecordID
	}
	if e.Field != "" {
		return prefix + "." + e.Field + ": " + e.Message
	}
	return prefix + ": " + e.Message
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "catalog validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return e.Errors[0].Error() + " (and more)"
}

// Unwrap returns ErrInvalidRecord for errors.Is() compatibility.
func (e ValidationErrors) Unwrap() error {
	return ErrInvalidRecord
}
