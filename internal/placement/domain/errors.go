package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation             = errors.New("validation_failed")
	ErrMalformedDocument      = errors.New("malformed_document")
	ErrMissingRequiredEntity  = errors.New("missing_required_entity")
	ErrDuplicateIdentifier    = errors.New("duplicate_identifier")
	ErrNotFound               = errors.New("not_found")
	ErrPartialCascade         = errors.New("partial_cascade_failure")
	ErrInvalidQuery           = errors.New("invalid_query")
	ErrCallerIdentityRequired = errors.New("caller_identity_required")
	ErrConcurrentUpdate       = errors.New("concurrent_update")
)

// Violation is a single schema failure located by a JSON pointer into the
// submitted document.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in one document.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Path+": "+v.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MissingEntityError names a required linked entity absent at save time.
type MissingEntityError struct {
	Field string
	Label string
}

func (e *MissingEntityError) Error() string {
	return e.Label + " is required for placement"
}

func (e *MissingEntityError) Unwrap() error { return ErrMissingRequiredEntity }

type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("Placement with id %s already exists.", e.ID)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateIdentifier }

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.Resource == ResourceBrokerTeam {
		return "Broker team not found"
	}
	return fmt.Sprintf("Placement with id %s does not exist.", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

const (
	ResourcePlacement  = "placement"
	ResourceBrokerTeam = "broker_team"
)

// SavedRef identifies a sub-document written during a cascade.
type SavedRef struct {
	Collection CollectionName `json:"collection"`
	ID         string         `json:"id"`
}

// CascadeError reports a sub-entity write that failed after earlier writes in
// the same cascade became durable. Saved lists those writes.
type CascadeError struct {
	CascadeID   string
	PlacementID string
	Collection  CollectionName
	EntityID    string
	Saved       []SavedRef
	Err         error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade %s: save %s/%s for placement %s: %v",
		e.CascadeID, e.Collection, e.EntityID, e.PlacementID, e.Err)
}

func (e *CascadeError) Unwrap() []error {
	return []error{ErrPartialCascade, e.Err}
}
