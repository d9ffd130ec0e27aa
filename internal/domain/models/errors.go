package models

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed request input. It is raised before any
// computation starts; no partial result accompanies it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that none of the requested identifiers matched a
// stored record. It carries the identifiers so callers can log which lookups
// failed.
type NotFoundError struct {
	Resource string
	IDs      []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for identifiers [%s]", e.Resource, strings.Join(e.IDs, ", "))
}

// DomainError reports an arithmetic guard firing in the calculation core,
// e.g. a diet whose total dry matter is numerically zero.
type DomainError struct {
	Stage  string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
}
