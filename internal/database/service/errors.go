package service

import (
	"errors"
	"sort"
	"strings"
)

// Service errors
var (
	ErrEmailRequired      = errors.New("users must have an email address")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError reports every invalid field of an input at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// WriteRecorder receives counts of committed writes. *metrics.Metrics implements it.
type WriteRecorder interface {
	RecipeWritten(operation string)
	AttributeResolved(kind string, created bool)
}

type noopRecorder struct{}

func (noopRecorder) RecipeWritten(string)           {}
func (noopRecorder) AttributeResolved(string, bool) {}

func recorderOrNoop(r WriteRecorder) WriteRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
