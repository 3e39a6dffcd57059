package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// NotFoundError means the requested id does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// IDMismatchError means the path id and the payload id of an update differ.
type IDMismatchError struct {
	Resource string
	PathID   int64
	BodyID   int64
}

func (e IDMismatchError) Error() string {
	return fmt.Sprintf("invalid %s id: path id %d does not match payload id %d", e.Resource, e.PathID, e.BodyID)
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// NewValidationError is a shorthand for a single-field failure.
func NewValidationError(field, msg string) ValidationError {
	return ValidationError{Fields: map[string]string{field: msg}}
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsIDMismatch(err error) bool {
	var target IDMismatchError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}
