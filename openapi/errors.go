package openapi

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is matched by every *SchemaError.
	ErrSchema = errors.New("openapi: schema error")
	// ErrInvalidRoute is matched by every *RouteError.
	ErrInvalidRoute = errors.New("openapi: invalid route")
	// ErrDuplicateOperationID is matched by *DuplicateOperationIDError.
	ErrDuplicateOperationID = errors.New("openapi: duplicate operation id")

	errNoType = errors.New("no resolvable type")
)

// SchemaError reports a field or model whose type cannot be rendered.
// It aborts the whole generation.
type SchemaError struct {
	// Field is the alias of the offending field, if any.
	Field string
	// Model is the identity of the offending model, if any.
	Model string
	Err   error
}

func (e *SchemaError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("openapi: schema for field %q: %v", e.Field, e.Err)
	case e.Model != "":
		return fmt.Sprintf("openapi: schema for model %s: %v", e.Model, e.Err)
	default:
		return fmt.Sprintf("openapi: schema: %v", e.Err)
	}
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// RouteError reports a structurally malformed route.
type RouteError struct {
	Path   string
	Name   string
	Reason string
	Err    error
}

func (e *RouteError) Error() string {
	msg := fmt.Sprintf("openapi: invalid route %q (%s): %s", e.Path, e.Name, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RouteError) Unwrap() error { return e.Err }

func (e *RouteError) Is(target error) bool { return target == ErrInvalidRoute }

// DuplicateOperationIDError is returned in reject mode when an operation id
// is reused at a different path template.
type DuplicateOperationIDError struct {
	OperationID string
	Path        string
	FirstPath   string
}

func (e *DuplicateOperationIDError) Error() string {
	return fmt.Sprintf("openapi: duplicate operation id %q at %s (first used at %s)",
		e.OperationID, e.Path, e.FirstPath)
}

func (e *DuplicateOperationIDError) Is(target error) bool {
	return target == ErrDuplicateOperationID
}
