package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax reports a manifest that cannot be decoded or a malformed
	// type expression.
	ErrSyntax = errors.New("manifest: syntax error")
	// ErrInvalid reports a manifest failing structural validation.
	ErrInvalid = errors.New("manifest: invalid manifest")
	// ErrUnknownName reports a reference to an undeclared model, enum,
	// dependency or security scheme.
	ErrUnknownName = errors.New("manifest: unknown name")
	// ErrDuplicateName reports two declarations sharing a name.
	ErrDuplicateName = errors.New("manifest: duplicate name")
)

// Error locates a manifest failure. Err wraps one of the sentinels.
type Error struct {
	File string
	// Location is a dotted path into the manifest, e.g. "routes[2].body".
	Location string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Location != "" {
		msg = e.Location + ": " + msg
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func errorAt(location string, sentinel error, format string, args ...any) error {
	return &Error{Location: location, Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
}

func withFile(err error, file string) error {
	var me *Error
	if errors.As(err, &me) {
		out := *me
		out.File = file
		return &out
	}
	return err
}
