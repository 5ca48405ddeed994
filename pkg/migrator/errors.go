package migrator

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies loader failures.
type ErrorKind string

const (
	InvalidDirectory       ErrorKind = "InvalidDirectory"
	InvalidVersionFormat   ErrorKind = "InvalidVersionFormat"
	InvalidVersionNumber   ErrorKind = "InvalidVersionNumber"
	DuplicateVersionNumber ErrorKind = "DuplicateVersionNumber"
	NoMigrationsInRange    ErrorKind = "NoMigrationsInRange"
	FileNotFound           ErrorKind = "FileNotFound"
	IO                     ErrorKind = "Io"
)

// Error is returned for every failure to discover or read migrations.
type Error struct {
	Kind ErrorKind
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newError(kind ErrorKind, path string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Err: err, Msg: fmt.Sprintf(format, args...)}
}
