package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrLockConflict is returned when another run already holds the ledger lock.
var ErrLockConflict = errors.New("lock acquisition failed - lock record is taken")

// ColumnTypeMismatchError is returned when a scalar query yields a column of
// an unexpected type.
type ColumnTypeMismatchError struct {
	Column   int
	Expected string
	Found    string
}

func (e *ColumnTypeMismatchError) Error() string {
	return fmt.Sprintf("column %d has mismatched type: expected %s, found %s", e.Column, e.Expected, e.Found)
}

// ProcessError is returned when an external command, such as pg_dump, cannot
// be run or exits unsuccessfully.
type ProcessError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("failed to run %q: %s", e.Cmd, e.Stderr)
	}

	return fmt.Sprintf("failed to run %q: %v", e.Cmd, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
