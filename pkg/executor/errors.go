package executor

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDryRunRequiresTransaction is returned when a dry run is requested
// without a transaction to roll back.
var ErrDryRunRequiresTransaction = errors.New("dry run requires a transaction, it cannot be combined with --no-transaction")

// DryRunUnsupportedError is returned when a dry run is requested against a
// backend that cannot roll back.
type DryRunUnsupportedError struct {
	Engine string
}

func (e *DryRunUnsupportedError) Error() string {
	return fmt.Sprintf("dry run is not supported by the %s engine", e.Engine)
}

// IntervalError is returned when the resolved version interval is empty
// because it starts after it ends.
type IntervalError struct {
	From int64
	To   int64
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("invalid version interval: from %d is greater than to %d", e.From, e.To)
}

// IOError is returned when a snapshot cannot be written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to write %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
