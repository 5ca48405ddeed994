package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Status is the outcome recorded in an Envelope.
type Status string

const (
	Success Status = "success"
	Failure Status = "error"
)

type (
	// Envelope is the JSON document printed by every command when --json is set.
	Envelope struct {
		Command   string     `json:"command"`
		Status    Status     `json:"status"`
		Data      any        `json:"data,omitempty"`
		Error     *ErrorInfo `json:"error,omitempty"`
		Timestamp string     `json:"timestamp"`
		RunID     string     `json:"run_id,omitempty"`
	}

	// ErrorInfo describes a failed command.
	ErrorInfo struct {
		Type    ErrorType `json:"type"`
		Message string    `json:"message"`
	}
)

// now is replaced in tests.
var now = time.Now

// NewEnvelope builds the envelope for a finished command. A non-nil err marks
// the envelope as failed; data is kept either way so partial results survive.
func NewEnvelope(command string, runID uuid.UUID, data any, err error) *Envelope {
	env := &Envelope{
		Command:   command,
		Status:    Success,
		Data:      data,
		Timestamp: now().UTC().Format(time.RFC3339),
	}

	if runID != uuid.Nil {
		env.RunID = runID.String()
	}

	if err != nil {
		env.Status = Failure
		env.Error = &ErrorInfo{Type: Classify(err), Message: err.Error()}
	}

	return env
}

// WriteTo writes the envelope as indented JSON followed by a newline.
func (e *Envelope) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode output")
	}

	n, err := w.Write(append(data, '\n'))
	return int64(n), errors.Wrap(err, "failed to write output")
}
