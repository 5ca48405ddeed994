package output_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/migrator"
	. "github.com/pseudomuto/swellow/pkg/output"
	"github.com/pseudomuto/swellow/pkg/parser"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	defer SetNow(time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("EST", -5*3600)))()
	runID := uuid.MustParse("7f1d2a9e-7a52-4f0e-9d55-0b6c2f1a3c11")

	t.Run("success", func(t *testing.T) {
		env := NewEnvelope("peck", runID, map[string]string{"engine": "sqlite"}, nil)

		var buf bytes.Buffer
		_, err := env.WriteTo(&buf)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Equal(t, "peck", got["command"])
		require.Equal(t, "success", got["status"])
		require.Equal(t, "2024-05-01T17:30:00Z", got["timestamp"])
		require.Equal(t, runID.String(), got["run_id"])
		require.Equal(t, map[string]any{"engine": "sqlite"}, got["data"])
		require.NotContains(t, got, "error")
	})

	t.Run("failure", func(t *testing.T) {
		env := NewEnvelope("up", uuid.Nil, nil, &executor.IntervalError{From: 5, To: 2})

		require.Equal(t, Failure, env.Status)
		require.Empty(t, env.RunID)
		require.Equal(t, &ErrorInfo{
			Type:    VersionError,
			Message: "invalid version interval: from 5 is greater than to 2",
		}, env.Error)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"file not found", &migrator.Error{Kind: migrator.FileNotFound}, FileNotFoundError},
		{"empty range", errors.Wrap(&migrator.Error{Kind: migrator.NoMigrationsInRange}, "load"), FileNotFoundError},
		{"invalid directory", &migrator.Error{Kind: migrator.InvalidDirectory}, IOError},
		{"read failure", &migrator.Error{Kind: migrator.IO}, IOError},
		{"bad version format", &migrator.Error{Kind: migrator.InvalidVersionFormat}, VersionError},
		{"bad version number", &migrator.Error{Kind: migrator.InvalidVersionNumber}, VersionError},
		{"duplicate version", &migrator.Error{Kind: migrator.DuplicateVersionNumber}, VersionError},
		{"interval", &executor.IntervalError{From: 3, To: 1}, VersionError},
		{"snapshot write", errors.Wrap(&executor.IOError{Path: "x"}, "snapshot"), IOError},
		{"tokenizer", &parser.TokenizeError{Line: 1, Column: 2, Msg: "bad"}, ParserError},
		{"tokens", errors.Wrap(&parser.TokensError{}, "parse"), ParserError},
		{"dry run", &executor.DryRunUnsupportedError{Engine: "clickhouse"}, EngineError},
		{"anything else", errors.New("connection refused"), EngineError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
