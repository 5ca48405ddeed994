package testutil

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope mirrors the JSON document printed with --json.
type Envelope struct {
	Command   string         `json:"command"`
	Status    string         `json:"status"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Error     *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// RequireEnvelope asserts that stdout holds exactly one JSON envelope and
// decodes it.
func RequireEnvelope(t *testing.T, stdout string) Envelope {
	t.Helper()

	var env Envelope
	dec := json.NewDecoder(strings.NewReader(stdout))
	require.NoError(t, dec.Decode(&env), "Output should be a JSON envelope: %s", stdout)
	require.False(t, dec.More(), "Output should contain a single envelope")
	require.NotEmpty(t, env.Timestamp, "Envelope should carry a timestamp")

	return env
}

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		for _, check := range checks {
			check(string(content))
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireFileNotContains returns a check function that verifies file doesn't contain text
func RequireFileNotContains(t *testing.T, unexpected string) func(string) {
	return func(content string) {
		require.NotContains(t, content, unexpected, "File should not contain: %s", unexpected)
	}
}

// RequireNoFile asserts that a file does not exist
func RequireNoFile(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "File should not exist: %s", path)
}

// RequireError asserts that an error occurred and optionally checks the message
func RequireError(t *testing.T, err error, msgContains ...string) {
	t.Helper()

	require.Error(t, err, "Expected an error")

	for _, msg := range msgContains {
		require.Contains(t, err.Error(), msg, "Error message should contain: %s", msg)
	}
}
