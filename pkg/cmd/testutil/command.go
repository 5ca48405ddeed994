package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/urfave/cli/v3"
)

// Result captures the output of a command run.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// RunCommand executes app with args, capturing stdout and stderr. The program
// name is prepended to args.
func RunCommand(t *testing.T, app *cli.Command, args ...string) Result {
	t.Helper()

	return RunCommandWithContext(context.Background(), t, app, args...)
}

// RunCommandWithContext executes app with a custom context
func RunCommandWithContext(ctx context.Context, t *testing.T, app *cli.Command, args ...string) Result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(ctx, append([]string{app.Name}, args...))
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
