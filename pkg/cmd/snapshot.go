package cmd

import (
	"context"

	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/output"
	"github.com/urfave/cli/v3"
)

// snapshot creates a CLI command that dumps the current database schema into
// a new <version>_snapshot directory, where version is one more than the
// highest version in the migration directory.
//
// Example usage:
//
//	swellow --db postgresql://localhost/app --dir db/migrations snapshot
func snapshot(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Take a snapshot of the database schema into a set of CREATE statements",
		Description: `Automatically creates a new version migration subdirectory like '<VERSION>_snapshot'.

Postgres: pg_dump must be installed with a version matching the server's.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return s.run(ctx, cmd, true, func(ctx context.Context, ex *executor.Executor) (any, error) {
				res, err := ex.Snapshot(ctx)
				if err != nil {
					return nil, err
				}

				if !s.JSON {
					if err := output.NewPrinter(cmd.Root().Writer).Snapshot(res); err != nil {
						return nil, err
					}
				}

				return output.NewSnapshotReport(res), nil
			})
		},
	}
}
