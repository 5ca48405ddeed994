package cmd

import (
	"context"

	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/migrator"
	"github.com/pseudomuto/swellow/pkg/output"
	"github.com/urfave/cli/v3"
)

func up(s *Session) *cli.Command {
	return migrateCommand(s, migrator.Up, "Generate a migration plan and execute it")
}

func down(s *Session) *cli.Command {
	return migrateCommand(s, migrator.Down, "Generate a rollback plan and execute it")
}

// migrateCommand creates the up and down commands. Both resolve the current
// version from the records table (or --current-version-id), plan the versions
// between it and --target-version-id, and execute them in order.
func migrateCommand(s *Session, dir migrator.Direction, usage string) *cli.Command {
	return &cli.Command{
		Name:  dir.String(),
		Usage: usage,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name: "current-version-id",
				Usage: "the database's latest migration version ID. Records with a larger version ID are disabled. " +
					"Defaults to the last enabled record, or 0 when there is none",
			},
			&cli.Int64Flag{
				Name:  "target-version-id",
				Usage: "migrate up or down to this version ID",
			},
			&cli.BoolFlag{
				Name:  "plan",
				Usage: "generate the migration plan and skip execution",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "generate the migration plan, execute it, then roll the transaction back",
			},
			&cli.BoolFlag{
				Name:  "no-transaction",
				Usage: "run every statement outside of a transaction",
			},
			&cli.BoolFlag{
				Name:  "ignore-locks",
				Usage: "skip acquiring the lock; sequential execution of migrations is not guaranteed",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := executor.Options{
				Direction:     dir,
				Plan:          cmd.Bool("plan"),
				DryRun:        cmd.Bool("dry-run"),
				NoTransaction: cmd.Bool("no-transaction"),
				IgnoreLocks:   cmd.Bool("ignore-locks"),
			}

			if cmd.IsSet("current-version-id") {
				v := cmd.Int64("current-version-id")
				opts.CurrentVersion = &v
			}

			if cmd.IsSet("target-version-id") {
				v := cmd.Int64("target-version-id")
				opts.TargetVersion = &v
			}

			printer := output.NewPrinter(cmd.Root().Writer)
			if !s.JSON {
				opts.OnPlan = printer.Plan
			}

			return s.run(ctx, cmd, true, func(ctx context.Context, ex *executor.Executor) (any, error) {
				res, err := ex.Migrate(ctx, opts)
				s.Metrics.RecordMigration(res)

				if err == nil && !s.JSON && !opts.Plan {
					err = printer.Result(res)
				}

				return output.NewMigrationReport(res), err
			})
		},
	}
}
