package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/urfave/cli/v3"
)

// peck creates a CLI command that tests the connection to the database and
// creates the records table when it does not exist yet.
func peck(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "peck",
		Usage: "Test connection to the database",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return s.run(ctx, cmd, false, func(ctx context.Context, ex *executor.Executor) (any, error) {
				if err := ex.Peck(ctx); err != nil {
					return nil, err
				}

				if !s.JSON {
					fmt.Fprintf(cmd.Root().Writer, "Connected to %s, records table is ready\n", s.Config.Engine)
				}

				return map[string]string{"engine": s.Config.Engine}, nil
			})
		},
	}
}
