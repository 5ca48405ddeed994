package cmd

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pseudomuto/swellow/pkg/consts"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Session    *Session
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run executes the swellow CLI with the provided arguments once the fx
// application starts, and shuts the application down with a non-zero exit
// code when the command fails.
//
// Global Flags:
//   - --config, -c: Config file (defaults to swellow.yaml when present)
//   - --db: Database connection string
//   - --dir: Directory containing the version directories
//   - --engine: Database or catalog engine
//   - --verbose, -v: Repeat for DEBUG and TRACE logs
//   - --quiet, -q: Only log errors
//   - --json: Print a single JSON document instead of human output
//   - --metrics-file: Write Prometheus metrics to this file
//
// Example usage:
//
//	swellow --db postgresql://localhost/app --dir db/migrations up --plan
//	swellow --engine clickhouse --db localhost:9000 --dir db down --target-version-id 3
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := NewApp(p.Version.Version, p.Session, p.Commands...)

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			p.Session.Logger.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

// NewApp builds the root command.
func NewApp(version string, s *Session, commands ...*cli.Command) *cli.Command {
	commands = slices.Clone(commands)
	slices.SortFunc(commands, func(a, b *cli.Command) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return &cli.Command{
		Name:                   "swellow",
		Usage:                  "The simple, SQL-first tool for managing table migrations",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "the swellow config file",
				Sources: cli.EnvVars(consts.EnvConfig),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "database connection string, e.g. postgresql://<username>:<password>@<host>:<port>/<database>",
				Sources: cli.EnvVars(consts.EnvDB),
			},
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "directory containing all migrations",
				Sources: cli.EnvVars(consts.EnvDir),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:        "engine",
				Usage:       "database or catalog engine (" + strings.Join(Engines, ", ") + ")",
				Sources:     cli.EnvVars(consts.EnvEngine),
				DefaultText: "postgres",
				Config:      cli.StringConfig{TrimSpace: true},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "set level of verbosity, -v for DEBUG and -vv for TRACE (--quiet takes precedence)",
				Config:  cli.BoolConfig{Count: &s.verbosity},
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "only log errors",
				Destination: &s.quiet,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print a JSON document instead of human readable output",
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "write Prometheus metrics to this file after every command",
				Sources: cli.EnvVars(consts.EnvMetrics),
			},
		},
		Before:   s.configure,
		Commands: commands,
	}
}
