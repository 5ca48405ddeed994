package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pseudomuto/swellow/pkg/cmd"
	"github.com/pseudomuto/swellow/pkg/config"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fx.New(
		fx.NopLogger,
		fx.Supply(
			os.Args,
			fx.Annotate(ctx, fx.As(new(context.Context))),
			&cmd.Version{Version: version, Commit: commit, Timestamp: date},
		),
		config.Module,
		cmd.Module,
	)

	app.Run()
	if err := app.Err(); err != nil {
		os.Exit(1)
	}
}
