package cmd

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/config"
	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/metrics"
	"github.com/pseudomuto/swellow/pkg/output"
	"github.com/urfave/cli/v3"
)

// LevelTrace is logged with -vv and above.
const LevelTrace = slog.Level(-8)

type (
	// Session holds what every command shares: the effective configuration,
	// the logger and the metrics recorder. It is filled in by the root
	// command's Before hook once the global flags have been parsed.
	Session struct {
		Config  *config.Config
		Logger  *slog.Logger
		Metrics *metrics.Recorder
		JSON    bool

		// Open connects to the configured engine. Defaults to OpenBackend.
		Open func(context.Context, *config.Config) (executor.Backend, error)

		verbosity int
		quiet     bool
	}

	// action is the body of a command that needs a database.
	action func(context.Context, *executor.Executor) (any, error)
)

// NewSession creates a Session for cfg, using the defaults when cfg is nil.
func NewSession(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Session{
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.New(),
		Open:    OpenBackend,
	}
}

// configure applies the global flags. Flags and their environment variables
// win over the config file.
func (s *Session) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.IsSet("config") {
		cfg, err := config.LoadConfigFile(cmd.String("config"))
		if err != nil {
			return ctx, err
		}

		*s.Config = *cfg
	}

	override(&s.Config.DB, cmd.String("db"))
	override(&s.Config.Dir, cmd.String("dir"))
	override(&s.Config.Engine, cmd.String("engine"))
	override(&s.Config.MetricsFile, cmd.String("metrics-file"))

	s.JSON = cmd.Bool("json")
	s.Logger = s.newLogger(cmd.Root().ErrWriter)

	s.Logger.Log(ctx, LevelTrace, "Configuration resolved", "engine", s.Config.Engine, "dir", s.Config.Dir)
	return ctx, nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func (s *Session) newLogger(w io.Writer) *slog.Logger {
	if s.JSON || w == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	level := slog.LevelInfo
	switch {
	case s.quiet:
		level = slog.LevelError
	case s.verbosity == 1:
		level = slog.LevelDebug
	case s.verbosity > 1:
		level = LevelTrace
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}

			return a
		},
	}))
}

// run connects to the database, hands an Executor to fn and reports the
// outcome: as a JSON envelope with --json, and to the metrics textfile when
// one is configured.
func (s *Session) run(ctx context.Context, cmd *cli.Command, needsDir bool, fn action) error {
	start := time.Now()
	runID := uuid.New()

	data, err := s.execute(ctx, runID, needsDir, fn)
	s.Metrics.RecordCommand(cmd.Name, time.Since(start), err)

	if path := s.Config.MetricsFile; path != "" {
		if mErr := s.Metrics.WriteTextfile(path); mErr != nil {
			s.Logger.Warn("Failed to write metrics", "path", path, "err", mErr)
		}
	}

	if s.JSON {
		if _, wErr := output.NewEnvelope(cmd.Name, runID, data, err).WriteTo(cmd.Root().Writer); wErr != nil && err == nil {
			return wErr
		}
	}

	return err
}

func (s *Session) execute(ctx context.Context, runID uuid.UUID, needsDir bool, fn action) (any, error) {
	if s.Config.DB == "" {
		return nil, errors.New("no database connection string, set --db or DB_CONNECTION_STRING")
	}

	if needsDir && s.Config.Dir == "" {
		return nil, errors.New("no migration directory, set --dir or MIGRATION_DIRECTORY")
	}

	backend, err := s.Open(ctx, s.Config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", s.Config.Engine)
	}
	defer func() {
		if cErr := backend.Close(); cErr != nil {
			s.Logger.Warn("Failed to close connection", "err", cErr)
		}
	}()

	return fn(ctx, executor.New(executor.Config{
		Backend: backend,
		Dir:     s.Config.Dir,
		Logger:  s.Logger,
		RunID:   runID,
	}))
}
