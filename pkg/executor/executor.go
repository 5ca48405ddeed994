package executor

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/migrator"
)

type (
	// Config contains the options for creating a new Executor.
	Config struct {
		// Backend is the database to migrate.
		Backend Backend

		// Dir is the migration directory.
		Dir string

		// FS overrides the filesystem migrations are read from. Defaults to
		// Dir on disk.
		FS fs.FS

		// Logger receives progress output. Defaults to a discarding logger.
		Logger *slog.Logger

		// RunID identifies the run in logs and output. Generated when zero.
		RunID uuid.UUID
	}

	// Executor runs migrations from a directory against a Backend.
	Executor struct {
		backend Backend
		dir     string
		loader  *migrator.Loader
		logger  *slog.Logger
		runID   uuid.UUID
	}

	// Options controls a single Migrate call.
	Options struct {
		// Direction selects apply (Up) or rollback (Down).
		Direction migrator.Direction

		// CurrentVersion overrides the version resolved from the ledger.
		CurrentVersion *int64

		// TargetVersion bounds the run. Up runs to it inclusively; Down stops
		// above it.
		TargetVersion *int64

		// Plan stops once the plan has been built.
		Plan bool

		// DryRun executes everything and rolls the transaction back.
		DryRun bool

		// NoTransaction runs every statement outside a transaction.
		NoTransaction bool

		// IgnoreLocks skips the ledger lock.
		IgnoreLocks bool

		// OnPlan, when set, is called with the plan before anything executes.
		OnPlan func(*Plan) error
	}

	// run is the mutable state of a single Migrate call.
	run struct {
		*Executor
		opts   Options
		result *Result
		inTx   bool
		locked bool
	}
)

// New creates an Executor from the provided configuration.
func New(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	runID := cfg.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	loader := migrator.NewLoader(cfg.Dir, cfg.Backend.Dialect(), logger)
	if cfg.FS != nil {
		loader.FS = cfg.FS
	}

	return &Executor{
		backend: cfg.Backend,
		dir:     cfg.Dir,
		loader:  loader,
		logger:  logger.With("run_id", runID.String()),
		runID:   runID,
	}
}

// RunID returns the identifier attached to this executor's runs.
func (e *Executor) RunID() uuid.UUID {
	return e.runID
}

// Peck ensures the ledger table exists.
func (e *Executor) Peck(ctx context.Context) error {
	e.logger.Info("Pecking database...", "engine", e.backend.Name())

	if err := e.backend.EnsureTable(ctx); err != nil {
		return errors.Wrap(err, "failed to ensure records table")
	}

	e.logger.Info("Pecking successful")
	return nil
}

// Migrate applies or rolls back the versions selected by opts.
//
// The returned Result is never nil, and describes how far the run got even
// when an error is returned.
func (e *Executor) Migrate(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: e.runID, Direction: opts.Direction, DryRun: opts.DryRun}

	if opts.DryRun && opts.NoTransaction {
		return res, ErrDryRunRequiresTransaction
	}

	if opts.DryRun && !e.backend.Transactional() {
		return res, &DryRunUnsupportedError{Engine: e.backend.Name()}
	}

	r := &run{Executor: e, opts: opts, result: res}
	err := r.execute(ctx)
	err = r.finish(ctx, err)

	res.Duration = time.Since(start)
	return res, err
}

func (r *run) execute(ctx context.Context) error {
	r.enter(Pecking)
	if err := r.Peck(ctx); err != nil {
		return err
	}

	if r.opts.NoTransaction || !r.backend.Transactional() {
		r.logger.Info("Running outside transaction...")
	} else {
		r.logger.Info("Beginning transaction...")
		if err := r.backend.Begin(ctx); err != nil {
			return errors.Wrap(err, "failed to begin transaction")
		}

		r.inTx = true
	}

	if r.opts.IgnoreLocks {
		r.logger.Warn("Ignoring locks: sequential execution of migrations is not guaranteed")
	} else {
		r.logger.Info("Acquiring lock on records table...")
		if err := r.backend.AcquireLock(ctx); err != nil {
			return errors.Wrap(err, "failed to acquire lock")
		}

		r.locked = true
		r.enter(Locked)
	}

	r.enter(Planning)
	plan, err := r.plan(ctx)
	if err != nil {
		return err
	}

	r.result.Plan = plan

	if r.opts.OnPlan != nil {
		if err := r.opts.OnPlan(plan); err != nil {
			return err
		}
	}

	if r.opts.Plan {
		r.logger.Info("Planning complete - no migrations executed")
		return nil
	}

	r.enter(Executing)
	for id, mig := range plan.Migrations.All() {
		vr, err := r.executeVersion(ctx, id, mig)
		if err != nil {
			return err
		}

		r.result.Versions = append(r.result.Versions, vr)
	}

	return nil
}

// enter records that the run reached s.
func (r *run) enter(s State) {
	r.logger.Debug("Run state changed", "from", r.result.State.String(), "to", s.String())
	r.result.State = s
}

func (r *run) plan(ctx context.Context) (*Plan, error) {
	current, err := r.currentVersion(ctx)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Current version resolved", "version", current)

	if err := r.backend.DisableRecords(ctx, current); err != nil {
		return nil, errors.Wrapf(err, "failed to disable records above version %d", current)
	}

	var from, to int64
	switch r.opts.Direction {
	case migrator.Down:
		to = current
		if r.opts.TargetVersion != nil {
			from = *r.opts.TargetVersion
		}
	default:
		from, to = current, math.MaxInt64
		if r.opts.TargetVersion != nil {
			to = *r.opts.TargetVersion
		}
	}

	if from > to {
		return nil, &IntervalError{From: from, To: to}
	}

	r.logger.Info("Loading migrations", "dir", r.dir, "from", from, "to", to)

	coll, err := r.loader.Load(r.opts.Direction, from, to)
	if err != nil {
		return nil, err
	}

	return &Plan{Direction: r.opts.Direction, Current: current, From: from, To: to, Migrations: coll}, nil
}

func (r *run) currentVersion(ctx context.Context) (int64, error) {
	if r.opts.CurrentVersion != nil {
		return *r.opts.CurrentVersion, nil
	}

	latest, ok, err := r.backend.LatestVersion(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to fetch latest applied version")
	}

	if ok {
		return latest, nil
	}

	if r.opts.Direction == migrator.Down {
		return math.MaxInt64, nil
	}

	return 0, nil
}

func (r *run) executeVersion(ctx context.Context, id int64, mig *migrator.Migration) (VersionResult, error) {
	start := time.Now()
	dir := r.opts.Direction
	vr := VersionResult{Version: id, Path: mig.Path}

	r.logger.Info(dir.Verb()+" to version...", "version", id, "path", mig.Path)

	if dir == migrator.Up {
		sum, err := mig.Checksum()
		if err != nil {
			return vr, errors.Wrapf(err, "failed to checksum %s", mig.Path)
		}

		digest := ledger.Digest(sum)
		for _, res := range mig.Resources().Trackable() {
			rec := ledger.Record{
				VersionID:  id,
				ObjectType: res.ObjectType.String(),
				NameBefore: res.NameBefore,
				NameAfter:  res.NameAfter,
				Status:     ledger.Ready,
				Checksum:   digest,
			}

			if err := r.backend.UpsertRecord(ctx, rec); err != nil {
				return vr, errors.Wrapf(err, "failed to insert record for %s %s", rec.ObjectType, res.DisplayName())
			}

			vr.Records++
		}
	}

	for i, stmt := range mig.Statements.Statements() {
		if stmt.IsEmpty() {
			continue
		}

		if stmt.Err != nil {
			r.logger.Debug("Executing statement without resource information", "version", id, "statement", i+1, "err", stmt.Err)
		}

		if err := r.backend.Execute(ctx, stmt.String()); err != nil {
			return vr, errors.Wrapf(err, "failed to execute statement %d of %s", i+1, mig.Path)
		}

		vr.Statements++
	}

	if err := r.backend.UpdateRecord(ctx, statusFor(dir), id); err != nil {
		return vr, errors.Wrapf(err, "failed to update records for version %d", id)
	}

	vr.Duration = time.Since(start)
	return vr, nil
}

// cleanupTimeout bounds the rollback and lock release that run after the
// caller's context is done.
const cleanupTimeout = 30 * time.Second

// finish ends the transaction and releases the lock. Errors from either only
// replace err when the run had succeeded so far.
//
// Rollback and lock release use a context detached from ctx, so an
// interrupted run still cleans up after itself.
func (r *run) finish(ctx context.Context, err error) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if r.inTx {
		switch {
		case err != nil:
			if rbErr := r.backend.Rollback(cctx); rbErr != nil {
				r.logger.Error("Failed to roll back transaction", "err", rbErr)
			} else {
				r.enter(RolledBack)
			}
		case r.opts.DryRun || r.opts.Plan:
			if rbErr := r.backend.Rollback(cctx); rbErr != nil {
				err = errors.Wrap(rbErr, "failed to roll back transaction")
			} else {
				r.enter(RolledBack)
				if r.opts.DryRun {
					r.logger.Info("Dry run completed - transaction successfully rolled back")
				}
			}
		default:
			if cErr := r.backend.Commit(ctx); cErr != nil {
				err = errors.Wrap(cErr, "failed to commit transaction")
			} else {
				r.enter(Committed)
				r.logger.Info("Migration completed - transaction successfully committed")
			}
		}
	} else if err == nil && !r.opts.Plan {
		r.enter(Committed)
		r.logger.Info("Migration completed")
	}

	if r.locked {
		if relErr := r.backend.ReleaseLock(cctx); relErr != nil {
			if err == nil {
				err = errors.Wrap(relErr, "failed to release lock")
			} else {
				r.logger.Error("Failed to release lock", "err", relErr)
			}
		}
	}

	return err
}

func statusFor(d migrator.Direction) ledger.Status {
	if d == migrator.Down {
		return ledger.RolledBack
	}

	return ledger.Applied
}
