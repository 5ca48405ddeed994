// Package executor drives migrations against a Backend.
//
// An Executor binds a Backend to a migration directory. Migrate resolves the
// version interval to run from the ledger, loads and parses the scripts in
// that interval, and applies (or rolls back) each version in order while
// keeping the ledger up to date:
//
//	exec := executor.New(executor.Config{
//		Backend: backend,
//		Dir:     "./migrations",
//		Logger:  logger,
//	})
//
//	res, err := exec.Migrate(ctx, executor.Options{Direction: migrator.Up})
//	if err != nil {
//		return err
//	}
//
//	fmt.Printf("applied %d version(s)\n", len(res.Versions))
//
// # Run lifecycle
//
// Every run moves through the same states: the ledger table is created if
// needed (Pecking), a transaction is opened when the backend supports one and
// the caller did not opt out, the ledger lock is taken (Locked), the plan is
// built (Planning) and each version is executed (Executing). The run ends in
// Committed or RolledBack.
//
// The lock is always released on the way out. A failure to release it is only
// reported when the run itself succeeded.
//
// # Dry runs and plans
//
// Options.Plan stops after the plan is built and calls Options.OnPlan so the
// caller can render it. Options.DryRun executes everything and then rolls the
// transaction back, which requires a transactional backend.
package executor
