// Package cmd provides the swellow command line interface.
//
// # Available Commands
//
//   - peck: Test the connection and create the records table
//   - up: Plan and apply versions above the current one
//   - down: Plan and roll back versions down to a target
//   - snapshot: Dump the current schema into a new <version>_snapshot directory
//
// # Command Structure
//
// Each command is a function returning a *cli.Command, following the
// urfave/cli/v3 pattern, and is registered with the fx "commands" group. The
// commands share a Session, which the root command fills in from the config
// file, the environment and the global flags before any command runs.
//
// # Global Options
//
//   - --config, -c: Config file (SWELLOW_CONFIG, defaults to swellow.yaml)
//   - --db: Connection string (DB_CONNECTION_STRING)
//   - --dir: Migration directory (MIGRATION_DIRECTORY)
//   - --engine: Backend engine (ENGINE, defaults to postgres)
//   - --verbose, -v / --quiet, -q: Log verbosity
//   - --json: Print one JSON envelope per command
//   - --metrics-file: Prometheus textfile output
//
// # Example Usage
//
//	swellow --db postgresql://localhost/app --dir db/migrations peck
//	swellow --db postgresql://localhost/app --dir db/migrations up --plan
//	swellow --engine sqlite --db app.db --dir db/migrations down --target-version-id 2
//	swellow --json --engine clickhouse --db localhost:9000 --dir db snapshot
package cmd
