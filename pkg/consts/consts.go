package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)
)

// Environment variables read by the CLI.
const (
	EnvConfig  = "SWELLOW_CONFIG"
	EnvDB      = "DB_CONNECTION_STRING"
	EnvDir     = "MIGRATION_DIRECTORY"
	EnvEngine  = "ENGINE"
	EnvMetrics = "SWELLOW_METRICS_FILE"
	EnvNoColor = "NO_COLOR"
)
