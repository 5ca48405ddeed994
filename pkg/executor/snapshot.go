package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/consts"
)

// SnapshotResult describes a snapshot written to the migration directory.
type SnapshotResult struct {
	Version int64
	Path    string
	Bytes   int
}

// Snapshot dumps the current schema into a new version directory named
// <next>_snapshot, where next is one more than the highest existing version.
// The migration directory is created when it does not exist.
func (e *Executor) Snapshot(ctx context.Context) (*SnapshotResult, error) {
	if err := e.Peck(ctx); err != nil {
		return nil, err
	}

	e.logger.Info("Taking database snapshot...")

	script, err := e.backend.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to snapshot schema")
	}

	if err := os.MkdirAll(e.dir, consts.ModeDir); err != nil {
		return nil, &IOError{Path: e.dir, Err: err}
	}

	version, err := e.loader.Next()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(e.dir, fmt.Sprintf("%d_snapshot", version))
	if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
		return nil, &IOError{Path: dir, Err: err}
	}

	path := filepath.Join(dir, "up.sql")
	if err := os.WriteFile(path, []byte(script), consts.ModeFile); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	e.logger.Info("Snapshot created", "version", version, "path", path)
	return &SnapshotResult{Version: version, Path: path, Bytes: len(script)}, nil
}
