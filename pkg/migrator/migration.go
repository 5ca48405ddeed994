package migrator

import (
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"slices"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/parser"
)

type (
	// Loader discovers and parses version directories.
	Loader struct {
		// Dir is the migration directory, used in error messages.
		Dir string

		// FS is the filesystem rooted at Dir.
		FS fs.FS

		// Dialect is used to parse every script.
		Dialect *parser.Dialect

		// Logger receives debug output about skipped entries.
		Logger *slog.Logger
	}

	// Migration is one version's script for a single direction.
	Migration struct {
		// Version is the version id.
		Version int64

		// Name is the version directory name.
		Name string

		// Path is the script path relative to the migration directory.
		Path string

		// Statements are the parsed statements of the script.
		Statements *parser.StatementCollection
	}

	// Collection is an ordered set of migrations loaded for one direction.
	Collection struct {
		direction  Direction
		versions   []int64
		migrations map[int64]*Migration
	}
)

// NewLoader returns a Loader reading from the directory dir on disk.
func NewLoader(dir string, dialect *parser.Dialect, logger *slog.Logger) *Loader {
	return &Loader{Dir: dir, FS: os.DirFS(dir), Dialect: dialect, Logger: logger}
}

func (l *Loader) log() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return l.Logger
}

// Load collects the versions with from < id <= to and parses each version's
// script for direction. A version without the script returns a FileNotFound
// error.
func (l *Loader) Load(direction Direction, from, to int64) (*Collection, error) {
	versions, err := l.Collect(from, to)
	if err != nil {
		return nil, err
	}

	coll := &Collection{
		direction:  direction,
		versions:   make([]int64, 0, len(versions)),
		migrations: make(map[int64]*Migration, len(versions)),
	}

	for _, v := range versions {
		mig, err := l.LoadVersion(v, direction)
		if err != nil {
			return nil, err
		}

		coll.versions = append(coll.versions, v.ID)
		coll.migrations[v.ID] = mig
	}

	return coll, nil
}

// LoadVersion reads and parses a single version's script.
func (l *Loader) LoadVersion(v Version, direction Direction) (*Migration, error) {
	p := path.Join(v.Name, direction.Filename())

	data, err := fs.ReadFile(l.FS, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(FileNotFound, p, err, "file not found: %q", p)
		}

		return nil, newError(IO, p, err, "failed to read file %q", p)
	}

	stmts, err := parser.Parse(l.Dialect, string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", p)
	}

	return &Migration{Version: v.ID, Name: v.Name, Path: p, Statements: stmts}, nil
}

// Resources returns the folded resources of the migration's statements.
func (m *Migration) Resources() *parser.ResourceCollection {
	return m.Statements.Resources()
}

// Checksum returns the statements' checksum.
func (m *Migration) Checksum() (string, error) {
	return m.Statements.Checksum()
}

// Direction returns the direction the collection was loaded for.
func (c *Collection) Direction() Direction {
	return c.direction
}

// Len returns the number of migrations.
func (c *Collection) Len() int {
	return len(c.versions)
}

// Versions returns the version ids in ascending order.
func (c *Collection) Versions() []int64 {
	return slices.Clone(c.versions)
}

// Get returns the migration for a version id.
func (c *Collection) Get(id int64) (*Migration, bool) {
	m, ok := c.migrations[id]
	return m, ok
}

// Migrations returns the migrations in execution order: ascending for Up,
// descending for Down.
func (c *Collection) Migrations() []*Migration {
	out := make([]*Migration, 0, len(c.versions))
	for _, m := range c.All() {
		out = append(out, m)
	}

	return out
}

// All iterates the migrations in execution order.
func (c *Collection) All() iter.Seq2[int64, *Migration] {
	return func(yield func(int64, *Migration) bool) {
		ids := c.versions
		if c.direction == Down {
			ids = slices.Clone(ids)
			slices.Reverse(ids)
		}

		for _, id := range ids {
			if !yield(id, c.migrations[id]) {
				return
			}
		}
	}
}
