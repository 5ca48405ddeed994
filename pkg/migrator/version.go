package migrator

import (
	"cmp"
	"io/fs"
	"slices"
	"strconv"
	"strings"
)

// Version is a version directory discovered in the migration directory.
type Version struct {
	// ID is the integer prefix of the directory name.
	ID int64
	// Name is the directory name, e.g. 001_init.
	Name string
}

// ParseVersionID extracts the version id from a directory name such as
// 001_create_users. The id is everything before the first underscore.
func ParseVersionID(name string) (int64, error) {
	prefix, _, _ := strings.Cut(name, "_")
	if prefix == "" {
		return 0, newError(InvalidVersionFormat, name, nil, "invalid version format: %q", name)
	}

	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, newError(InvalidVersionNumber, name, nil, "invalid version number: %q", name)
	}

	return id, nil
}

// Versions returns every version directory sorted by id. Duplicate ids are an
// error even when they fall outside any range later requested.
func (l *Loader) Versions() ([]Version, error) {
	info, err := fs.Stat(l.FS, ".")
	if err != nil || !info.IsDir() {
		return nil, newError(InvalidDirectory, l.Dir, err, "directory does not exist or is not a directory: %q", l.Dir)
	}

	entries, err := fs.ReadDir(l.FS, ".")
	if err != nil {
		return nil, newError(IO, l.Dir, err, "failed to read directory %q", l.Dir)
	}

	seen := make(map[int64]string, len(entries))
	versions := make([]Version, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			l.log().Debug("Skipping non-directory", "path", entry.Name())
			continue
		}

		id, err := ParseVersionID(entry.Name())
		if err != nil {
			l.log().Debug("Skipping directory without a version id", "path", entry.Name(), "err", err)
			continue
		}

		if first, ok := seen[id]; ok {
			return nil, newError(
				DuplicateVersionNumber,
				l.Dir,
				nil,
				"duplicate version_id %d found in directories %q and %q",
				id,
				first,
				entry.Name(),
			)
		}

		seen[id] = entry.Name()
		versions = append(versions, Version{ID: id, Name: entry.Name()})
	}

	slices.SortFunc(versions, func(a, b Version) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return versions, nil
}

// Collect returns the versions with from < id <= to, sorted ascending.
func (l *Loader) Collect(from, to int64) ([]Version, error) {
	all, err := l.Versions()
	if err != nil {
		return nil, err
	}

	var out []Version
	for _, v := range all {
		if v.ID > from && v.ID <= to {
			out = append(out, v)
			continue
		}

		l.log().Debug("Skipping version out of range", "version", v.ID, "from", from, "to", to)
	}

	if len(out) == 0 {
		return nil, newError(NoMigrationsInRange, l.Dir, nil, "no migrations found in %q for range (%d, %d]", l.Dir, from, to)
	}

	return out, nil
}

// Next returns one more than the highest version id in the directory, or 1
// when it has no versions yet.
func (l *Loader) Next() (int64, error) {
	all, err := l.Versions()
	if err != nil {
		return 0, err
	}

	if len(all) == 0 {
		return 1, nil
	}

	return all[len(all)-1].ID + 1, nil
}
