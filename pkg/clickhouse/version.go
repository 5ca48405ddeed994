package clickhouse

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// release is the feature line of a server, e.g. 23.3 for "23.3.1.2823".
type release struct {
	major, minor int
}

// lightweightDelete reports whether DELETE FROM is generally available, which
// happened in 23.3. Older servers need a mutation to remove the lock row.
func (r release) lightweightDelete() bool {
	return r.major > 23 || (r.major == 23 && r.minor >= 3)
}

// queryRelease asks the server for its version.
func (b *Backend) queryRelease(ctx context.Context) (*release, error) {
	var raw string
	if err := b.conn.QueryRow(ctx, "SELECT version()").Scan(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to query ClickHouse version")
	}

	r, err := parseRelease(raw)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// parseRelease reads the major and minor numbers from version strings such as
// "24.8.4.13 (official build)" or "22.8.2.11-testing".
func parseRelease(raw string) (release, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(raw), func(r rune) bool {
		return r == '.' || r == '-' || r == ' '
	})

	if len(fields) >= 2 {
		major, mErr := strconv.Atoi(fields[0])
		minor, nErr := strconv.Atoi(fields[1])
		if mErr == nil && nErr == nil {
			return release{major: major, minor: minor}, nil
		}
	}

	return release{}, errors.Errorf("invalid ClickHouse version: %q", raw)
}
