package clickhouse

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Snapshot rebuilds the schema as a script that recreates it from scratch.
//
// The extraction follows this order:
//  1. Databases - extracted first as they define the namespace
//  2. Tables - full DDL from system.tables
//  3. Dictionaries - may read from the tables above
//  4. Views - both regular and materialized, last since they may depend on
//     tables and dictionaries
//
// System databases and the swellow database are excluded and every statement
// is validated before it is returned.
func (b *Backend) Snapshot(ctx context.Context) (string, error) {
	extractors := []struct {
		name string
		fn   func(context.Context) ([]string, error)
	}{
		{"databases", b.extractDatabases},
		{"tables", b.extractTables},
		{"dictionaries", b.extractDictionaries},
		{"views", b.extractViews},
	}

	var sb strings.Builder
	for _, ex := range extractors {
		stmts, err := ex.fn(ctx)
		if err != nil {
			return "", errors.Wrapf(err, "failed to extract %s", ex.name)
		}

		for _, stmt := range stmts {
			sb.WriteString(stmt)
			sb.WriteString("\n\n")
		}
	}

	return sb.String(), nil
}

// collectCreateQueries runs a query selecting one CREATE statement per row,
// then cleans and validates each statement.
func (b *Backend) collectCreateQueries(ctx context.Context, kind, query string, params ...any) ([]string, error) {
	rows, err := b.conn.Query(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %ss", kind)
	}
	defer func() { _ = rows.Close() }()

	var statements []string
	for rows.Next() {
		var createQuery string
		if err := rows.Scan(&createQuery); err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s row", kind)
		}

		if strings.TrimSpace(createQuery) == "" {
			continue
		}

		cleaned := cleanCreateStatement(createQuery)
		if err := validateDDLStatement(cleaned); err != nil {
			return nil, errors.Wrapf(err, "generated invalid DDL for %s (query: %s)", kind, cleaned)
		}

		statements = append(statements, cleaned)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "error iterating %s rows", kind)
	}

	return statements, nil
}
