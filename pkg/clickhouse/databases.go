package clickhouse

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/utils"
)

// extractDatabases generates a CREATE DATABASE statement for every user
// database. The default database always exists and is skipped.
func (b *Backend) extractDatabases(ctx context.Context) ([]string, error) {
	condition, params := b.databaseExclusion("name", "default")
	query := `
		SELECT
			name,
			engine,
			comment
		FROM system.databases
		WHERE ` + condition + `
		ORDER BY name
	`

	rows, err := b.conn.Query(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query databases")
	}
	defer func() { _ = rows.Close() }()

	var statements []string
	for rows.Next() {
		var name, engine string
		var comment sql.NullString

		if err := rows.Scan(&name, &engine, &comment); err != nil {
			return nil, errors.Wrap(err, "failed to scan database row")
		}

		ddl := generateDatabaseDDL(name, engine, comment.String)
		if err := validateDDLStatement(ddl); err != nil {
			return nil, errors.Wrapf(err, "generated invalid DDL for database %s", name)
		}

		statements = append(statements, ddl)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating database rows")
	}

	return statements, nil
}

// generateDatabaseDDL creates a CREATE DATABASE DDL statement from database metadata.
func generateDatabaseDDL(name, engine, comment string) string {
	// Atomic is the default engine.
	if engine == "Atomic" {
		engine = ""
	}

	return utils.NewSQLBuilder().
		Create("DATABASE").
		IfNotExists().
		Name(name).
		Engine(engine).
		Comment(comment).
		String()
}
