package clickhouse

import "context"

// extractTables returns the CREATE statement of every user table. Views,
// dictionaries, temporary tables and the inner tables of materialized views
// are skipped.
func (b *Backend) extractTables(ctx context.Context) ([]string, error) {
	condition, params := b.databaseExclusion("database")
	query := `
		SELECT
			create_table_query
		FROM system.tables
		WHERE ` + condition + `
		  AND engine NOT IN ('View', 'MaterializedView', 'Dictionary')
		  AND is_temporary = 0
		  AND name NOT LIKE '.inner_id.%'
		  AND name NOT LIKE '.inner.%'
		ORDER BY database, name
	`

	return b.collectCreateQueries(ctx, "table", query, params...)
}
