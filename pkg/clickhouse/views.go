package clickhouse

import "context"

// extractViews returns the CREATE statement of every view and materialized
// view.
func (b *Backend) extractViews(ctx context.Context) ([]string, error) {
	condition, params := b.databaseExclusion("database")
	query := `
		SELECT
			create_table_query
		FROM system.tables
		WHERE ` + condition + `
		  AND engine IN ('View', 'MaterializedView')
		ORDER BY database, name
	`

	return b.collectCreateQueries(ctx, "view", query, params...)
}
