package clickhouse

import "context"

// extractDictionaries returns the CREATE DICTIONARY statement of every
// dictionary.
func (b *Backend) extractDictionaries(ctx context.Context) ([]string, error) {
	condition, params := b.databaseExclusion("database")
	query := `
		SELECT
			create_table_query
		FROM system.tables
		WHERE ` + condition + `
		  AND engine = 'Dictionary'
		ORDER BY database, name
	`

	return b.collectCreateQueries(ctx, "dictionary", query, params...)
}
