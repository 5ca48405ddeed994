package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildDatabaseExclusion(t *testing.T) {
	tests := []struct {
		name           string
		columnName     string
		ignore         []string
		expectedQuery  string
		expectedParams []any
	}{
		{
			name:           "only system databases",
			columnName:     "database",
			expectedQuery:  "database NOT IN (?, ?, ?, ?)",
			expectedParams: []any{"system", "information_schema", "INFORMATION_SCHEMA", "swellow"},
		},
		{
			name:           "with default",
			columnName:     "name",
			ignore:         []string{"default"},
			expectedQuery:  "name NOT IN (?, ?, ?, ?, ?)",
			expectedParams: []any{"system", "information_schema", "INFORMATION_SCHEMA", "swellow", "default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params := buildDatabaseExclusion(tt.columnName, tt.ignore...)
			require.Equal(t, tt.expectedQuery, query)
			require.Equal(t, tt.expectedParams, params)
		})
	}

	// The shared list must not be modified by appending ignored names.
	require.Len(t, systemDatabases, 4)
}

func TestCleanCreateStatement(t *testing.T) {
	require.Equal(t, "CREATE TABLE t (id UInt64) ENGINE = Memory;", cleanCreateStatement("  CREATE TABLE t (id UInt64) ENGINE = Memory\n"))
	require.Equal(t, "CREATE DATABASE analytics;", cleanCreateStatement("CREATE DATABASE analytics;"))
}

func TestValidateDDLStatement(t *testing.T) {
	tests := []struct {
		name    string
		ddl     string
		wantErr string
	}{
		{name: "table", ddl: "CREATE TABLE analytics.events (id UInt64, ts DateTime) ENGINE = MergeTree ORDER BY id;"},
		{name: "database", ddl: "CREATE DATABASE analytics ENGINE = Atomic;"},
		{name: "materialized view", ddl: "CREATE MATERIALIZED VIEW analytics.daily TO analytics.totals AS SELECT count() FROM analytics.events;"},
		{name: "dictionary", ddl: "CREATE DICTIONARY analytics.users (id UInt64) PRIMARY KEY id SOURCE(NULL()) LAYOUT(FLAT()) LIFETIME(0);"},
		{name: "not a create", ddl: "DROP TABLE analytics.events;", wantErr: "expected a CREATE statement, found DROP"},
		{name: "two statements", ddl: "CREATE DATABASE a; CREATE DATABASE b;", wantErr: "expected 1 statement, found 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDDLStatement(tt.ddl)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}
