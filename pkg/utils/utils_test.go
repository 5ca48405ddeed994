package utils_test

import (
	"testing"

	"github.com/pseudomuto/swellow/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestBacktickIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"table", "`table`"},
		{"database.table", "`database`.`table`"},
		{"db.schema.table", "`db`.`schema`.`table`"},
		{"`table`", "`table`"},
		{"`my.table`", "`my.table`"},
		{"`db`.table", "`db`.`table`"},
		{"we`ird", "`we``ird`"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.BacktickIdentifier(tt.input))
		})
	}
}

func TestIsBackticked(t *testing.T) {
	require.True(t, utils.IsBackticked("`table`"))
	require.False(t, utils.IsBackticked("table"))
	require.False(t, utils.IsBackticked("`db`.`table`"))
	require.False(t, utils.IsBackticked(""))
	require.Equal(t, "db.table", utils.StripBackticks("`db`.`table`"))
}

func TestSQLBuilder(t *testing.T) {
	tests := []struct {
		name     string
		builder  *utils.SQLBuilder
		expected string
	}{
		{
			name:     "empty",
			builder:  utils.NewSQLBuilder(),
			expected: "",
		},
		{
			name:     "CREATE DATABASE IF NOT EXISTS",
			builder:  utils.NewSQLBuilder().Create("DATABASE").IfNotExists().Name("test"),
			expected: "CREATE DATABASE IF NOT EXISTS `test`;",
		},
		{
			name:     "engine and comment",
			builder:  utils.NewSQLBuilder().Create("DATABASE").Name("analytics").Engine("Atomic").Comment("Analytics database"),
			expected: "CREATE DATABASE `analytics` ENGINE = Atomic COMMENT 'Analytics database';",
		},
		{
			name:     "escaped comment",
			builder:  utils.NewSQLBuilder().Create("DATABASE").Name("legacy").Comment("bob's data"),
			expected: "CREATE DATABASE `legacy` COMMENT 'bob\\'s data';",
		},
		{
			name:     "empty clauses are skipped",
			builder:  utils.NewSQLBuilder().Create("TABLE").Name("t").Engine("").Comment("").Raw("").Raw("USING delta"),
			expected: "CREATE TABLE `t` USING delta;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.builder.String())
		})
	}

	require.Equal(t, "CREATE SCHEMA `s`", utils.NewSQLBuilder().Create("SCHEMA").Name("s").StringWithoutSemicolon())
}
