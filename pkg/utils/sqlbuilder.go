package utils

import (
	"fmt"
	"strings"
)

// SQLBuilder provides a fluent interface for building the DDL emitted by
// snapshots.
//
// Example usage:
//
//	sql := utils.NewSQLBuilder().
//		Create("DATABASE").
//		IfNotExists().
//		Name("analytics").
//		Engine("Replicated('/clickhouse/analytics', '{shard}', '{replica}')").
//		Comment("Analytics database").
//		String()
//	// CREATE DATABASE IF NOT EXISTS `analytics` ENGINE = Replicated(...) COMMENT 'Analytics database';
type SQLBuilder struct {
	parts []string
}

// NewSQLBuilder creates a new SQLBuilder instance.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{parts: make([]string, 0, 8)}
}

// Create adds a CREATE clause with the specified object type.
func (b *SQLBuilder) Create(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "CREATE", objectType)
	return b
}

// IfNotExists adds an IF NOT EXISTS clause.
func (b *SQLBuilder) IfNotExists() *SQLBuilder {
	b.parts = append(b.parts, "IF", "NOT", "EXISTS")
	return b
}

// Name adds a backticked object name.
func (b *SQLBuilder) Name(name string) *SQLBuilder {
	if name != "" {
		b.parts = append(b.parts, BacktickIdentifier(name))
	}

	return b
}

// Engine adds an ENGINE clause. Nothing is added for an empty engine.
func (b *SQLBuilder) Engine(engine string) *SQLBuilder {
	if engine != "" {
		b.parts = append(b.parts, "ENGINE", "=", engine)
	}

	return b
}

// Comment adds a COMMENT clause, quoting and escaping the text.
func (b *SQLBuilder) Comment(comment string) *SQLBuilder {
	if comment != "" {
		b.parts = append(b.parts, "COMMENT", fmt.Sprintf("'%s'", strings.ReplaceAll(comment, "'", "\\'")))
	}

	return b
}

// Raw adds SQL text as is.
func (b *SQLBuilder) Raw(sql string) *SQLBuilder {
	if sql != "" {
		b.parts = append(b.parts, sql)
	}

	return b
}

// String builds and returns the final SQL statement with a semicolon.
func (b *SQLBuilder) String() string {
	if len(b.parts) == 0 {
		return ""
	}

	return b.StringWithoutSemicolon() + ";"
}

// StringWithoutSemicolon builds the statement without terminating it.
func (b *SQLBuilder) StringWithoutSemicolon() string {
	return strings.Join(b.parts, " ")
}
