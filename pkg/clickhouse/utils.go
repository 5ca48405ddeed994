package clickhouse

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/parser"
)

// systemDatabases are never part of a snapshot. The swellow database holds the
// ledger and is excluded with them.
var systemDatabases = []string{
	"system",
	"information_schema",
	"INFORMATION_SCHEMA",
	ledger.Schema,
}

// buildDatabaseExclusion creates a "NOT IN" condition on columnName for the
// system databases plus ignore, returning the condition and its parameters.
func buildDatabaseExclusion(columnName string, ignore ...string) (string, []any) {
	names := append(append([]string{}, systemDatabases...), ignore...)

	placeholders := make([]string, len(names))
	params := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = "?"
		params[i] = name
	}

	return columnName + " NOT IN (" + strings.Join(placeholders, ", ") + ")", params
}

func (b *Backend) databaseExclusion(columnName string, ignore ...string) (string, []any) {
	return buildDatabaseExclusion(columnName, append(ignore, b.options.IgnoreDatabases...)...)
}

// cleanCreateStatement trims a CREATE statement and terminates it.
func cleanCreateStatement(createQuery string) string {
	cleaned := strings.TrimSpace(createQuery)
	if !strings.HasSuffix(cleaned, ";") {
		cleaned += ";"
	}

	return cleaned
}

// validateDDLStatement checks that ddl is a single CREATE statement the
// ClickHouse dialect recognises.
func validateDDLStatement(ddl string) error {
	stmts, err := parser.Parse(parser.ClickHouse, ddl)
	if err != nil {
		return err
	}

	executable := stmts.Executable()
	if len(executable) != 1 {
		return errors.Errorf("expected 1 statement, found %d", len(executable))
	}

	for _, s := range stmts.Statements() {
		if s.IsEmpty() {
			continue
		}

		if s.Err != nil {
			return s.Err
		}

		if s.AST.Create == nil {
			return errors.Errorf("expected a CREATE statement, found %s", s.AST.Verb())
		}
	}

	return nil
}
