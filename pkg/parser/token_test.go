package parser_test

import (
	"testing"

	. "github.com/pseudomuto/swellow/pkg/parser"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Run("classifies tokens", func(t *testing.T) {
		tokens, err := Tokenize(Postgres, "SELECT 'a''b', \"Col\", $1 -- done")
		require.NoError(t, err)

		var kinds []TokenKind
		for _, tok := range tokens {
			if !tok.IsTrivia() {
				kinds = append(kinds, tok.Kind)
			}
		}

		require.Equal(t, []TokenKind{Ident, String, Punct, QuotedIdent, Punct, Param}, kinds)
		require.Equal(t, Comment, tokens[len(tokens)-1].Kind)
	})

	t.Run("records positions", func(t *testing.T) {
		tokens, err := Tokenize(SQLite, "SELECT\n  x")
		require.NoError(t, err)
		require.Len(t, tokens, 3)
		require.Equal(t, 2, tokens[2].Line)
		require.Equal(t, 3, tokens[2].Column)
	})

	t.Run("dollar quoted bodies are a single token", func(t *testing.T) {
		tokens, err := Tokenize(Postgres, "AS $fn$ SELECT 1; $fn$")
		require.NoError(t, err)
		require.Equal(t, DollarString, tokens[2].Kind)
		require.Equal(t, "$fn$ SELECT 1; $fn$", tokens[2].Value)
	})

	t.Run("dollar quoted bodies end at their own tag", func(t *testing.T) {
		sql := "AS $body$ SELECT $x$ not the end $x$; $$ nor this $$ $body$ LANGUAGE sql"
		tokens, err := Tokenize(Postgres, sql)
		require.NoError(t, err)
		require.Equal(t, DollarString, tokens[2].Kind)
		require.Equal(t, "$body$ SELECT $x$ not the end $x$; $$ nor this $$ $body$", tokens[2].Value)
		require.Equal(t, "LANGUAGE", tokens[4].Value)
	})

	t.Run("dollar signs outside quotes", func(t *testing.T) {
		tokens, err := Tokenize(Postgres, "SELECT a$b$c, '$q$', $1 /* $q$ */")
		require.NoError(t, err)

		for _, tok := range tokens {
			require.NotEqual(t, DollarString, tok.Kind, tok.Value)
		}
		require.Equal(t, "a$b$c", tokens[2].Value)
	})

	t.Run("positions after a dollar quoted body", func(t *testing.T) {
		tokens, err := Tokenize(Postgres, "SELECT $$a\nb$$, x")
		require.NoError(t, err)
		require.Len(t, tokens, 6)
		require.Equal(t, "x", tokens[5].Value)
		require.Equal(t, 2, tokens[5].Line)
		require.Equal(t, 6, tokens[5].Column)
	})

	t.Run("spark double quotes are strings", func(t *testing.T) {
		tokens, err := Tokenize(Databricks, "SELECT \"it's\"")
		require.NoError(t, err)
		require.Equal(t, String, tokens[2].Kind)
	})

	errorTests := []struct {
		name    string
		dialect *Dialect
		sql     string
	}{
		{name: "unterminated string", dialect: Postgres, sql: "SELECT 'abc"},
		{name: "unterminated quoted identifier", dialect: Postgres, sql: "SELECT \"abc"},
		{name: "unterminated backtick identifier", dialect: ClickHouse, sql: "SELECT `abc"},
		{name: "unterminated block comment", dialect: SQLite, sql: "SELECT 1 /* never closed"},
		{name: "unterminated dollar quote", dialect: Postgres, sql: "SELECT $$abc"},
		{name: "mismatched dollar quote tags", dialect: Postgres, sql: "SELECT $a$ abc $b$"},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.dialect, tt.sql)
			require.Error(t, err)

			var tokErr *TokenizeError
			require.ErrorAs(t, err, &tokErr)
			require.Equal(t, 1, tokErr.Line)
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		dialect *Dialect
		sql     string
		want    []string
	}{
		{
			name:    "top level semicolons",
			dialect: Postgres,
			sql:     "CREATE TABLE t (a int, b text); INSERT INTO t VALUES ('x;y'); SELECT 1",
			want:    []string{"CREATE TABLE t (a int, b text);", " INSERT INTO t VALUES ('x;y');", " SELECT 1"},
		},
		{
			name:    "semicolons in comments",
			dialect: Postgres,
			sql:     "SELECT 1 -- a; b\n/* c; d */;",
			want:    []string{"SELECT 1 -- a; b\n/* c; d */;"},
		},
		{
			name:    "semicolons in parentheses",
			dialect: ClickHouse,
			sql:     "SELECT (1; 2); SELECT 3;",
			want:    []string{"SELECT (1; 2);", " SELECT 3;"},
		},
		{
			name:    "dollar quoted function body",
			dialect: Postgres,
			sql:     "CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql;\nSELECT f();",
			want:    []string{"CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql;", "\nSELECT f();"},
		},
		{
			name:    "trigger body",
			dialect: SQLite,
			sql:     "CREATE TRIGGER tr AFTER INSERT ON t BEGIN UPDATE t SET a = 1; END; BEGIN;",
			want:    []string{"CREATE TRIGGER tr AFTER INSERT ON t BEGIN UPDATE t SET a = 1; END;", " BEGIN;"},
		},
		{
			name:    "begin as a column name",
			dialect: Postgres,
			sql:     "CREATE TABLE periods (id int, begin date); CREATE TABLE other (id int); DROP TABLE periods;",
			want:    []string{"CREATE TABLE periods (id int, begin date);", " CREATE TABLE other (id int);", " DROP TABLE periods;"},
		},
		{
			name:    "begin as a rename target",
			dialect: Postgres,
			sql:     "ALTER TABLE periods RENAME COLUMN begin TO starts_at; DROP TABLE periods;",
			want:    []string{"ALTER TABLE periods RENAME COLUMN begin TO starts_at;", " DROP TABLE periods;"},
		},
		{
			name:    "begin in an insert",
			dialect: SQLite,
			sql:     "INSERT INTO periods (begin) VALUES (1); SELECT begin FROM periods;",
			want:    []string{"INSERT INTO periods (begin) VALUES (1);", " SELECT begin FROM periods;"},
		},
		{
			name:    "temporary trigger body with case",
			dialect: SQLite,
			sql:     "CREATE TEMP TRIGGER tr AFTER INSERT ON t BEGIN UPDATE t SET a = CASE WHEN b THEN 1 ELSE 2 END; END; SELECT 1;",
			want:    []string{"CREATE TEMP TRIGGER tr AFTER INSERT ON t BEGIN UPDATE t SET a = CASE WHEN b THEN 1 ELSE 2 END; END;", " SELECT 1;"},
		},
		{
			name:    "begin atomic function body",
			dialect: Postgres,
			sql:     "CREATE OR REPLACE FUNCTION f() RETURNS int LANGUAGE sql BEGIN ATOMIC SELECT 1; END; SELECT f();",
			want:    []string{"CREATE OR REPLACE FUNCTION f() RETURNS int LANGUAGE sql BEGIN ATOMIC SELECT 1; END;", " SELECT f();"},
		},
		{
			name:    "trailing whitespace",
			dialect: Hive,
			sql:     "SELECT 1;\n",
			want:    []string{"SELECT 1;", "\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := Tokenize(tt.dialect, tt.sql)
			require.NoError(t, err)

			var got []string
			for _, chunk := range Split(tokens) {
				text := ""
				for _, tok := range chunk {
					text += tok.Value
				}

				got = append(got, text)
			}

			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect(" Postgres ")
	require.NoError(t, err)
	require.Equal(t, Postgres, d)
	require.Equal(t, "postgres", d.Name())

	_, err = ParseDialect("oracle")
	require.ErrorContains(t, err, "unknown SQL dialect")

	require.Equal(t, []string{"clickhouse", "databricks", "hive", "postgres", "sqlite"}, DialectNames())
}
