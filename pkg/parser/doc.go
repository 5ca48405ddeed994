// Package parser provides a resilient, participle-based reader for migration SQL.
//
// Migration files are written in the SQL dialect of their target engine and
// routinely contain syntax that no small grammar could fully describe. This
// package therefore only aims to understand the subject of each statement: the
// object type, its name, and any top-level rename or drop. Everything after the
// subject is kept verbatim so scripts can be re-emitted exactly as written.
//
// The pipeline has four stages:
//
//   - Tokenize turns raw SQL into a flat token stream using a dialect-specific
//     participle lexer. Whitespace and comments are kept as tokens.
//   - Split breaks the stream into statements on top-level semicolons only.
//   - GreedyParse finds the longest prefix of a statement's significant tokens
//     that the grammar accepts and returns the resulting Statement.
//   - ResourceCollection folds the parsed statements of a file into one
//     Resource per affected object, tracking renames and drops.
//
// Basic usage:
//
//	stmts, err := parser.Parse(parser.Postgres, `
//		CREATE TABLE users (id BIGINT PRIMARY KEY);
//		ALTER TABLE users RENAME TO members;
//	`)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, res := range stmts.Resources().Resources() {
//		fmt.Println(res) // TABLE -1 -> members [CREATE RENAME]
//	}
//
// Statements that cannot be parsed at all are still part of the collection and
// are still executed by the migrator; they simply contribute no resources.
package parser
