package parser

import (
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Dialect bundles the lexer and statement grammar for one SQL flavour.
type Dialect struct {
	name    string
	lexer   *lexer.StatefulDefinition
	parser  *participle.Parser[Statement]
	symbols map[lexer.TokenType]TokenKind

	// dollarQuotes enables $tag$ ... $tag$ bodies, which are located by
	// scanDollarQuotes before the remaining text is lexed.
	dollarQuotes bool
	dollarType   lexer.TokenType
}

var (
	// Postgres lexes dollar-quoted bodies, E'' strings and $n parameters.
	Postgres = withDollarQuotes(newDialect("postgres", []lexer.SimpleRule{
		{Name: "String", Pattern: `[eE]'(?:[^'\\]|\\.|'')*'|'(?:[^']|'')*'`},
		{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
	}))

	// SQLite accepts all three identifier quoting styles.
	SQLite = newDialect("sqlite", []lexer.SimpleRule{
		{Name: "String", Pattern: `'(?:[^']|'')*'`},
		{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
		{Name: "BacktickIdent", Pattern: "`(?:[^`]|``)*`"},
	})

	// ClickHouse strings allow backslash escapes.
	ClickHouse = newDialect("clickhouse", []lexer.SimpleRule{
		{Name: "String", Pattern: `'(?:[^'\\]|\\.|'')*'`},
		{Name: "QuotedIdent", Pattern: `"(?:[^"\\]|\\.)*"`},
		{Name: "BacktickIdent", Pattern: "`(?:[^`\\\\]|\\\\.)*`"},
	})

	// Databricks is used for Delta tables. Double quotes delimit strings.
	Databricks = newDialect("databricks", sparkRules())

	// Hive is used for Iceberg tables.
	Hive = newDialect("hive", sparkRules())

	dialects = map[string]*Dialect{
		Postgres.name:   Postgres,
		SQLite.name:     SQLite,
		ClickHouse.name: ClickHouse,
		Databricks.name: Databricks,
		Hive.name:       Hive,
	}
)

func sparkRules() []lexer.SimpleRule {
	return []lexer.SimpleRule{
		{Name: "String", Pattern: `'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`},
		{Name: "BacktickIdent", Pattern: "`(?:[^`]|``)*`"},
	}
}

// ParseDialect returns the dialect registered under name (case-insensitive).
func ParseDialect(name string) (*Dialect, error) {
	if d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}

	return nil, errors.Errorf("unknown SQL dialect %q (expected one of %s)", name, strings.Join(DialectNames(), ", "))
}

// DialectNames returns the sorted names of all known dialects.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Name returns the dialect's registered name.
func (d *Dialect) Name() string {
	return d.name
}

func (d *Dialect) String() string {
	return d.name
}

// newDialect assembles the lexer from the shared leading rules, the dialect's
// quoting rules and the shared trailing rules. Rule order matters: the first
// pattern that matches wins.
func newDialect(name string, quoting []lexer.SimpleRule) *Dialect {
	rules := []lexer.SimpleRule{
		{Name: string(Whitespace), Pattern: `\s+`},
		{Name: string(Comment), Pattern: `--[^\r\n]*`},
		{Name: string(MultilineComment), Pattern: `/\*(?s:.*?)\*/`},
	}

	rules = append(rules, quoting...)

	// Every dialect declares the same symbols so the grammar can reference them.
	for _, kind := range []TokenKind{DollarString, String, QuotedIdent, BacktickIdent} {
		if !hasRule(rules, kind) {
			rules = append(rules, lexer.SimpleRule{Name: string(kind), Pattern: `[^\s\S]`})
		}
	}

	rules = append(rules,
		lexer.SimpleRule{Name: string(Number), Pattern: `(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`},
		lexer.SimpleRule{Name: string(Param), Pattern: `\$\d+`},
		lexer.SimpleRule{Name: string(Ident), Pattern: `[\p{L}_][\p{L}\p{N}_$]*`},
		lexer.SimpleRule{Name: string(Operator), Pattern: `::|->>|->|#>>|#>|<>|!=|<=|>=|\|\||=>|<<|>>|[-+*/%<>=!~^&|#@?:]`},
		lexer.SimpleRule{Name: string(Punct), Pattern: `[(),;.\[\]{}]`},
	)

	def := lexer.MustSimple(rules)
	d := &Dialect{
		name:    name,
		lexer:   def,
		symbols: make(map[lexer.TokenType]TokenKind),
		parser: participle.MustBuild[Statement](
			participle.Lexer(def),
			participle.Elide(string(Whitespace), string(Comment), string(MultilineComment)),
			participle.CaseInsensitive(string(Ident)),
			participle.UseLookahead(participle.MaxLookahead),
		),
	}

	for sym, typ := range def.Symbols() {
		d.symbols[typ] = TokenKind(sym)
	}

	return d
}

// withDollarQuotes marks d as supporting dollar-quoted strings. Matching tags
// need a backreference, which Go's regexp lacks, so these bodies are found by
// scanDollarQuotes rather than by a lexer rule.
func withDollarQuotes(d *Dialect) *Dialect {
	d.dollarQuotes = true
	d.dollarType = d.lexer.Symbols()[string(DollarString)]
	return d
}

func hasRule(rules []lexer.SimpleRule, kind TokenKind) bool {
	for _, r := range rules {
		if r.Name == string(kind) {
			return true
		}
	}

	return false
}
