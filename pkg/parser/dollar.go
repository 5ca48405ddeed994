package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var dollarTag = regexp.MustCompile(`^\$(?:[A-Za-z_][A-Za-z0-9_]*)?\$`)

// dollarQuote is the byte range of a $tag$ ... $tag$ body within the source.
type dollarQuote struct {
	start, end int
}

// scanDollarQuotes finds every dollar-quoted body in sql, skipping over
// strings, quoted identifiers, comments and identifiers (which may contain $)
// the same way the lexer does. A body only ends at the tag that opened it.
//
// Unterminated strings and comments end the scan; the lexer reports them.
func scanDollarQuotes(sql string) ([]dollarQuote, error) {
	var quotes []dollarQuote

	for i := 0; i < len(sql); {
		r, size := utf8.DecodeRuneInString(sql[i:])

		switch {
		case (r == 'e' || r == 'E') && strings.HasPrefix(sql[i+1:], "'"):
			i = skipQuoted(sql, i+1, '\'', true)
		case r == '\'':
			i = skipQuoted(sql, i, '\'', false)
		case r == '"':
			i = skipQuoted(sql, i, '"', false)
		case strings.HasPrefix(sql[i:], "--"):
			if n := strings.IndexAny(sql[i:], "\r\n"); n >= 0 {
				i += n
			} else {
				i = len(sql)
			}
		case strings.HasPrefix(sql[i:], "/*"):
			if n := strings.Index(sql[i+2:], "*/"); n >= 0 {
				i += n + 4
			} else {
				i = len(sql)
			}
		case r == '_' || unicode.IsLetter(r):
			i = skipIdent(sql, i+size)
		case r == '$':
			tag := dollarTag.FindString(sql[i:])
			if tag == "" {
				i++
				continue
			}

			n := strings.Index(sql[i+len(tag):], tag)
			if n < 0 {
				line, col := positionAt(sql, i)
				return nil, &TokenizeError{Line: line, Column: col, Msg: "unterminated dollar-quoted string " + tag}
			}

			end := i + len(tag) + n + len(tag)
			quotes = append(quotes, dollarQuote{start: i, end: end})
			i = end
		default:
			i += size
		}
	}

	return quotes, nil
}

// skipQuoted returns the offset just past the quoted run opening at sql[i].
// A doubled quote is an escaped quote; backslash escapes apply when escapes
// is set.
func skipQuoted(sql string, i int, quote byte, escapes bool) int {
	for j := i + 1; j < len(sql); j++ {
		switch sql[j] {
		case '\\':
			if escapes {
				j++
			}
		case quote:
			if j+1 < len(sql) && sql[j+1] == quote {
				j++
				continue
			}

			return j + 1
		}
	}

	return len(sql)
}

func skipIdent(sql string, i int) int {
	for i < len(sql) {
		r, size := utf8.DecodeRuneInString(sql[i:])
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			break
		}

		i += size
	}

	return i
}

// positionAt returns the 1-based line and rune column of the byte offset.
func positionAt(sql string, offset int) (int, int) {
	before := sql[:offset]
	line := strings.Count(before, "\n") + 1
	if n := strings.LastIndex(before, "\n"); n >= 0 {
		before = before[n+1:]
	}

	return line, utf8.RuneCountInString(before) + 1
}
