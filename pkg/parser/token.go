package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// TokenKind names the lexical class of a Token.
type TokenKind string

// Token kinds shared by every dialect.
const (
	Whitespace       TokenKind = "Whitespace"
	Comment          TokenKind = "Comment"
	MultilineComment TokenKind = "MultilineComment"
	DollarString     TokenKind = "DollarString"
	String           TokenKind = "String"
	QuotedIdent      TokenKind = "QuotedIdent"
	BacktickIdent    TokenKind = "BacktickIdent"
	Number           TokenKind = "Number"
	Param            TokenKind = "Param"
	Ident            TokenKind = "Ident"
	Operator         TokenKind = "Operator"
	Punct            TokenKind = "Punct"
)

// Token is a single lexical unit. Concatenating the Value of every token
// produced for a source string reproduces that string exactly.
type Token struct {
	Kind   TokenKind
	Value  string
	Line   int
	Column int

	typ lexer.TokenType
}

// IsTrivia reports whether the token is whitespace or a comment.
func (t Token) IsTrivia() bool {
	switch t.Kind {
	case Whitespace, Comment, MultilineComment:
		return true
	default:
		return false
	}
}

// IsTerminator reports whether the token is a statement terminator.
func (t Token) IsTerminator() bool {
	return t.Kind == Punct && t.Value == ";"
}

// Is reports whether the token is the given keyword, ignoring case.
func (t Token) Is(keyword string) bool {
	return t.Kind == Ident && strings.EqualFold(t.Value, keyword)
}

func (t Token) String() string {
	return t.Value
}

// Tokenize splits sql into tokens using the dialect's lexer.
//
// A TokenizeError is returned when the input violates the lexical grammar, for
// example an unterminated string, quoted identifier or block comment.
func Tokenize(d *Dialect, sql string) ([]Token, error) {
	var quotes []dollarQuote
	if d.dollarQuotes {
		var err error
		if quotes, err = scanDollarQuotes(sql); err != nil {
			return nil, err
		}
	}

	var tokens []Token
	offset := 0
	for _, q := range quotes {
		seg, err := lexSegment(d, sql, offset, q.start)
		if err != nil {
			return nil, err
		}

		line, col := positionAt(sql, q.start)
		tokens = append(tokens, seg...)
		tokens = append(tokens, Token{
			Kind:   DollarString,
			Value:  sql[q.start:q.end],
			Line:   line,
			Column: col,
			typ:    d.dollarType,
		})
		offset = q.end
	}

	seg, err := lexSegment(d, sql, offset, len(sql))
	if err != nil {
		return nil, err
	}
	tokens = append(tokens, seg...)

	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Value == "/" && tokens[i+1].Value == "*" && tokens[i+1].Line == tokens[i].Line &&
			tokens[i+1].Column == tokens[i].Column+1 {
			return nil, &TokenizeError{Line: tokens[i].Line, Column: tokens[i].Column, Msg: "unterminated block comment"}
		}
	}

	return tokens, nil
}

// lexSegment lexes sql[start:end], reporting positions relative to sql.
func lexSegment(d *Dialect, sql string, start, end int) ([]Token, error) {
	if start == end {
		return nil, nil
	}

	baseLine, baseCol := positionAt(sql, start)
	shift := func(line, col int) (int, int) {
		if line == 1 {
			col += baseCol - 1
		}
		return line + baseLine - 1, col
	}

	lex, err := d.lexer.LexString("", sql[start:end])
	if err != nil {
		return nil, &TokenizeError{Line: baseLine, Column: baseCol, Msg: err.Error()}
	}

	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		tokErr := newTokenizeError(err)
		tokErr.Line, tokErr.Column = shift(tokErr.Line, tokErr.Column)
		return nil, tokErr
	}

	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		if t.EOF() {
			break
		}

		line, col := shift(t.Pos.Line, t.Pos.Column)
		tokens = append(tokens, Token{
			Kind:   d.symbols[t.Type],
			Value:  t.Value,
			Line:   line,
			Column: col,
			typ:    t.Type,
		})
	}

	return tokens, nil
}

// Split breaks a token stream into statements. Only semicolons outside of
// parentheses and outside the BEGIN ... END body of a routine (CREATE
// FUNCTION, PROCEDURE or TRIGGER) terminate a statement; the terminator is
// kept with the statement it ends. Trailing tokens without a terminator form
// the final statement.
func Split(tokens []Token) [][]Token {
	var (
		out     [][]Token
		current []Token
		head    []Token
		prev    Token
		parens  int
		blocks  int
	)

	for _, t := range tokens {
		current = append(current, t)
		if t.IsTrivia() {
			continue
		}

		switch {
		case t.Kind == Punct && t.Value == "(":
			parens++
		case t.Kind == Punct && t.Value == ")":
			if parens > 0 {
				parens--
			}
		case t.Is("BEGIN") && parens == 0 && prev.Value != "." && isRoutine(head):
			blocks++
		case t.Is("CASE") && blocks > 0:
			blocks++
		case t.Is("END") && blocks > 0:
			blocks--
		case t.IsTerminator() && parens == 0 && blocks == 0:
			out = append(out, current)
			current, head, prev = nil, nil, Token{}
			continue
		}

		prev = t
		if len(head) < routineHeadLen {
			head = append(head, t)
		}
	}

	if len(current) > 0 {
		out = append(out, current)
	}

	return out
}

// routineHeadLen covers CREATE OR REPLACE TEMPORARY CONSTRAINT TRIGGER.
const routineHeadLen = 6

// isRoutine reports whether a statement's leading tokens start the definition
// of a routine whose body may be a BEGIN ... END block.
func isRoutine(head []Token) bool {
	if len(head) == 0 || !head[0].Is("CREATE") {
		return false
	}

	for _, t := range head[1:] {
		switch {
		case t.Is("FUNCTION"), t.Is("PROCEDURE"), t.Is("TRIGGER"):
			return true
		case t.Is("OR"), t.Is("REPLACE"), t.Is("TEMP"), t.Is("TEMPORARY"), t.Is("CONSTRAINT"):
		default:
			return false
		}
	}

	return false
}

func join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Value)
	}

	return sb.String()
}
