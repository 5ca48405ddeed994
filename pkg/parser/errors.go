package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// TokenizeError is returned when SQL text violates the dialect's lexical grammar.
type TokenizeError struct {
	Line   int
	Column int
	Msg    string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("tokenizer error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

func newTokenizeError(err error) *TokenizeError {
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return &TokenizeError{Line: lexErr.Pos.Line, Column: lexErr.Pos.Column, Msg: lexErr.Msg}
	}

	return &TokenizeError{Line: 1, Column: 1, Msg: err.Error()}
}

// TokensError is returned when no prefix of a statement's tokens could be
// parsed into a Statement. It carries the full token slice.
type TokensError struct {
	Tokens []Token
}

func (e *TokensError) Error() string {
	values := make([]string, 0, len(e.Tokens))
	for _, t := range e.Tokens {
		if !t.IsTrivia() {
			values = append(values, fmt.Sprintf("%s(%q)", t.Kind, t.Value))
		}
	}

	return "failed to parse tokens into statement: [" + strings.Join(values, " ") + "]"
}
