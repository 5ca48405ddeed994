package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// GreedyParse parses the longest prefix of tokens that the dialect's grammar
// accepts. Whitespace and comments are ignored. It returns the statement and
// the number of significant tokens it covers.
//
// Only the subject of a statement needs to be understood, so a statement such
// as "CREATE TABLE users (id INT) WITH (fillfactor = 70)" resolves to the
// prefix "CREATE TABLE users"; the remaining tokens are not interpreted.
//
// A *TokensError is returned when no prefix parses.
func GreedyParse(d *Dialect, tokens []Token) (*Statement, int, error) {
	significant := make([]lexer.Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsTrivia() {
			significant = append(significant, lexer.Token{
				Type:  t.typ,
				Value: t.Value,
				Pos:   lexer.Position{Line: t.Line, Column: t.Column},
			})
		}
	}

	// Trying the longest prefix first yields the same answer as keeping the
	// last success of an ascending search.
	for n := len(significant); n > 0; n-- {
		stmt, err := d.parsePrefix(significant[:n])
		if err == nil {
			return stmt, n, nil
		}
	}

	return nil, 0, &TokensError{Tokens: tokens}
}

func (d *Dialect) parsePrefix(tokens []lexer.Token) (*Statement, error) {
	peeker, err := lexer.Upgrade(&tokenSource{tokens: tokens})
	if err != nil {
		return nil, err
	}

	return d.parser.ParseFromLexer(peeker)
}

// tokenSource replays already lexed tokens.
type tokenSource struct {
	tokens []lexer.Token
	pos    int
}

func (s *tokenSource) Next() (lexer.Token, error) {
	if s.pos >= len(s.tokens) {
		var end lexer.Position
		if n := len(s.tokens); n > 0 {
			end = s.tokens[n-1].Pos
		}

		return lexer.EOFToken(end), nil
	}

	t := s.tokens[s.pos]
	s.pos++

	return t, nil
}
