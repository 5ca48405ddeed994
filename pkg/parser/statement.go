package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/cbergoon/merkletree"
	"github.com/pkg/errors"
)

// ActionableStatement is one statement of a migration file: its exact tokens
// and, when the grammar recognised a prefix, the parsed Statement.
type ActionableStatement struct {
	Tokens []Token
	AST    *Statement
	Err    error
}

func (s *ActionableStatement) String() string {
	return join(s.Tokens)
}

// IsEmpty reports whether the statement consists only of whitespace,
// comments and an optional terminator.
func (s *ActionableStatement) IsEmpty() bool {
	for _, t := range s.Tokens {
		if !t.IsTrivia() && !t.IsTerminator() {
			return false
		}
	}

	return true
}

// Parsed reports whether a Statement was recognised.
func (s *ActionableStatement) Parsed() bool {
	return s.AST != nil
}

// StatementCollection is the ordered list of statements of one SQL source.
type StatementCollection struct {
	dialect    *Dialect
	statements []*ActionableStatement
}

// Parse tokenizes sql, splits it into statements and greedily parses each one.
//
// Only tokenizer failures are returned as errors. A statement that cannot be
// parsed keeps its TokensError in ActionableStatement.Err and is otherwise
// treated like any other statement.
//
// Example:
//
//	stmts, err := parser.Parse(parser.Postgres, "CREATE TABLE t (id INT); DROP TABLE t;")
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(stmts.Len())                  // 2
//	fmt.Println(stmts.Resources().Trackable()) // [] (created and dropped)
func Parse(d *Dialect, sql string) (*StatementCollection, error) {
	tokens, err := Tokenize(d, sql)
	if err != nil {
		return nil, errors.Wrap(err, "failed to tokenize SQL")
	}

	coll := &StatementCollection{dialect: d}
	for _, chunk := range Split(tokens) {
		stmt := &ActionableStatement{Tokens: chunk}
		if !stmt.IsEmpty() {
			stmt.AST, _, stmt.Err = GreedyParse(d, chunk)
		}

		coll.statements = append(coll.statements, stmt)
	}

	return coll, nil
}

// Dialect returns the dialect the collection was parsed with.
func (c *StatementCollection) Dialect() *Dialect {
	return c.dialect
}

// Statements returns all statements, including empty ones.
func (c *StatementCollection) Statements() []*ActionableStatement {
	return c.statements
}

// Len returns the number of statements.
func (c *StatementCollection) Len() int {
	return len(c.statements)
}

// String reproduces the source SQL exactly.
func (c *StatementCollection) String() string {
	var sb strings.Builder
	for _, s := range c.statements {
		sb.WriteString(s.String())
	}

	return sb.String()
}

// Executable returns the text of every non-empty statement, in order.
func (c *StatementCollection) Executable() []string {
	var out []string
	for _, s := range c.statements {
		if !s.IsEmpty() {
			out = append(out, s.String())
		}
	}

	return out
}

// Errors returns the parse errors of statements nothing could be recognised in.
func (c *StatementCollection) Errors() []error {
	var out []error
	for _, s := range c.statements {
		if s.Err != nil {
			out = append(out, s.Err)
		}
	}

	return out
}

// Resources folds the resources of every parsed statement in source order.
func (c *StatementCollection) Resources() *ResourceCollection {
	coll := NewResourceCollection()
	for _, s := range c.statements {
		if s.AST == nil {
			continue
		}

		for _, res := range s.AST.Resources() {
			coll.Upsert(res)
		}
	}

	return coll
}

// Checksum returns the hex encoded merkle root over the statements' text.
// Any change to the source, including whitespace, changes the checksum.
func (c *StatementCollection) Checksum() (string, error) {
	if len(c.statements) == 0 {
		return emptyChecksum(), nil
	}

	contents := make([]merkletree.Content, 0, len(c.statements))
	for _, s := range c.statements {
		contents = append(contents, statementContent{text: s.String()})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return "", errors.Wrap(err, "failed to build statement merkle tree")
	}

	return hex.EncodeToString(tree.MerkleRoot()), nil
}

// statementContent implements merkletree.Content.
type statementContent struct {
	text string
}

func (s statementContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(s.text))
	return h[:], nil
}

func (s statementContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(statementContent)
	if !ok {
		return false, nil
	}

	return s.text == o.text, nil
}

func emptyChecksum() string {
	h := sha256.Sum256(nil)
	return hex.EncodeToString(h[:])
}
