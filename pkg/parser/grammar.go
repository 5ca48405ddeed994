package parser

import (
	"strings"
)

// ObjectType is a normalised object type keyword such as TABLE or MATERIALIZED VIEW.
type ObjectType string

// Capture implements participle.Capture.
func (o *ObjectType) Capture(values []string) error {
	*o = ObjectType(strings.ToUpper(strings.Join(values, " ")))
	return nil
}

func (o ObjectType) String() string {
	return string(o)
}

type (
	// Statement is the subject of a single SQL statement. Exactly one of the
	// statement fields is set.
	Statement struct {
		Create     *CreateStmt `parser:"( @@"`
		Alter      *AlterStmt  `parser:"| @@"`
		Rename     *RenameStmt `parser:"| @@"`
		Drop       *DropStmt   `parser:"| @@"`
		Other      *OtherStmt  `parser:"| @@ )"`
		Terminated bool        `parser:"@';'?"`
	}

	// ObjectName is a possibly qualified object name such as public.users.
	// Quoting is kept as written.
	ObjectName struct {
		Parts []string `parser:"@(Ident | QuotedIdent | BacktickIdent) ( '.' @(Ident | QuotedIdent | BacktickIdent) )*"`
	}

	// CreateStmt represents CREATE statements.
	// Syntax: CREATE [OR REPLACE] [modifiers...] {INDEX ... | ROLE ... | USER ... | object_type ...}
	CreateStmt struct {
		OrReplace bool              `parser:"'CREATE' @('OR' 'REPLACE')?"`
		Modifiers []string          `parser:"@('TEMPORARY' | 'TEMP' | 'UNLOGGED' | 'EXTERNAL' | 'GLOBAL' | 'LOCAL' | 'UNIQUE' | 'RECURSIVE' | 'VIRTUAL' | 'TRANSIENT')*"`
		Index     *CreateIndexStmt  `parser:"( @@"`
		Role      *CreateRoleStmt   `parser:"| @@"`
		Object    *CreateObjectStmt `parser:"| @@ )"`
	}

	// CreateObjectStmt is the subject of CREATE TABLE, VIEW, SCHEMA and friends.
	// Syntax: object_type [IF NOT EXISTS] name
	CreateObjectStmt struct {
		Type        ObjectType  `parser:"@('MATERIALIZED' 'VIEW' | 'TABLE' | 'VIEW' | 'SEQUENCE' | 'TYPE' | 'SCHEMA' | 'DATABASE' | 'FUNCTION' | 'PROCEDURE' | 'DICTIONARY' | 'EXTENSION' | 'TRIGGER')"`
		IfNotExists bool        `parser:"@('IF' 'NOT' 'EXISTS')?"`
		Name        *ObjectName `parser:"@@"`
	}

	// CreateIndexStmt represents CREATE INDEX statements. The index name is optional.
	// Syntax: INDEX [CONCURRENTLY] [IF NOT EXISTS] [name] ON [ONLY] table
	CreateIndexStmt struct {
		Concurrently bool        `parser:"'INDEX' @'CONCURRENTLY'?"`
		IfNotExists  bool        `parser:"@('IF' 'NOT' 'EXISTS')?"`
		Name         *ObjectName `parser:"( @@ 'ON'"`
		Unnamed      bool        `parser:"| @'ON' )"`
		Only         bool        `parser:"@'ONLY'?"`
		Table        *ObjectName `parser:"@@?"`
	}

	// CreateRoleStmt represents CREATE ROLE and CREATE USER statements.
	// Syntax: {ROLE | USER} [IF NOT EXISTS] name [, ...] [options...]
	CreateRoleStmt struct {
		Type        ObjectType    `parser:"@('ROLE' | 'USER')"`
		IfNotExists bool          `parser:"@('IF' 'NOT' 'EXISTS')?"`
		Names       []*ObjectName `parser:"@@ ( ',' @@ )*"`
		Options     []string      `parser:"@!';'*"`
	}

	// AlterStmt represents ALTER statements with zero or more comma separated actions.
	// Syntax: ALTER object_type [IF EXISTS] [ONLY] name [action [, ...]]
	AlterStmt struct {
		Type     ObjectType     `parser:"'ALTER' @('MATERIALIZED' 'VIEW' | 'TABLE' | 'VIEW' | 'INDEX' | 'SEQUENCE' | 'TYPE' | 'SCHEMA' | 'DATABASE' | 'ROLE' | 'USER' | 'FUNCTION' | 'PROCEDURE' | 'DICTIONARY' | 'EXTENSION' | 'TRIGGER')"`
		IfExists bool           `parser:"@('IF' 'EXISTS')?"`
		Only     bool           `parser:"@'ONLY'?"`
		Name     *ObjectName    `parser:"@@"`
		Actions  []*AlterAction `parser:"( @@ ( ',' @@ )* )?"`
	}

	// AlterAction is either a rename of the altered object or an opaque clause.
	AlterAction struct {
		RenameTo *ObjectName `parser:"  'RENAME' 'TO' @@"`
		Clause   []*Fragment `parser:"| @@+"`
	}

	// Fragment is one top-level token or parenthesised group of an ALTER clause.
	Fragment struct {
		Group *Group `parser:"  @@"`
		Token string `parser:"| @!(',' | '(' | ')' | ';')"`
	}

	// Group is a balanced parenthesised token run.
	Group struct {
		Items []*GroupItem `parser:"'(' @@* ')'"`
	}

	// GroupItem is a token or nested group inside a Group.
	GroupItem struct {
		Group *Group `parser:"  @@"`
		Token string `parser:"| @!('(' | ')')"`
	}

	// RenameStmt represents ClickHouse style RENAME statements.
	// Syntax: RENAME {TABLE | DATABASE | DICTIONARY} a TO b [, c TO d ...]
	RenameStmt struct {
		Type  ObjectType    `parser:"'RENAME' @('TABLE' | 'DATABASE' | 'DICTIONARY')"`
		Pairs []*RenamePair `parser:"@@ ( ',' @@ )*"`
	}

	// RenamePair is a single source/target pair of a RENAME statement.
	RenamePair struct {
		From *ObjectName `parser:"@@"`
		To   *ObjectName `parser:"'TO' @@"`
	}

	// DropStmt represents DROP statements.
	// Syntax: DROP [TEMPORARY] object_type [CONCURRENTLY] [IF EXISTS] name [, ...] [CASCADE | RESTRICT]
	DropStmt struct {
		Temporary    bool          `parser:"'DROP' @'TEMPORARY'?"`
		Type         ObjectType    `parser:"@('MATERIALIZED' 'VIEW' | 'TABLE' | 'VIEW' | 'INDEX' | 'SEQUENCE' | 'TYPE' | 'SCHEMA' | 'DATABASE' | 'ROLE' | 'USER' | 'FUNCTION' | 'PROCEDURE' | 'DICTIONARY' | 'EXTENSION' | 'TRIGGER')"`
		Concurrently bool          `parser:"@'CONCURRENTLY'?"`
		IfExists     bool          `parser:"@('IF' 'EXISTS')?"`
		Names        []*ObjectName `parser:"@@ ( ',' @@ )*"`
		Behavior     string        `parser:"@('CASCADE' | 'RESTRICT')?"`
	}

	// OtherStmt is any statement led by a known verb that does not change an
	// object's identity (queries, DML, grants, session settings and so on).
	OtherStmt struct {
		Verb string   `parser:"@('SELECT' | 'WITH' | 'INSERT' | 'UPDATE' | 'DELETE' | 'MERGE' | 'UPSERT' | 'REPLACE' | 'TRUNCATE' | 'COMMENT' | 'GRANT' | 'REVOKE' | 'SET' | 'RESET' | 'ANALYZE' | 'VACUUM' | 'OPTIMIZE' | 'COPY' | 'CALL' | 'DO' | 'EXPLAIN' | 'SHOW' | 'DESCRIBE' | 'DESC' | 'USE' | 'BEGIN' | 'START' | 'COMMIT' | 'ROLLBACK' | 'REFRESH' | 'CACHE' | 'UNCACHE' | 'MSCK' | 'ATTACH' | 'DETACH' | 'SYSTEM' | 'REINDEX' | 'CLUSTER' | 'LOCK' | 'NOTIFY' | 'LISTEN' | 'PRAGMA' | 'VALUES')"`
		Rest []string `parser:"@!';'*"`
	}
)

func (n *ObjectName) String() string {
	if n == nil {
		return Absent
	}

	return strings.Join(n.Parts, ".")
}

// Verb returns the leading keyword of the statement in upper case.
func (s *Statement) Verb() string {
	switch {
	case s.Create != nil:
		return OpCreate
	case s.Alter != nil:
		return OpAlter
	case s.Rename != nil:
		return OpRename
	case s.Drop != nil:
		return OpDrop
	case s.Other != nil:
		return strings.ToUpper(s.Other.Verb)
	default:
		return ""
	}
}

// Resources returns the unfolded resources touched by the statement, one per
// affected object or ALTER action. Statements without identity semantics
// return nil.
func (s *Statement) Resources() []*Resource {
	switch {
	case s.Create != nil:
		return s.Create.resources()
	case s.Alter != nil:
		return s.Alter.resources()
	case s.Rename != nil:
		return s.Rename.resources()
	case s.Drop != nil:
		return s.Drop.resources()
	default:
		return nil
	}
}

func (c *CreateStmt) resources() []*Resource {
	switch {
	case c.Index != nil:
		return []*Resource{newResource("INDEX", Absent, c.Index.Name.String(), OpCreate)}
	case c.Role != nil:
		typ := c.Role.Type
		if typ == "ROLE" && c.Role.login() {
			typ = "USER"
		}

		out := make([]*Resource, 0, len(c.Role.Names))
		for _, name := range c.Role.Names {
			out = append(out, newResource(typ, Absent, name.String(), OpCreate))
		}

		return out
	case c.Object != nil:
		return []*Resource{newResource(c.Object.Type, Absent, c.Object.Name.String(), OpCreate)}
	default:
		return nil
	}
}

func (r *CreateRoleStmt) login() bool {
	for _, opt := range r.Options {
		if strings.EqualFold(opt, "LOGIN") {
			return true
		}
	}

	return false
}

func (a *AlterStmt) resources() []*Resource {
	name := a.Name.String()
	if len(a.Actions) == 0 {
		return []*Resource{newResource(a.Type, name, name, OpAlter)}
	}

	out := make([]*Resource, 0, len(a.Actions))
	for _, action := range a.Actions {
		if action.RenameTo != nil {
			out = append(out, newResource(a.Type, name, action.RenameTo.String(), OpRename))
			continue
		}

		out = append(out, newResource(a.Type, name, name, OpAlter))
	}

	return out
}

func (r *RenameStmt) resources() []*Resource {
	out := make([]*Resource, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		out = append(out, newResource(r.Type, p.From.String(), p.To.String(), OpRename))
	}

	return out
}

func (d *DropStmt) resources() []*Resource {
	out := make([]*Resource, 0, len(d.Names))
	for _, name := range d.Names {
		out = append(out, newResource(d.Type, name.String(), Absent, OpDrop))
	}

	return out
}
