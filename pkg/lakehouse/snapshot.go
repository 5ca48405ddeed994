package lakehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/utils"
)

type (
	row struct {
		columns []string
		values  []any
	}

	fetchFunc func(ctx context.Context, query string) ([]row, error)

	tableInfo struct {
		schema string
		name   string
		kind   string
	}

	snapshotter struct {
		catalog Catalog
		schemas []string
	}
)

func (r row) at(i int) any {
	if i < len(r.values) {
		return r.values[i]
	}

	return nil
}

func (r row) get(name string) any {
	for i, c := range r.columns {
		if strings.EqualFold(c, name) {
			return r.values[i]
		}
	}

	return nil
}

func (r row) str(name string) string {
	return asString(r.get(name))
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func (r row) bool(name string) bool {
	switch b := r.get(name).(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	default:
		return false
	}
}

// snapshot writes a CREATE DATABASE statement for every schema followed by
// the CREATE statement of each of its tables and views.
func (s *snapshotter) snapshot(ctx context.Context, fetch fetchFunc) (string, error) {
	tables, err := s.listTables(ctx, fetch)
	if err != nil {
		return "", err
	}

	var (
		sb      strings.Builder
		current string
	)

	for _, t := range tables {
		if t.schema != current {
			sb.WriteString(utils.NewSQLBuilder().Create("DATABASE").IfNotExists().Name(t.schema).String() + "\n\n")
			current = t.schema
		}

		stmt, ok, err := s.createStatement(ctx, fetch, t)
		if err != nil {
			return "", err
		}

		if !ok {
			continue
		}

		sb.WriteString(strings.TrimRight(strings.TrimSpace(stmt), ";"))
		sb.WriteString(";\n\n")
	}

	return sb.String(), nil
}

// listTables returns every table ordered by schema and name. The swellow
// schema and temporary tables are excluded.
func (s *snapshotter) listTables(ctx context.Context, fetch fetchFunc) ([]tableInfo, error) {
	var tables []tableInfo

	if s.catalog == DatabricksDelta {
		rows, err := fetch(ctx, fmt.Sprintf(
			"SELECT table_schema, table_name, table_type FROM information_schema.tables "+
				"WHERE table_schema NOT IN ('information_schema', 'sys', '%s')",
			ledger.Schema,
		))
		if err != nil {
			return nil, errors.Wrap(err, "failed to list tables")
		}

		for _, r := range rows {
			tables = append(tables, tableInfo{schema: r.str("table_schema"), name: r.str("table_name"), kind: r.str("table_type")})
		}
	} else {
		schemas, err := s.listSchemas(ctx, fetch)
		if err != nil {
			return nil, err
		}

		for _, schema := range schemas {
			rows, err := fetch(ctx, "SHOW TABLES IN "+schema)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to list tables in %s", schema)
			}

			for _, r := range rows {
				if r.bool("isTemporary") {
					continue
				}

				ns := r.str("namespace")
				if ns == "" {
					ns = schema
				}

				tables = append(tables, tableInfo{schema: ns, name: r.str("tableName"), kind: "TABLE"})
			}
		}
	}

	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].schema != tables[j].schema {
			return tables[i].schema < tables[j].schema
		}

		return tables[i].name < tables[j].name
	})

	return tables, nil
}

func (s *snapshotter) listSchemas(ctx context.Context, fetch fetchFunc) ([]string, error) {
	if len(s.schemas) > 0 {
		return s.schemas, nil
	}

	rows, err := fetch(ctx, "SHOW SCHEMAS")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list schemas")
	}

	var out []string
	for _, r := range rows {
		name := asString(r.at(0))
		if name != "" && name != ledger.Schema {
			out = append(out, name)
		}
	}

	return out, nil
}

// createStatement returns the CREATE statement of a table. False is returned
// for views whose statement cannot be recovered.
func (s *snapshotter) createStatement(ctx context.Context, fetch fetchFunc, t tableInfo) (string, bool, error) {
	fqn := t.schema + "." + t.name

	rows, err := fetch(ctx, "SHOW CREATE TABLE "+fqn)
	if err == nil {
		if len(rows) == 0 || asString(rows[0].at(0)) == "" {
			return "", false, errors.Errorf("'SHOW CREATE TABLE %s' returned empty", fqn)
		}

		return asString(rows[0].at(0)), true, nil
	}

	switch {
	case s.catalog.strictShowCreate():
		return "", false, errors.Wrapf(err, "failed to show create table %s", fqn)
	case strings.Contains(strings.ToUpper(t.kind), "VIEW"):
		return "", false, nil
	}

	stmt, err := s.generateCreateTable(ctx, fetch, fqn)
	if err != nil {
		return "", false, err
	}

	return stmt, true, nil
}

// generateCreateTable rebuilds a CREATE TABLE statement from DESCRIBE TABLE
// and DESCRIBE DETAIL.
func (s *snapshotter) generateCreateTable(ctx context.Context, fetch fetchFunc, fqn string) (string, error) {
	columns, err := fetch(ctx, "DESCRIBE TABLE "+fqn)
	if err != nil {
		return "", errors.Wrapf(err, "failed to describe table %s", fqn)
	}

	details, err := fetch(ctx, "DESCRIBE DETAIL "+fqn)
	if err != nil {
		return "", errors.Wrapf(err, "failed to describe detail of %s", fqn)
	}

	if len(details) == 0 {
		return "", errors.Errorf("'DESCRIBE DETAIL %s' returned empty", fqn)
	}

	var defs []string
	for _, c := range columns {
		name := c.str("col_name")

		// Partition information follows the column list after a blank or
		// commented row.
		if name == "" || strings.HasPrefix(name, "#") {
			break
		}

		def := name + " " + c.str("data_type")
		if comment := c.str("comment"); comment != "" {
			def += " COMMENT '" + strings.ReplaceAll(comment, "'", "\\'") + "'"
		}

		defs = append(defs, def)
	}

	detail := details[0]
	name := detail.str("name")
	if name == "" {
		name = fqn
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (%s) USING %s", name, strings.Join(defs, ", "), s.catalog.Using())

	if location := detail.str("location"); location != "" {
		fmt.Fprintf(&sb, " LOCATION '%s'", location)
	}

	if partitions := stringList(detail.get("partitionColumns")); len(partitions) > 0 {
		fmt.Fprintf(&sb, " PARTITIONED BY (%s)", strings.Join(partitions, ", "))
	}

	if props := stringMap(detail.get("properties")); len(props) > 0 {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("'%s'='%s'", k, props[k])
		}

		fmt.Fprintf(&sb, " TBLPROPERTIES (%s)", strings.Join(pairs, ", "))
	}

	return sb.String(), nil
}

// stringList accepts a list column as returned by the driver, either decoded
// or as its JSON text.
func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			out = append(out, asString(e))
		}
		return out
	case string:
		var out []string
		if json.Unmarshal([]byte(l), &out) == nil {
			return out
		}
	}

	return nil
}

// stringMap accepts a map column as returned by the driver, either decoded or
// as its JSON text.
func stringMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, e := range m {
			out[k] = asString(e)
		}
		return out
	case string:
		var out map[string]string
		if json.Unmarshal([]byte(m), &out) == nil {
			return out
		}
	}

	return nil
}
