package lakehouse

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	results map[string][]row
	queries []string
}

func (f *fakeCatalog) fetch(_ context.Context, query string) ([]row, error) {
	f.queries = append(f.queries, query)

	rows, ok := f.results[query]
	if !ok {
		return nil, errors.Errorf("unexpected query: %s", query)
	}

	return rows, nil
}

func r(cols []string, values ...any) row {
	return row{columns: cols, values: values}
}

var (
	infoCols   = []string{"table_schema", "table_name", "table_type"}
	showCols   = []string{"namespace", "tableName", "isTemporary"}
	createCols = []string{"createtab_stmt"}
	descCols   = []string{"col_name", "data_type", "comment"}
	detailCols = []string{"format", "name", "location", "partitionColumns", "properties"}
)

const databricksListing = "SELECT table_schema, table_name, table_type FROM information_schema.tables " +
	"WHERE table_schema NOT IN ('information_schema', 'sys', 'swellow')"

func TestSnapshot_Databricks(t *testing.T) {
	fake := &fakeCatalog{results: map[string][]row{
		databricksListing: {
			r(infoCols, "sales", "orders", "MANAGED"),
			r(infoCols, "birds", "sightings", "MANAGED"),
			r(infoCols, "birds", "recent", "VIEW"),
		},
		"SHOW CREATE TABLE birds.recent":    {r(createCols, "CREATE VIEW birds.recent AS SELECT * FROM birds.sightings")},
		"SHOW CREATE TABLE birds.sightings": {r(createCols, "CREATE TABLE birds.sightings (id BIGINT)\nUSING delta;")},
		"SHOW CREATE TABLE sales.orders":    {r(createCols, "CREATE TABLE sales.orders (id BIGINT)\nUSING delta")},
	}}

	out, err := (&snapshotter{catalog: DatabricksDelta}).snapshot(context.Background(), fake.fetch)
	require.NoError(t, err)
	require.Equal(t, "CREATE DATABASE IF NOT EXISTS `birds`;\n\n"+
		"CREATE VIEW birds.recent AS SELECT * FROM birds.sightings;\n\n"+
		"CREATE TABLE birds.sightings (id BIGINT)\nUSING delta;\n\n"+
		"CREATE DATABASE IF NOT EXISTS `sales`;\n\n"+
		"CREATE TABLE sales.orders (id BIGINT)\nUSING delta;\n\n", out)
}

func TestSnapshot_StrictCatalogsFailOnShowCreate(t *testing.T) {
	fake := &fakeCatalog{results: map[string][]row{
		"SHOW TABLES IN lake": {r(showCols, "lake", "events", false)},
	}}

	_, err := (&snapshotter{catalog: Iceberg, schemas: []string{"lake"}}).snapshot(context.Background(), fake.fetch)
	require.ErrorContains(t, err, "failed to show create table lake.events")
}

func TestSnapshot_EmptyShowCreate(t *testing.T) {
	fake := &fakeCatalog{results: map[string][]row{
		databricksListing:                {r(infoCols, "sales", "orders", "MANAGED")},
		"SHOW CREATE TABLE sales.orders": {},
	}}

	_, err := (&snapshotter{catalog: DatabricksDelta}).snapshot(context.Background(), fake.fetch)
	require.EqualError(t, err, "'SHOW CREATE TABLE sales.orders' returned empty")
}

func TestSnapshot_SparkDeltaGeneratesStatements(t *testing.T) {
	fake := &fakeCatalog{results: map[string][]row{
		"SHOW SCHEMAS": {r([]string{"namespace"}, "swellow"), r([]string{"namespace"}, "lake")},
		"SHOW TABLES IN lake": {
			r(showCols, "lake", "events", false),
			r(showCols, "lake", "recent", false),
			r(showCols, "", "scratch", true),
		},
		"DESCRIBE TABLE lake.events": {
			r(descCols, "id", "bigint", nil),
			r(descCols, "kind", "string", "bird's kind"),
			r(descCols, "day", "date", ""),
			r(descCols, "", "", ""),
			r(descCols, "# Partition Information", "", ""),
			r(descCols, "day", "date", ""),
		},
		"DESCRIBE DETAIL lake.events": {
			r(detailCols, "delta", "spark_catalog.lake.events", "s3://lake/events", `["day"]`, `{"delta.appendOnly":"true","a":"b"}`),
		},
		"DESCRIBE TABLE lake.recent":  {r(descCols, "id", "bigint", nil)},
		"DESCRIBE DETAIL lake.recent": {r(detailCols, "delta", "spark_catalog.lake.recent", "", []any{}, nil)},
	}}

	out, err := (&snapshotter{catalog: Delta}).snapshot(context.Background(), fake.fetch)
	require.NoError(t, err)
	require.Equal(t, "CREATE DATABASE IF NOT EXISTS `lake`;\n\n"+
		"CREATE TABLE spark_catalog.lake.events (id bigint, kind string COMMENT 'bird\\'s kind', day date) USING delta "+
		"LOCATION 's3://lake/events' PARTITIONED BY (day) TBLPROPERTIES ('a'='b', 'delta.appendOnly'='true');\n\n"+
		"CREATE TABLE spark_catalog.lake.recent (id bigint) USING delta;\n\n", out)

	require.NotContains(t, fake.queries, "SHOW TABLES IN swellow")
	require.NotContains(t, fake.queries, "SHOW CREATE TABLE lake.scratch")
}

func TestCreateStatement_SkipsViewsWithoutStatement(t *testing.T) {
	fake := &fakeCatalog{results: map[string][]row{}}

	stmt, ok, err := (&snapshotter{catalog: Delta}).createStatement(
		context.Background(),
		fake.fetch,
		tableInfo{schema: "lake", name: "recent", kind: "VIEW"},
	)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, stmt)
}

func TestStringListAndMap(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, stringList([]any{"a", "b"}))
	require.Equal(t, []string{"day"}, stringList(`["day"]`))
	require.Nil(t, stringList("not json"))
	require.Nil(t, stringList(nil))

	require.Equal(t, map[string]string{"k": "1"}, stringMap(map[string]any{"k": 1}))
	require.Equal(t, map[string]string{"k": "v"}, stringMap(`{"k":"v"}`))
	require.Nil(t, stringMap(42))
}
