package lakehouse

import (
	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/parser"
)

// Catalog is the table format and metastore of a lakehouse.
type Catalog int

const (
	DatabricksDelta Catalog = iota
	Delta
	Iceberg
)

var catalogNames = map[Catalog]string{
	DatabricksDelta: "databricks-delta",
	Delta:           "spark-delta",
	Iceberg:         "spark-iceberg",
}

// ParseCatalog resolves an engine name such as spark-iceberg.
func ParseCatalog(name string) (Catalog, error) {
	for c, n := range catalogNames {
		if n == name {
			return c, nil
		}
	}

	return 0, errors.Errorf("unknown lakehouse catalog: %q", name)
}

// IsCatalog reports whether name is a lakehouse engine name.
func IsCatalog(name string) bool {
	_, err := ParseCatalog(name)
	return err == nil
}

func (c Catalog) String() string {
	return catalogNames[c]
}

// Using is the table format named in USING clauses.
func (c Catalog) Using() string {
	if c == Iceberg {
		return "iceberg"
	}

	return "delta"
}

// Dialect returns the parser dialect of migration scripts.
func (c Catalog) Dialect() *parser.Dialect {
	if c == Iceberg {
		return parser.Hive
	}

	return parser.Databricks
}

// strictShowCreate reports whether SHOW CREATE TABLE is expected to work for
// every table and view, making its failure fatal.
func (c Catalog) strictShowCreate() bool {
	return c == DatabricksDelta || c == Iceberg
}
