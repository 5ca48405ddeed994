package clickhouse

import (
	"context"
	"math"
	"reflect"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/ledger"
	"github.com/pseudomuto/swellow/pkg/parser"
)

// ErrTransactionsUnsupported is returned by Begin.
var ErrTransactionsUnsupported = errors.New("clickhouse does not support transactions")

// Backend migrates a ClickHouse server over the native protocol.
type Backend struct {
	conn    driver.Conn
	options ClientOptions
	server  *release
}

// Open connects to ClickHouse and verifies the connection. The DSN is either
// a clickhouse:// URL or a bare host:port.
//
// Example:
//
//	backend, err := clickhouse.Open(ctx, "localhost:9000", clickhouse.ClientOptions{})
//	if err != nil {
//		return err
//	}
//	defer backend.Close()
func Open(ctx context.Context, dsn string, opts ClientOptions) (*Backend, error) {
	chOpts, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if opts.UsesTLS() {
		tlsConfig, err := GetTLSConfig(opts)
		if err != nil {
			return nil, err
		}

		chOpts.TLS = tlsConfig
	}

	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open clickhouse connection")
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to connect to clickhouse")
	}

	return &Backend{conn: conn, options: opts}, nil
}

func parseDSN(dsn string) (*clickhouse.Options, error) {
	if !strings.Contains(dsn, "://") {
		return &clickhouse.Options{Addr: []string{dsn}}, nil
	}

	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse clickhouse connection string")
	}

	return opts, nil
}

func (b *Backend) Name() string             { return "clickhouse" }
func (b *Backend) Dialect() *parser.Dialect { return parser.ClickHouse }
func (b *Backend) Transactional() bool      { return false }

func (b *Backend) Begin(context.Context) error    { return ErrTransactionsUnsupported }
func (b *Backend) Commit(context.Context) error   { return nil }
func (b *Backend) Rollback(context.Context) error { return nil }

// Execute runs a single statement.
func (b *Backend) Execute(ctx context.Context, sql string) error {
	return b.conn.Exec(ctx, sql)
}

// FetchOptionalInt64 returns the first column of the first row. Signed
// integers and unsigned integers that fit in an int64 are accepted, nullable
// or not. Any other column type is a ledger.ColumnTypeMismatchError.
func (b *Backend) FetchOptionalInt64(ctx context.Context, sql string) (int64, bool, error) {
	rows, err := b.conn.Query(ctx, sql)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return 0, false, rows.Err()
	}

	columns := rows.ColumnTypes()
	if len(columns) == 0 {
		return 0, false, &ledger.ColumnTypeMismatchError{Column: 0, Expected: "Int64", Found: "no columns"}
	}

	dest := reflect.New(columns[0].ScanType())
	if err := rows.Scan(dest.Interface()); err != nil {
		return 0, false, err
	}

	return toInt64(dest.Elem(), columns[0].DatabaseTypeName())
}

func toInt64(v reflect.Value, typeName string) (int64, bool, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0, false, nil
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true, nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(v.Uint()), true, nil
	case reflect.Uint, reflect.Uint64:
		if v.Uint() <= math.MaxInt64 {
			return int64(v.Uint()), true, nil
		}
	}

	return 0, false, &ledger.ColumnTypeMismatchError{Column: 0, Expected: "Int64", Found: typeName}
}

// Close closes the ClickHouse connection
func (b *Backend) Close() error {
	return b.conn.Close()
}
