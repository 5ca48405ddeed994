package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the config file read when --config is not given.
	DefaultFile = "swellow.yaml"

	// DefaultEngine is used when no engine is configured.
	DefaultEngine = "postgres"

	// DefaultLakehouseDriver is the database/sql driver for lakehouse engines.
	DefaultLakehouseDriver = "databricks"
)

type (
	// TLS locates the client certificate, key and CA bundle for mTLS.
	TLS struct {
		CertFile string `yaml:"cert_file,omitempty"`
		KeyFile  string `yaml:"key_file,omitempty"`
		CAFile   string `yaml:"ca_file,omitempty"`
	}

	// ClickHouse represents ClickHouse-specific configuration settings.
	ClickHouse struct {
		// TLS enables mTLS when a certificate is configured.
		TLS TLS `yaml:"tls,omitempty"`

		// IgnoreDatabases are left out of snapshots.
		IgnoreDatabases []string `yaml:"ignore_databases,omitempty"`

		// MutationsSync releases the lock with a synchronous mutation even when
		// lightweight deletes are available.
		MutationsSync bool `yaml:"mutations_sync,omitempty"`
	}

	// Postgres represents PostgreSQL-specific configuration settings.
	Postgres struct {
		// PgDump is the pg_dump binary used for snapshots.
		PgDump string `yaml:"pg_dump,omitempty"`

		// MaxConns caps the connection pool.
		MaxConns int32 `yaml:"max_conns,omitempty"`
	}

	// Lakehouse configures the Spark and Databricks engines.
	Lakehouse struct {
		// Driver is the database/sql driver name.
		Driver string `yaml:"driver,omitempty"`

		// Schemas limits snapshots of Spark catalogs to these schemas.
		Schemas []string `yaml:"schemas,omitempty"`
	}

	// Config represents the swellow configuration file.
	Config struct {
		// Engine selects the database backend.
		Engine string `yaml:"engine"`

		// DB is the connection string.
		DB string `yaml:"db"`

		// Dir is the directory containing the version directories.
		Dir string `yaml:"dir"`

		// MetricsFile, when set, receives Prometheus metrics after every command.
		MetricsFile string `yaml:"metrics_file,omitempty"`

		ClickHouse ClickHouse `yaml:"clickhouse,omitempty"`
		Postgres   Postgres   `yaml:"postgres,omitempty"`
		Lakehouse  Lakehouse  `yaml:"lakehouse,omitempty"`
	}
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

func (c *Config) applyDefaults() {
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}

	if c.Lakehouse.Driver == "" {
		c.Lakehouse.Driver = DefaultLakehouseDriver
	}
}

// LoadConfig parses a configuration from the provided io.Reader and fills in
// defaults for anything left unset.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`
//	engine: clickhouse
//	db: localhost:9000
//	dir: db/migrations
//	`))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Println(cfg.Engine, cfg.Dir)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal swellow config")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfigFile loads a configuration from the specified file path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Find loads path when it exists and falls back to Default otherwise. A
// config file that exists but cannot be parsed is an error.
func Find(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadConfigFile(path)
}
