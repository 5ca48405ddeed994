package cmd

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/clickhouse"
	"github.com/pseudomuto/swellow/pkg/config"
	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/lakehouse"
	"github.com/pseudomuto/swellow/pkg/postgres"
	"github.com/pseudomuto/swellow/pkg/sqlite"
)

// Engines lists the accepted --engine values.
var Engines = []string{
	"postgres",
	"sqlite",
	"clickhouse",
	lakehouse.Delta.String(),
	lakehouse.Iceberg.String(),
	lakehouse.DatabricksDelta.String(),
}

// OpenBackend connects to the engine selected in cfg.
func OpenBackend(ctx context.Context, cfg *config.Config) (executor.Backend, error) {
	engine := strings.ToLower(strings.TrimSpace(cfg.Engine))

	switch engine {
	case "postgres", "postgresql":
		return postgres.Open(ctx, cfg.DB, postgres.Options{
			PgDump:   cfg.Postgres.PgDump,
			MaxConns: cfg.Postgres.MaxConns,
		})
	case "sqlite":
		return sqlite.Open(ctx, cfg.DB)
	case "clickhouse":
		return clickhouse.Open(ctx, cfg.DB, clickhouse.ClientOptions{
			TLSSettings: clickhouse.TLSSettings{
				CertFile: cfg.ClickHouse.TLS.CertFile,
				KeyFile:  cfg.ClickHouse.TLS.KeyFile,
				CAFile:   cfg.ClickHouse.TLS.CAFile,
			},
			IgnoreDatabases: cfg.ClickHouse.IgnoreDatabases,
			MutationsSync:   cfg.ClickHouse.MutationsSync,
		})
	}

	catalog, err := lakehouse.ParseCatalog(engine)
	if err != nil {
		return nil, errors.Errorf("unknown engine %q, expected one of: %s", cfg.Engine, strings.Join(Engines, ", "))
	}

	return lakehouse.Open(ctx, catalog, cfg.DB, lakehouse.Options{
		Driver:  cfg.Lakehouse.Driver,
		Schemas: cfg.Lakehouse.Schemas,
	})
}
