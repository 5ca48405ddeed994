package config_test

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/pseudomuto/swellow/pkg/config"
	"github.com/pseudomuto/swellow/pkg/consts"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/swellow.yaml
var testConfigYAML string

func TestLoadConfig(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader(testConfigYAML))
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader("invalid: yaml: ["))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal swellow config")

		config, err = LoadConfig(strings.NewReader(""))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal swellow config")
	})

	t.Run("defaults", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader("dir: migrations\n"))
		require.NoError(t, err)
		require.Equal(t, DefaultEngine, config.Engine)
		require.Equal(t, DefaultLakehouseDriver, config.Lakehouse.Driver)
		require.Equal(t, "migrations", config.Dir)
		require.Empty(t, config.DB)
		require.Empty(t, config.ClickHouse.IgnoreDatabases)
		require.False(t, config.ClickHouse.MutationsSync)
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DefaultFile)
		require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), consts.ModeFile))

		config, err := LoadConfigFile(path)
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		config, err := LoadConfigFile("nonexistent.yaml")
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to open file")

		// Directory instead of file
		config, err = LoadConfigFile(t.TempDir())
		require.Error(t, err)
		require.Nil(t, config)
		require.True(t, strings.Contains(err.Error(), "failed to open file") ||
			strings.Contains(err.Error(), "failed to unmarshal swellow config"))
	})
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	config, err := Find(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	require.Equal(t, Default(), config)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), consts.ModeFile))

	config, err = Find(path)
	require.NoError(t, err)
	validateTestConfig(t, config)

	require.NoError(t, os.WriteFile(path, []byte("engine: ["), consts.ModeFile))
	_, err = Find(path)
	require.ErrorContains(t, err, "failed to unmarshal swellow config")
}

// validateTestConfig validates that a config contains the expected test data
func validateTestConfig(t *testing.T, config *Config) {
	t.Helper()
	require.NotNil(t, config)
	require.Equal(t, "clickhouse", config.Engine)
	require.Equal(t, "clickhouse://default:@localhost:9000/default", config.DB)
	require.Equal(t, "db/migrations", config.Dir)
	require.Equal(t, "/var/lib/node_exporter/swellow.prom", config.MetricsFile)
	require.Equal(t, TLS{CertFile: "certs/client.crt", KeyFile: "certs/client.key", CAFile: "certs/ca.crt"}, config.ClickHouse.TLS)
	require.Equal(t, []string{"scratch"}, config.ClickHouse.IgnoreDatabases)
	require.True(t, config.ClickHouse.MutationsSync)
	require.Equal(t, "/usr/lib/postgresql/16/bin/pg_dump", config.Postgres.PgDump)
	require.Equal(t, int32(4), config.Postgres.MaxConns)
	require.Equal(t, DefaultLakehouseDriver, config.Lakehouse.Driver)
	require.Equal(t, []string{"bronze", "silver"}, config.Lakehouse.Schemas)
}
