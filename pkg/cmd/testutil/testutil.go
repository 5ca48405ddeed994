package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/swellow/pkg/config"
	"github.com/pseudomuto/swellow/pkg/consts"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ProjectFixture represents a migration directory next to a SQLite database
// in an isolated temp directory.
type ProjectFixture struct {
	Dir    string
	Config *config.Config
	t      *testing.T
}

// MigrationFile represents a version directory with its scripts. Empty
// scripts are not written.
type MigrationFile struct {
	Name string
	Up   string
	Down string
}

// TestProject creates a temp directory with an empty migrations directory and
// a config pointing the sqlite engine at a database file inside it.
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	dir := t.TempDir()
	fixture := &ProjectFixture{
		Dir: dir,
		Config: &config.Config{
			Engine: "sqlite",
			DB:     filepath.Join(dir, "swellow.db"),
			Dir:    filepath.Join(dir, "migrations"),
			Lakehouse: config.Lakehouse{
				Driver: config.DefaultLakehouseDriver,
			},
		},
		t: t,
	}

	require.NoError(t, os.MkdirAll(fixture.Config.Dir, consts.ModeDir), "Failed to create migrations directory")
	return fixture
}

// WithMigrations adds version directories to the migrations directory.
func (p *ProjectFixture) WithMigrations(migrations []MigrationFile) *ProjectFixture {
	p.t.Helper()

	for _, m := range migrations {
		dir := filepath.Join(p.Config.Dir, m.Name)
		require.NoError(p.t, os.MkdirAll(dir, consts.ModeDir), "Failed to create version directory: %s", m.Name)

		for name, sql := range map[string]string{"up.sql": m.Up, "down.sql": m.Down} {
			if sql == "" {
				continue
			}

			err := os.WriteFile(filepath.Join(dir, name), []byte(sql), consts.ModeFile)
			require.NoError(p.t, err, "Failed to write migration file: %s/%s", m.Name, name)
		}
	}

	return p
}

// WriteConfig writes the fixture's config to swellow.yaml and returns its path.
func (p *ProjectFixture) WriteConfig() string {
	p.t.Helper()

	data, err := yaml.Marshal(p.Config)
	require.NoError(p.t, err, "Failed to encode config")

	path := p.GetConfigPath()
	require.NoError(p.t, os.WriteFile(path, data, consts.ModeFile), "Failed to write config")

	return path
}

// GetMigrationsDir returns the path to the migrations directory
func (p *ProjectFixture) GetMigrationsDir() string {
	return p.Config.Dir
}

// GetConfigPath returns the path to the swellow.yaml file
func (p *ProjectFixture) GetConfigPath() string {
	return filepath.Join(p.Dir, config.DefaultFile)
}

// MinimalMigrations returns two versions: a table with an index, and a second
// table that version 2 creates and rolls back.
func MinimalMigrations() []MigrationFile {
	return []MigrationFile{
		{
			Name: "001_create_users",
			Up:   "CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL);\nCREATE INDEX idx_users_email ON users (email);\n",
			Down: "DROP INDEX idx_users_email;\nDROP TABLE users;\n",
		},
		{
			Name: "002_create_orders",
			Up:   "CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users (id));\n",
			Down: "DROP TABLE orders;\n",
		},
	}
}
