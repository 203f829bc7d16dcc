package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "patchbay-records.db", cfg.SQLiteRecords)
	assert.Equal(t, "patchbay-graph.db", cfg.SQLiteGraph)
	assert.Equal(t, "patchbay-records.db", cfg.RecordDSN())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patchbay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: postgres
postgres:
  dsn: postgres://patchbay@localhost/patchbay
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "postgres://patchbay@localhost/patchbay", cfg.RecordDSN())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patchbay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sqlite:\n  records: from-file.db\n"), 0o644))

	t.Setenv("PATCHBAY_SQLITE_RECORDS", "from-env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.SQLiteRecords)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patchbay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: oracle\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patchbay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: postgres\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres.dsn")
}
