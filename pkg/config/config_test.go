package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(orig)
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 20, cfg.Render.MaxRowsPerTable)
	assert.Equal(t, 0, cfg.Retention.MaxCellDeltasPerTable)
	assert.Empty(t, cfg.Retention.RetainColumns)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RENDER_MAX_ROWS_PER_TABLE", "7")
	t.Setenv("RETENTION_MAX_CELL_DELTAS_PER_TABLE", "500")
	t.Setenv("RETENTION_RETAIN_COLUMNS", "id, title ,owner")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Render.MaxRowsPerTable)
	assert.Equal(t, 500, cfg.Retention.MaxCellDeltasPerTable)
	assert.Equal(t, []string{"id", "title", "owner"}, cfg.Retention.RetainColumns)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("env: staging\nrender:\n  max_rows_per_table: 12\nretention:\n  retain_columns: \"a,b\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, 12, cfg.Render.MaxRowsPerTable)
	assert.Equal(t, []string{"a", "b"}, cfg.Retention.RetainColumns)
}

func TestLoad_RejectsNegativeValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RENDER_MAX_ROWS_PER_TABLE", "-1")

	_, err := Load()
	assert.Error(t, err)
}
