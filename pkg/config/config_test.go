package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	cfg, err := LoadFromReader("yaml", []byte(""))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.False(t, cfg.Report.Enabled)
}

func TestLoadFromReader_Overrides(t *testing.T) {
	content := []byte(`
log:
  level: debug
storage:
  type: cos
  bucket: artifacts
  region: ap-guangzhou
database:
  type: postgres
  host: db.internal
  port: 5432
report:
  enabled: true
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.Equal(t, "artifacts", cfg.Storage.Bucket)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Report.Enabled)
}

func TestValidate_RejectsUnknownStorage(t *testing.T) {
	_, err := LoadFromReader("yaml", []byte("storage:\n  type: ftp\n"))
	assert.Error(t, err)
}

func TestValidate_CosRequiresBucket(t *testing.T) {
	_, err := LoadFromReader("yaml", []byte("storage:\n  type: cos\n"))
	assert.Error(t, err)
}

func TestValidate_RejectsUnknownDatabase(t *testing.T) {
	_, err := LoadFromReader("yaml", []byte("database:\n  type: oracle\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/twiggy.yaml")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Storage.Type)
}
