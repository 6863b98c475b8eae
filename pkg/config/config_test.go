package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultValues(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaultValues()

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, 8731, cfg.ServerPort)
	assert.Equal(t, "local", cfg.UserID)
}

func TestDefaultsDoNotOverrideExplicitValues(t *testing.T) {
	cfg := &Config{Model: "gpt-4o", ServerPort: 9000}
	cfg.setDefaultValues()

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 9000, cfg.ServerPort)
}

func TestDSNFallsBackToEnv(t *testing.T) {
	t.Setenv("DEALCOACH_MYSQL_DSN", "user:pass@tcp(localhost:3306)/dealcoach?parseTime=true")
	cfg := &Config{}
	cfg.setDefaultValues()
	assert.Contains(t, cfg.MySQLDSN, "dealcoach")
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"model": "gpt-4o", "ai_enabled": true, "default_state": "TX"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.True(t, cfg.AIEnabled)
	assert.Equal(t, "TX", cfg.DefaultState)
	assert.Equal(t, 8731, cfg.ServerPort, "defaults fill unset fields")
}

func TestLoadConfigRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
