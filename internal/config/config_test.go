package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := Load(t.TempDir(), "config")
	require.NoError(t, err)

	assert.Equal(t, "ViralGen", cfg.AppName)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 5*time.Minute, cfg.Gemini.Timeout)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxVideoBytes)
	assert.Equal(t, int64(20*1024*1024), cfg.Upload.MaxImageBytes)
	assert.Equal(t, "feature-mimicry", cfg.Prompts.Analysis.CurrentVersion)
	assert.Equal(t, "sqlite", cfg.Credential.Store)
	assert.Equal(t, "gemini_api_key", cfg.Credential.Key)
	assert.Equal(t, 24*time.Hour, cfg.Staging.Retention)
	assert.True(t, cfg.Scheduler.Enabled)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	dir := t.TempDir()
	yaml := []byte(`
appName: Studio
gemini:
  model: gemini-2.5-pro
  timeout: 90s
prompts:
  analysis:
    currentVersion: rhythm-clone
credential:
  store: memory
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Setenv("SERVER_ADDR", ":9090")

	cfg, err := Load(dir, "config")
	require.NoError(t, err)

	assert.Equal(t, "Studio", cfg.AppName)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 90*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "rhythm-clone", cfg.Prompts.Analysis.CurrentVersion)
	assert.Equal(t, "memory", cfg.Credential.Store)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	base := Config{
		Gemini:     GeminiConfig{Model: "m"},
		Upload:     UploadConfig{MaxVideoBytes: 1, MaxImageBytes: 1},
		Credential: CredentialConfig{Store: "sqlite", Key: "k"},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Credential.Store = "redis"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Credential.Store = "mysql"
	assert.Error(t, bad.Validate(), "mysql store requires database.dbName")

	bad = base
	bad.Upload.MaxVideoBytes = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Upload.MaxImageBytes = 0
	assert.Error(t, bad.Validate())
}
