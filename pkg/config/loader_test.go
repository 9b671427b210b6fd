package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	base := `
server:
  port: "8080"
db:
  host: localhost
  port: 5432
  user: app
  name: app
jwt:
  secret: base-secret
  ttl: 24h
storage:
  public_base_url: http://localhost:8080
  max_upload_mb: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(base), 0o644))

	local := `
db:
  password: devpassword
jwt:
  secret: local-secret
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.yaml"), []byte(local), 0o644))
	return dir
}

func TestLoadBaseOnly(t *testing.T) {
	dir := writeConfigDir(t)

	cfg, err := Load("base", dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "base-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 25, cfg.Storage.MaxUploadMB)
}

func TestLoadEnvOverlay(t *testing.T) {
	dir := writeConfigDir(t)

	cfg, err := Load("local", dir)
	require.NoError(t, err)

	// overlay wins where set, base fills the rest
	assert.Equal(t, "local-secret", cfg.JWT.Secret)
	assert.Equal(t, "devpassword", cfg.DB.Password)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadMissingOverlayIsFine(t *testing.T) {
	dir := writeConfigDir(t)

	cfg, err := Load("production", dir)
	require.NoError(t, err)
	assert.Equal(t, "base-secret", cfg.JWT.Secret)
}

func TestLoadMissingBaseFails(t *testing.T) {
	_, err := Load("local", t.TempDir())
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	dir := writeConfigDir(t)

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load("local", dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestGetConfigEnvDefault(t *testing.T) {
	t.Setenv("CONFIG_ENV", "")
	assert.Equal(t, "local", GetConfigEnv())

	t.Setenv("CONFIG_ENV", "production")
	assert.Equal(t, "production", GetConfigEnv())
}
