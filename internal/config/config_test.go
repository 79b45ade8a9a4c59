package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rencontre_test")
	t.Setenv("SERVER_PORT", "4001")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("FEDAPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("DEBUG", "true")

	LoadConfig()
	cfg := AppConfig

	assert.Equal(t, "postgres://localhost/rencontre_test", cfg.Database.DSN)
	assert.Equal(t, 4001, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.JWT.Secret)
	assert.Equal(t, "whsec", cfg.FedaPay.WebhookSecret)
	assert.True(t, cfg.Server.Debug)

	// значения по умолчанию
	assert.Equal(t, 60, cfg.JWT.AccessTTL)
	assert.Equal(t, 168, cfg.JWT.RefreshTTL)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "Africa/Porto-Novo", cfg.Server.Timezone)
}

func TestLoadConfig_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
  env: production
  frontend_url: https://rencontre.bj
database:
  url: postgres://db/rencontre
fedapay:
  api_url: https://api.fedapay.com/v1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_PATH", path)

	LoadConfig()
	cfg := AppConfig

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "https://rencontre.bj", cfg.Server.FrontendURL)
	assert.Equal(t, "https://api.fedapay.com/v1", cfg.FedaPay.APIURL)
	assert.Equal(t, 10, cfg.FedaPay.Timeout)
}
