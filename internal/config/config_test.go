package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/botmanage/internal/config"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalYAML = `
discord:
  client_id: cid
  client_secret: csecret
  bot_token: bot
jwt:
  secret: s3cr3t
`

func TestLoad_DefaultsAndValidation(t *testing.T) {
	cfg, err := config.Load(writeYAML(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "botmanage", cfg.Cache.Prefix)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	_, err := config.Load(writeYAML(t, `
discord:
  client_id: cid
  client_secret: csecret
  bot_token: bot
`))
	assert.Error(t, err)
}

func TestLoad_RequiresDiscordCredentials(t *testing.T) {
	_, err := config.Load(writeYAML(t, `
jwt:
  secret: s
`))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := config.Load(writeYAML(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "redis.internal", cfg.Cache.Host)
	assert.Equal(t, 6380, cfg.Cache.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestLoad_MissingFileUsesEnvOnly(t *testing.T) {
	t.Setenv("DISCORD_CLIENT_ID", "cid")
	t.Setenv("DISCORD_CLIENT_SECRET", "cs")
	t.Setenv("DISCORD_BOT_TOKEN", "bot")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "cid", cfg.Discord.ClientID)
}
