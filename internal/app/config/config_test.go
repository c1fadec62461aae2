package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFromFile(t *testing.T) {
	path := writeConfig(t, `
env = "development"
service_port = 9090

[database]
driver = "sqlite"
sqlite_path = "/tmp/carematch.db"

[auth]
mode = "jwt"
[auth.jwt]
secret = "s3cret"
expires_in = "30m"

[events]
sink = "kafka"
brokers = ["kafka-1:9092", "kafka-2:9092"]

[lifecycle]
strict_order_consistency = true
`)

	cfg, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServicePort)
	assert.Equal(t, "file:/tmp/carematch.db?_busy_timeout=10000&_txlock=immediate", cfg.Database.ConnString())
	assert.Equal(t, "s3cret", cfg.Auth.JWT.Token)
	assert.Equal(t, 30*time.Minute, cfg.Auth.JWT.ExpiresIn)
	assert.Equal(t, "HS256", cfg.Auth.JWT.SigningMethod.Alg())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, "carematch.lifecycle", cfg.Events.Topic)
	assert.True(t, cfg.Lifecycle.StrictOrderConsistency)
	assert.Equal(t, "Asia/Tokyo", cfg.Lifecycle.Location().String())
	assert.False(t, cfg.MinIO.Enabled())
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "postgres"
host = "db"
user = "care"
name = "carematch"

[auth.jwt]
secret = "from-file"
`)
	t.Setenv("CAREMATCH_AUTH_JWT_SECRET", "from-env")
	t.Setenv("CAREMATCH_SERVICE_PORT", "7000")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWT.Token)
	assert.Equal(t, 7000, cfg.ServicePort)
	assert.Equal(t, "cache", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "host=db port=5432 user=care dbname=carematch sslmode=disable", cfg.Database.ConnString())
}

func TestInvalidRedisPort(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "sqlite"
[auth.jwt]
secret = "x"
`)
	t.Setenv("REDIS_PORT", "not-a-number")

	_, err := FromFile(path)
	assert.ErrorContains(t, err, "redis port must be int value")
}

func validConfig() Config {
	return Config{
		Env:         EnvDevelopment,
		ServicePort: 8080,
		Log:         LogConfig{Level: "info", Format: "text"},
		Database:    DatabaseConfig{Driver: "sqlite", SQLitePath: "x.db"},
		Auth: AuthConfig{
			Mode: AuthDev,
			Dev:  DevConfig{Subject: "dev", Role: "supporter"},
		},
		Events:    EventsConfig{Sink: SinkNone},
		Lifecycle: LifecycleConfig{Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid dev", func(c *Config) {}, ""},
		{"dev auth in production", func(c *Config) { c.Env = EnvProduction }, "not allowed in production"},
		{"dev auth unknown role", func(c *Config) { c.Auth.Dev.Role = "admin" }, "auth.dev.role"},
		{"jwt without secret", func(c *Config) { c.Auth.Mode = AuthJWT }, "auth.jwt.secret"},
		{"oidc without issuer", func(c *Config) { c.Auth.Mode = AuthOIDC }, "auth.oidc.issuer"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"bad port", func(c *Config) { c.ServicePort = 70000 }, "service_port"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"kafka without brokers", func(c *Config) { c.Events.Sink = SinkKafka; c.Events.Topic = "t" }, "kafka sink"},
		{"redis sink without redis", func(c *Config) { c.Events.Sink = SinkRedis; c.Events.Stream = "s" }, "redis sink"},
		{"bad timezone", func(c *Config) { c.Lifecycle.Timezone = "Mars/Olympus" }, "lifecycle.timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
