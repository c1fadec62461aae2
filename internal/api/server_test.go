package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"carematch/internal/app/config"
	"carematch/internal/app/identity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return &config.Config{
		Env: config.EnvTest,
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "file:" + filepath.Join(t.TempDir(), "server.db") + "?_busy_timeout=5000&_txlock=immediate",
		},
		Auth: config.AuthConfig{
			Mode: config.AuthDev,
			Dev:  config.DevConfig{Subject: "s1", Role: "supporter", AllowOverride: true},
		},
		Events:    config.EventsConfig{Sink: config.SinkNone},
		Lifecycle: config.LifecycleConfig{Timezone: "Asia/Tokyo"},
	}
}

func TestNewServerDevMode(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	require.NoError(t, s.Repository.Migrate())

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set(identity.HeaderDebugRole, "requester")
	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewServerRejectsBadWiring(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"redis sink without redis", func(c *config.Config) { c.Events.Sink = config.SinkRedis }, "needs a redis connection"},
		{"unknown dev role", func(c *config.Config) { c.Auth.Dev.Role = "admin" }, "auth.dev.role"},
		{"unknown auth mode", func(c *config.Config) { c.Auth.Mode = "saml" }, "unknown auth mode"},
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			s, err := NewServer(context.Background(), cfg)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
