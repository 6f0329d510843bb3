package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_PASSWORD", "admin")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Store.Migrate)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://tienda.example, https://admin.example ,")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("DATABASE_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://tienda.example", "https://admin.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Store.Migrate)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "eighty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080, RateLimitPerSecond: 1, RateLimitBurst: 1},
			Store:  StoreConfig{Backend: BackendPostgres, DatabaseURL: "postgres://localhost/catalog"},
			Auth:   AuthConfig{JWTSecret: "s", AdminPasswordHash: "$2a$10$hash"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"postgres without url", func(c *Config) { c.Store.DatabaseURL = "" }, "DATABASE_URL"},
		{"firestore without project", func(c *Config) { c.Store.Backend = BackendFirestore }, "PROJECT_ID"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }, "unknown STORE_BACKEND"},
		{"no secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET"},
		{"no admin password", func(c *Config) { c.Auth.AdminPasswordHash = "" }, "ADMIN_PASSWORD"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CATALOG_TEST_SET", "")
	assert.Equal(t, "", GetEnv("CATALOG_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("CATALOG_TEST_UNSET_KEY", "fallback"))
}
