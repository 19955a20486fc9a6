package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRemoteIdentity(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRemoteIdentity(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "tally.db", cfg.DBPath)
	assert.Equal(t, IdentityModeRemote, cfg.IdentityMode)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "ZAR", cfg.DefaultCurrency)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "https://example.supabase.co", cfg.SupabaseURL, "trailing slash is trimmed")
	assert.False(t, cfg.OTelEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRemoteIdentity(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEFAULT_CURRENCY", "usd")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "remote_mode_without_url",
			env:  map[string]string{"SUPABASE_URL": "", "SUPABASE_ANON_KEY": "key"},
		},
		{
			name: "jwt_mode_without_secret",
			env:  map[string]string{"IDENTITY_MODE": "jwt"},
		},
		{
			name: "unknown_identity_mode",
			env:  map[string]string{"IDENTITY_MODE": "magic"},
		},
		{
			name: "unknown_driver",
			env:  map[string]string{"SUPABASE_URL": "http://x", "SUPABASE_ANON_KEY": "k", "DB_DRIVER": "mysql"},
		},
		{
			name: "bad_currency",
			env:  map[string]string{"SUPABASE_URL": "http://x", "SUPABASE_ANON_KEY": "k", "DEFAULT_CURRENCY": "RAND"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_JWTMode(t *testing.T) {
	t.Setenv("IDENTITY_MODE", "jwt")
	t.Setenv("SUPABASE_JWT_SECRET", "super-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, IdentityModeJWT, cfg.IdentityMode)
	assert.Equal(t, "super-secret", cfg.SupabaseJWTSecret)
}
