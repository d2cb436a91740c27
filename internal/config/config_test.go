package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, time.UTC, cfg.App.Timezone)
	assert.Equal(t, time.Hour, cfg.Policy.MinShift)
	assert.Equal(t, 10*time.Hour, cfg.Policy.MaxShift)
	assert.Equal(t, 14*time.Hour, cfg.Policy.MaxOpenShift)
	assert.Equal(t, 48*time.Hour, cfg.Policy.CorrectionWindow)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval)
	assert.Equal(t, 2*time.Second, cfg.Concurrency.LockTimeout)
	assert.Equal(t, uint(3), cfg.Concurrency.RetryMax)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Geo.Sites)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("POLICY_MAX_OPEN_SHIFT", "12h")
	t.Setenv("CORRECTION_WINDOW", "24h")
	t.Setenv("GEO_SITES", "-6.2,106.8,150")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Jakarta", cfg.App.Timezone.String())
	assert.Equal(t, 12*time.Hour, cfg.Policy.MaxOpenShift)
	assert.Equal(t, 24*time.Hour, cfg.Policy.CorrectionWindow)
	require.Len(t, cfg.Geo.Sites, 1)
	assert.Equal(t, 150.0, cfg.Geo.Sites[0].RadiusMeters)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://postgres:pw@db:5432/attendance?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET_KEY": ""}},
		{"bad duration", map[string]string{"SWEEP_INTERVAL": "often"}},
		{"bad timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}},
		{"bad geo sites", map[string]string{"GEO_SITES": "1,2"}},
		{"max below min", map[string]string{"POLICY_MIN_SHIFT": "10h", "POLICY_MAX_SHIFT": "2h"}},
		{"postgres without password", map[string]string{"STORAGE_DRIVER": "postgres", "DB_PASSWORD": ""}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"zero retries", map[string]string{"RETRY_MAX": "0"}},
		{"unknown exporter", map[string]string{"OTEL_TRACES_EXPORTER": "zipkin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("JWT_SECRET_KEY", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
