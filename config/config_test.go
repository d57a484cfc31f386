package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "medscan.db", cfg.Database.Path)
	assert.Equal(t, "uploads/medical_images", cfg.Uploads.Dir)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 12, cfg.JWT.ExpiryHours)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/medscan")
	t.Setenv("UPLOAD_DIR", "/var/lib/medscan/images")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://user:pass@db:5432/medscan", cfg.Database.URL)
	assert.Equal(t, "/var/lib/medscan/images", cfg.Uploads.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
