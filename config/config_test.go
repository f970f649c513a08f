package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("FRONTEND_URL", "https://jobs.example.com/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "https://jobs.example.com", cfg.FrontendURL)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow())
	assert.Equal(t, 5*time.Minute, cfg.PaymentWebhookTolerance)
	assert.False(t, cfg.SMTPConfigured())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "user")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("RECONCILE_INTERVAL_SECONDS", "0")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.SMTPConfigured())
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.False(t, cfg.RunMigrations)
}
