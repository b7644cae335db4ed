package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.DBDSN)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 16, cfg.NotifyPoolSize)
	assert.Equal(t, []string{"http://localhost:19006", "exp://localhost:19000"}, cfg.CORSOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FINDMYPET_PORT", "9090")
	t.Setenv("FINDMYPET_NOTIFY_TIMEOUT", "250ms")
	t.Setenv("FINDMYPET_SCRAPING_SERVICE_URL", "http://scraper:8000")
	t.Setenv("FINDMYPET_CORS_ORIGINS", "https://app.example, ")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 250*time.Millisecond, cfg.NotifyTimeout)
	assert.Equal(t, "http://scraper:8000", cfg.ScrapingServiceURL)
	assert.Equal(t, []string{"https://app.example"}, cfg.CORSOrigins)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findmypet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notify_pool_size: 3\nlog_format: json\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.NotifyPoolSize)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestValidate_Rejects(t *testing.T) {
	cfg := Config{NotifyTimeout: 0, NotifyPoolSize: 0, AIServiceURL: "not a url"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify_timeout")
	assert.Contains(t, err.Error(), "notify_pool_size")
	assert.Contains(t, err.Error(), "ai_service_url")
}
