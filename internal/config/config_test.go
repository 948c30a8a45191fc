package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://api.wmata.com", cfg.BaseURL)
	assert.Equal(t, "1", cfg.APIVersion)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8089", cfg.MockAddr)
	assert.False(t, cfg.Debug)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("WMATA_API_KEY", "ENVKEY")
	t.Setenv("WMATA_BASE_URL", "http://localhost:9000")
	t.Setenv("WMATA_HTTP_TIMEOUT", "2s")
	t.Setenv("WMATA_LOG_LEVEL", "debug")
	t.Setenv("WMATA_DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ENVKEY", cfg.APIKey)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestLoad_FileOverridesEnv(t *testing.T) {
	t.Setenv("WMATA_API_KEY", "ENVKEY")
	path := filepath.Join(t.TempDir(), "wmata.yml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: FILEKEY\nhttp_timeout: 5s\nmcp_name: transit\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "FILEKEY", cfg.APIKey)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "transit", cfg.MCPName)
	assert.Equal(t, "http://api.wmata.com", cfg.BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"base url":  "base_url: not a url\n",
		"log level": "log_level: loud\n",
		"timeout":   "http_timeout: -1s\n",
		"yaml":      "api_key: [unterminated\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "wmata.yml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestRequireAPIKey(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.RequireAPIKey(), ErrMissingAPIKey)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}
