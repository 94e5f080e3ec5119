package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{"-token-secret", "s"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:80", cfg.Addr)
	assert.Equal(t, "qform.sqlite", cfg.DBUrl)
	assert.Equal(t, 120*time.Second, cfg.TokenTTL)
	assert.Equal(t, "https://api.airtable.com", cfg.AirtableURL)
	assert.Equal(t, float64(5), cfg.AirtableRPS)
	assert.Equal(t, "http://localhost:80", cfg.Url())
}

func TestParseRequiresTokenSecret(t *testing.T) {
	_, err := Parse(nil)
	assert.EqualError(t, err, "missing parameter -token-secret")
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
db_url: /var/lib/qform.sqlite
token_secret: from-file
token_ttl: 60
debug: true
webhook_secret: bWFj
`), 0o600))

	cfg, err := Parse([]string{"-config", path, "-port", "9090"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr, "explicit flag wins")
	assert.Equal(t, "/var/lib/qform.sqlite", cfg.DBUrl)
	assert.Equal(t, "from-file", cfg.TokenSecret)
	assert.Equal(t, time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "bWFj", cfg.WebhookSecret)
}

func TestParseMissingConfigFile(t *testing.T) {
	_, err := Parse([]string{"-config", filepath.Join(t.TempDir(), "nope.yaml"), "-token-secret", "s"})
	assert.Error(t, err)
}
