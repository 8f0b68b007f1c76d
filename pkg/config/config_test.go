package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestLoad_ExpandsEnv проверяет подстановку ${VAR} до парсинга YAML.
func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("WOO_TEST_KEY", "ck_123")
	t.Setenv("WOO_TEST_SECRET", "cs_456")

	path := writeConfig(t, `
woo:
  base_url: https://shop.example.com/
  consumer_key: ${WOO_TEST_KEY}
  consumer_secret: ${WOO_TEST_SECRET}
  retry_attempts: 5
s3:
  endpoint: s3.local:9000
  bucket: exports
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ck_123", cfg.Woo.ConsumerKey)
	assert.Equal(t, "cs_456", cfg.Woo.ConsumerSecret)
	assert.Equal(t, 5, cfg.Woo.RetryAttempts)
	assert.Equal(t, "exports", cfg.S3.Bucket)
	assert.Equal(t, "products.db", cfg.SnapshotPath())
	assert.Equal(t, "exports", cfg.ExportPrefix())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing base url",
			body:    "woo:\n  consumer_key: k\n  consumer_secret: s\n",
			wantErr: "woo.base_url is required",
		},
		{
			name:    "missing key",
			body:    "woo:\n  base_url: http://x\n  consumer_secret: s\n",
			wantErr: "woo.consumer_key is required",
		},
		{
			name:    "missing secret",
			body:    "woo:\n  base_url: http://x\n  consumer_key: k\n",
			wantErr: "woo.consumer_secret is required",
		},
		{
			name:    "negative retries",
			body:    "woo:\n  base_url: http://x\n  consumer_key: k\n  consumer_secret: s\n  retry_attempts: -1\n",
			wantErr: "woo.retry_attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestWooConfig_GetDefaults(t *testing.T) {
	cfg := WooConfig{BaseURL: "http://x", RetryAttempts: 7}
	got := cfg.GetDefaults()

	assert.Equal(t, "10s", got.Timeout)
	assert.Equal(t, 7, got.RetryAttempts, "заданное значение не перезаписывается")
	assert.Equal(t, 100, got.PerPage)
	assert.Equal(t, "utf-8", got.Charset)
	assert.Equal(t, 0, got.MaxPages)
	assert.Equal(t, 0, cfg.PerPage, "исходная структура не меняется")
}

func TestS3Config_Validate(t *testing.T) {
	assert.Error(t, S3Config{}.Validate())
	assert.Error(t, S3Config{Endpoint: "s3"}.Validate())
	assert.NoError(t, S3Config{Endpoint: "s3", Bucket: "b"}.Validate())
}

func TestFindConfigPath_Flag(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "custom.yaml")
	assert.Equal(t, p, FindConfigPath(p))
}
