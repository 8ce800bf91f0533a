package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "XXXX-TESTKEY")

	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, "XXXX-TESTKEY", cfg.AppID)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultQueryTimeout, cfg.QueryTimeout.Duration())
	assert.Equal(t, DefaultImageTimeout, cfg.ImageTimeout.Duration())
	assert.Equal(t, DefaultImageConcurrency, cfg.ImageConcurrency)
}

func TestSetDefaults_ExplicitAppIDWins(t *testing.T) {
	t.Setenv(EnvAPIKey, "FROM-ENV")

	cfg := &Config{AppID: "FROM-FILE"}
	cfg.SetDefaults()

	assert.Equal(t, "FROM-FILE", cfg.AppID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid_defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing_app_id",
			mutate:  func(c *Config) { c.AppID = "" },
			wantErr: "WOLFRAM_API_KEY",
		},
		{
			name:    "bad_base_url_scheme",
			mutate:  func(c *Config) { c.BaseURL = "ftp://example.com" },
			wantErr: "scheme",
		},
		{
			name:    "query_timeout_too_short",
			mutate:  func(c *Config) { c.QueryTimeout = Duration(100 * time.Millisecond) },
			wantErr: "query_timeout",
		},
		{
			name:    "image_timeout_too_short",
			mutate:  func(c *Config) { c.ImageTimeout = Duration(100 * time.Millisecond) },
			wantErr: "image_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AppID: "XXXX-TESTKEY"}
			cfg.SetDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_WOLFRAM_KEY", "KEY-FROM-ENV")
	os.Unsetenv(EnvAPIKey)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app_id: ${TEST_WOLFRAM_KEY}
query_timeout: 15s
image_concurrency: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "KEY-FROM-ENV", cfg.AppID)
	assert.Equal(t, 15*time.Second, cfg.QueryTimeout.Duration())
	assert.Equal(t, 2, cfg.ImageConcurrency)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoad_MissingCredentialIsFatal(t *testing.T) {
	os.Unsetenv(EnvAPIKey)
	t.Chdir(t.TempDir()) // keep a stray .env out of the picture

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAPIKey)
}

func TestExpandEnvVarsInData(t *testing.T) {
	t.Setenv("TEST_VAL", "hello")

	data := map[string]interface{}{
		"plain":    "no-vars",
		"braced":   "${TEST_VAL}",
		"fallback": "${TEST_UNSET:-default-val}",
		"nested": []interface{}{
			"$TEST_VAL",
		},
	}

	result := ExpandEnvVarsInData(data).(map[string]interface{})
	assert.Equal(t, "no-vars", result["plain"])
	assert.Equal(t, "hello", result["braced"])
	assert.Equal(t, "default-val", result["fallback"])
	assert.Equal(t, "hello", result["nested"].([]interface{})[0])
}
