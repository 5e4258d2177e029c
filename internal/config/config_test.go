package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trafficlab/internal/api"
	"github.com/roach88/trafficlab/internal/history"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trafficlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearEnv unsets every TRAFFICLAB_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, api.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, history.BackendSQLite, cfg.History.Backend)
	assert.Equal(t, DefaultHistoryPath, cfg.History.Path)
	assert.Equal(t, "trafficHistory", cfg.History.Key)
	assert.Zero(t, cfg.TargetTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
base_url: http://10.0.0.9:5000
target_timeout: 2500ms
history:
  backend: file
  path: /tmp/lab.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.9:5000", cfg.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.TargetTimeout)
	assert.Equal(t, history.BackendFile, cfg.History.Backend)
	assert.Equal(t, "/tmp/lab.json", cfg.History.Path)
	// untouched fields keep their defaults
	assert.Equal(t, history.DefaultKey, cfg.History.Key)
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "   \n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "base_uri: http://typo:5000\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse YAML")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "base_url: http://from-file:5000\n")
	t.Setenv("TRAFFICLAB_BASE_URL", "http://from-env:5000")
	t.Setenv("TRAFFICLAB_HISTORY_KEY", "envHistory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:5000", cfg.BaseURL)
	assert.Equal(t, "envHistory", cfg.History.Key)
}

func TestApplyEnv_ExplicitEnvironment(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, map[string]string{
		"TRAFFICLAB_TARGET_TIMEOUT":     "3s",
		"TRAFFICLAB_HISTORY_BACKEND":    "redis",
		"TRAFFICLAB_HISTORY_REDIS_ADDR": "127.0.0.1:6379",
		"TRAFFICLAB_METRICS_TEXTFILE":   "/var/lib/node_exporter/trafficlab.prom",
		"UNRELATED_HISTORY_BACKEND":     "file",
	})
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.TargetTimeout)
	assert.Equal(t, history.BackendRedis, cfg.History.Backend)
	assert.Equal(t, "127.0.0.1:6379", cfg.History.RedisAddr)
	assert.Equal(t, "/var/lib/node_exporter/trafficlab.prom", cfg.MetricsTextfile)
	assert.Equal(t, api.DefaultBaseURL, cfg.BaseURL)
}

func TestApplyEnv_BadDuration(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, map[string]string{"TRAFFICLAB_TARGET_TIMEOUT": "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }, "base URL"},
		{"negative timeout", func(c *Config) { c.TargetTimeout = -time.Second }, "negative"},
		{"unknown backend", func(c *Config) { c.History.Backend = "s3" }, "history.backend"},
		{"sqlite without path", func(c *Config) { c.History.Path = "" }, "history.path"},
		{"redis without addr", func(c *Config) { c.History.Backend = history.BackendRedis }, "redis_addr"},
		{"empty key", func(c *Config) { c.History.Key = "" }, "history.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidate_MemoryNeedsNoPath(t *testing.T) {
	cfg := Default()
	cfg.History.Backend = history.BackendMemory
	cfg.History.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestAdapters(t *testing.T) {
	cfg := Default()
	cfg.TargetTimeout = time.Second
	cfg.History.RedisAddr = "127.0.0.1:6379"

	assert.Equal(t, api.Config{BaseURL: api.DefaultBaseURL, TargetTimeout: time.Second}, cfg.APIConfig())
	assert.Equal(t, history.Options{
		Backend:   history.BackendSQLite,
		Path:      DefaultHistoryPath,
		Key:       history.DefaultKey,
		RedisAddr: "127.0.0.1:6379",
	}, cfg.HistoryOptions())
}

func TestLoad_OverridesWinOverEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRAFFICLAB_BASE_URL", "http://10.0.0.7:5000")

	cfg, err := Load("", func(c *Config) {
		c.BaseURL = "http://10.0.0.8:5000"
		c.History.Backend = history.BackendMemory
	})
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.8:5000", cfg.BaseURL)
	assert.Equal(t, history.BackendMemory, cfg.History.Backend)
}

func TestLoad_OverridesAreValidated(t *testing.T) {
	clearEnv(t)
	_, err := Load("", func(c *Config) { c.History.Backend = "tape" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), `history.backend "tape"`)
}
