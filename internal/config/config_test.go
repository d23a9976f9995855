package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-dater/internal/walk"
)

var envKeys = []string{
	FileEnv,
	"MEDIADATE_EXIFTOOL",
	"MEDIADATE_BACKEND",
	"MEDIADATE_DEBUG",
	"MEDIADATE_LOG_FORMAT",
	"MEDIADATE_SKIP",
	"MEDIADATE_METRICS_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mediadate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func ptr(s string) *string { return &s }

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        *string
		envVars     map[string]string
		expectError string
		validate    func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "exiftool", cfg.Exiftool)
				assert.Equal(t, "exiftool", cfg.Backend)
				assert.Equal(t, "console", cfg.LogFormat)
				assert.False(t, cfg.Debug)
				assert.Equal(t, walk.DefaultSkip, cfg.Skip)
				assert.Empty(t, cfg.MetricsFile)
			},
		},
		{
			name: "file overrides defaults",
			file: ptr("exiftool: /opt/bin/exiftool\nbackend: native\ndebug: true\nskip:\n  - \"**/@eaDir\"\n"),
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/opt/bin/exiftool", cfg.Exiftool)
				assert.Equal(t, "native", cfg.Backend)
				assert.True(t, cfg.Debug)
				assert.Equal(t, []string{"**/@eaDir"}, cfg.Skip)
				assert.Equal(t, "console", cfg.LogFormat)
			},
		},
		{
			name: "env overrides file",
			file: ptr("backend: native\nlog_format: json\n"),
			envVars: map[string]string{
				"MEDIADATE_BACKEND":      "exiftool",
				"MEDIADATE_DEBUG":        "yes",
				"MEDIADATE_SKIP":         "**/.git, ,**/tmp",
				"MEDIADATE_METRICS_FILE": "/var/lib/node_exporter/media_dater.prom",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "exiftool", cfg.Backend)
				assert.Equal(t, "json", cfg.LogFormat)
				assert.True(t, cfg.Debug)
				assert.Equal(t, []string{"**/.git", "**/tmp"}, cfg.Skip)
				assert.Equal(t, "/var/lib/node_exporter/media_dater.prom", cfg.MetricsFile)
			},
		},
		{
			name: "empty file keeps defaults",
			file: ptr(""),
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "exiftool", cfg.Backend)
			},
		},
		{
			name:        "invalid backend",
			envVars:     map[string]string{"MEDIADATE_BACKEND": "sqlite"},
			expectError: "Config.Backend",
		},
		{
			name:        "invalid log format",
			file:        ptr("log_format: xml\n"),
			expectError: "Config.LogFormat",
		},
		{
			name:        "unknown key",
			file:        ptr("exiftol: typo\n"),
			expectError: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.file != nil {
				t.Setenv(FileEnv, writeConfig(t, *tt.file))
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.expectError != "" {
				assert.ErrorContains(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultDoesNotAliasSkip(t *testing.T) {
	cfg := Default()
	cfg.Skip[0] = "changed"
	assert.NotEqual(t, "changed", walk.DefaultSkip[0])
}
