package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, p Paths, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(p.ConfigDir, 0o755))
	require.NoError(t, os.WriteFile(p.ConfigFile, []byte(content), 0o644))
}

func TestResolvePaths_EnvOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvConfigDir, root)

	p := ResolvePaths()
	assert.Equal(t, filepath.Join(root, "bin-expire"), p.ConfigDir)
	assert.Equal(t, filepath.Join(root, "bin-expire", "config.toml"), p.ConfigFile)
	assert.Equal(t, filepath.Join(root, "bin-expire", "archive.json"), p.ManifestPath)
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := Load(PathsIn(t.TempDir()))
	require.NoError(t, err)

	assert.Empty(t, cfg.IgnoredBins)
	assert.Equal(t, DefaultThresholdDays, cfg.DefaultThresholdDays)
	assert.Equal(t, types.Days(90), cfg.Threshold())
	assert.Equal(t, filepath.Join(home, ".bin-expire", "archive"), cfg.ArchivePath)
	assert.Equal(t, []string{
		filepath.Join(home, ".cargo", "bin"),
		filepath.Join(home, "go", "bin"),
	}, cfg.ScanDirs)
	assert.False(t, cfg.WindowsUseAccessTime)
	assert.False(t, cfg.UnixUseAccessTime)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	p := PathsIn(t.TempDir())
	archive := filepath.Join(t.TempDir(), "archive")

	writeConfig(t, p, `
ignored_bins = ["rustc", "cargo-*"]
default_threshold_days = 30
archive_path = "`+filepath.ToSlash(archive)+`"
unix_use_access_time = true
scan_dirs = ["/opt/tools/bin"]

[logging]
level = "debug"
max_size = "1MB"
max_backups = 7
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"rustc", "cargo-*"}, cfg.IgnoredBins)
	assert.Equal(t, 30, cfg.DefaultThresholdDays)
	assert.Equal(t, filepath.ToSlash(archive), cfg.ArchivePath)
	assert.True(t, cfg.UnixUseAccessTime)
	assert.Equal(t, []string{"/opt/tools/bin"}, cfg.ScanDirs)

	logCfg := cfg.LoggingInit("")
	assert.Equal(t, "debug", logCfg.Level)
	assert.Equal(t, int64(1000000), logCfg.Rotation.MaxSize)
	assert.Equal(t, 7, logCfg.Rotation.MaxBackups)
	assert.Empty(t, logCfg.ConsoleLevel)

	c, err := cfg.Classifier()
	require.NoError(t, err)
	assert.Equal(t, types.Ignored, c.Classify("cargo-watch", 10))
}

func TestLoad_EnvOverride(t *testing.T) {
	p := PathsIn(t.TempDir())
	writeConfig(t, p, "default_threshold_days = 30\n")
	t.Setenv("BIN_EXPIRE_DEFAULT_THRESHOLD_DAYS", "7")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DefaultThresholdDays)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed toml", "default_threshold_days = = 3\n"},
		{"negative threshold", "default_threshold_days = -5\n"},
		{"wrong type", "default_threshold_days = \"soon\"\n"},
		{"bad log level", "[logging]\nlevel = \"chatty\"\n"},
		{"bad log size", "[logging]\nmax_size = \"lots\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PathsIn(t.TempDir())
			writeConfig(t, p, tt.content)

			_, err := Load(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "error %v is not ErrConfig", err)
		})
	}
}

func TestClassifier_InvalidPattern(t *testing.T) {
	cfg := &Config{IgnoredBins: []string{"bad["}}
	_, err := cfg.Classifier()
	assert.ErrorIs(t, err, ErrConfig)
}

func TestWriteDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	p := PathsIn(t.TempDir())

	created, err := WriteDefault(p)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(p.ConfigFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_threshold_days = 90")

	// The written file must load back to the defaults.
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholdDays, cfg.DefaultThresholdDays)
	assert.Equal(t, filepath.Join(home, ".bin-expire", "archive"), cfg.ArchivePath)
	assert.Len(t, cfg.ScanDirs, 2)

	// Existing files are left alone.
	require.NoError(t, os.WriteFile(p.ConfigFile, []byte("default_threshold_days = 12\n"), 0o644))
	created, err = WriteDefault(p)
	require.NoError(t, err)
	assert.False(t, created)

	data, err = os.ReadFile(p.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "default_threshold_days = 12\n", string(data))
}

func TestConfig_TOML(t *testing.T) {
	cfg := &Config{
		IgnoredBins:          []string{"rustc"},
		DefaultThresholdDays: 45,
		ArchivePath:          "/var/archive",
		ScanDirs:             []string{"/usr/local/bin"},
		Logging:              LoggingConfig{Level: "warn"},
	}

	out, err := cfg.TOML()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "default_threshold_days = 45")
	assert.Contains(t, text, "archive_path = ")
	assert.Contains(t, text, "/var/archive")
	assert.True(t, strings.Contains(text, "[logging]"), text)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/go/bin", filepath.Join(home, "go", "bin")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~other/bin", "~other/bin"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
