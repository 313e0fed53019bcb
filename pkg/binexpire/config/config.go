package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/binexpire/pkg/binexpire/classify"
	"github.com/jamesainslie/binexpire/pkg/binexpire/logging"
	"github.com/jamesainslie/binexpire/pkg/binexpire/timesource"
	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// ErrConfig is returned for a malformed config file or invalid values.
var ErrConfig = errors.New("invalid configuration")

// Paths locates the config file and manifest. It is built once and passed
// to whatever needs it.
type Paths struct {
	ConfigDir    string
	ConfigFile   string
	ManifestPath string
}

// ResolvePaths uses $BIN_EXPIRE_CONFIG_DIR as the root when set, otherwise
// the platform config directory.
func ResolvePaths() Paths {
	root := os.Getenv(EnvConfigDir)
	if root == "" {
		root = xdg.ConfigHome
	}
	return PathsIn(root)
}

// PathsIn returns the Paths under root/bin-expire.
func PathsIn(root string) Paths {
	dir := filepath.Join(root, AppName)
	return Paths{
		ConfigDir:    dir,
		ConfigFile:   filepath.Join(dir, ConfigFileName),
		ManifestPath: filepath.Join(dir, ManifestFileName),
	}
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" toml:"level"`
	Path       string            `mapstructure:"path" toml:"path"`
	MaxSize    string            `mapstructure:"max_size" toml:"max_size"`
	MaxBackups int               `mapstructure:"max_backups" toml:"max_backups"`
	Components map[string]string `mapstructure:"components" toml:"components,omitempty"`
}

// Config is the effective configuration.
type Config struct {
	IgnoredBins          []string      `mapstructure:"ignored_bins" toml:"ignored_bins"`
	DefaultThresholdDays int           `mapstructure:"default_threshold_days" toml:"default_threshold_days"`
	ArchivePath          string        `mapstructure:"archive_path" toml:"archive_path"`
	WindowsUseAccessTime bool          `mapstructure:"windows_use_access_time" toml:"windows_use_access_time"`
	UnixUseAccessTime    bool          `mapstructure:"unix_use_access_time" toml:"unix_use_access_time"`
	ScanDirs             []string      `mapstructure:"scan_dirs" toml:"scan_dirs"`
	Logging              LoggingConfig `mapstructure:"logging" toml:"logging"`
}

// Load reads p.ConfigFile when it exists and applies defaults and
// BIN_EXPIRE_* environment overrides. A missing file is not an error.
func Load(p Paths) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ignored_bins", []string{})
	v.SetDefault("default_threshold_days", DefaultThresholdDays)
	v.SetDefault("archive_path", DefaultArchivePath)
	v.SetDefault("windows_use_access_time", false)
	v.SetDefault("unix_use_access_time", false)
	v.SetDefault("scan_dirs", DefaultScanDirs)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.max_backups", DefaultLogMaxBackups)

	if _, err := os.Stat(p.ConfigFile); err == nil {
		v.SetConfigFile(p.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, p.ConfigFile, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, p.ConfigFile, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates values and expands ~ in paths.
func (c *Config) normalize() error {
	if err := types.ValidateThresholdDays(c.DefaultThresholdDays); err != nil {
		return fmt.Errorf("%w: default_threshold_days: %v", ErrConfig, err)
	}

	if strings.TrimSpace(c.ArchivePath) == "" {
		c.ArchivePath = DefaultArchivePath
	}

	var err error
	if c.ArchivePath, err = ExpandPath(c.ArchivePath); err != nil {
		return err
	}
	for i, dir := range c.ScanDirs {
		if c.ScanDirs[i], err = ExpandPath(dir); err != nil {
			return err
		}
	}
	if c.Logging.Path != "" {
		if c.Logging.Path, err = ExpandPath(c.Logging.Path); err != nil {
			return err
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrConfig, err)
	}
	if _, err := c.logMaxSize(); err != nil {
		return err
	}
	return nil
}

// Threshold returns the default staleness threshold.
func (c *Config) Threshold() time.Duration {
	return types.Days(c.DefaultThresholdDays)
}

// Policy returns the timestamp policy for the running platform.
func (c *Config) Policy() timesource.Policy {
	return timesource.DetectPolicy(c.WindowsUseAccessTime, c.UnixUseAccessTime)
}

// Classifier builds a Classifier from ignored_bins.
func (c *Config) Classifier() (*classify.Classifier, error) {
	cl, err := classify.New(c.IgnoredBins)
	if err != nil {
		return nil, fmt.Errorf("%w: ignored_bins: %v", ErrConfig, err)
	}
	return cl, nil
}

// LoggingInit returns the logging configuration. consoleLevel enables stderr
// output; empty leaves it off.
func (c *Config) LoggingInit(consoleLevel string) logging.Config {
	rotation := logging.DefaultRotationConfig()
	if size, err := c.logMaxSize(); err == nil && size > 0 {
		rotation.MaxSize = size
	}
	if c.Logging.MaxBackups > 0 {
		rotation.MaxBackups = c.Logging.MaxBackups
	}
	return logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		Rotation:     rotation,
		Components:   c.Logging.Components,
		ConsoleLevel: consoleLevel,
	}
}

func (c *Config) logMaxSize() (int64, error) {
	if c.Logging.MaxSize == "" {
		return 0, nil
	}
	size, err := humanize.ParseBytes(c.Logging.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w: logging.max_size: %v", ErrConfig, err)
	}
	return int64(size), nil
}

// TOML renders the effective configuration.
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}

// WriteDefault writes a commented default config file if none exists.
// It reports whether a file was created.
func WriteDefault(p Paths) (bool, error) {
	if _, err := os.Stat(p.ConfigFile); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file: %w", err)
	}

	if err := os.MkdirAll(p.ConfigDir, 0o755); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}

	content := fmt.Sprintf(`# bin-expire configuration

# Binary names (or glob patterns) never reported or archived.
ignored_bins = []

# Binaries unused for more than this many days are stale.
default_threshold_days = %d

# Where archived binaries are moved.
archive_path = %q

# Use access time instead of modification time for "last used".
# Access times can be disabled (noatime) or lag (relatime) on many systems.
windows_use_access_time = false
unix_use_access_time = false

# Directories scanned when no --dir is given.
scan_dirs = [%s]

[logging]
# Log level: debug, info, warn, error
level = %q
# Log file path (empty means $XDG_STATE_HOME/bin-expire/bin-expire.log)
path = ""
max_size = %q
max_backups = %d
`, DefaultThresholdDays, DefaultArchivePath, quoteList(DefaultScanDirs),
		DefaultLogLevel, DefaultLogMaxSize, DefaultLogMaxBackups)

	if err := os.WriteFile(p.ConfigFile, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writing default config: %w", err)
	}
	return true, nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
