// Package config loads bin-expire's TOML configuration and resolves where
// the configuration and archive manifest live.
package config

// Default configuration values for bin-expire.
const (
	// AppName names the directory under the config root.
	AppName = "bin-expire"

	// EnvConfigDir overrides the config root for both config.toml and archive.json.
	EnvConfigDir = "BIN_EXPIRE_CONFIG_DIR"

	// EnvPrefix prefixes per-key environment overrides (BIN_EXPIRE_DEFAULT_THRESHOLD_DAYS).
	EnvPrefix = "BIN_EXPIRE"

	// ConfigFileName is the config file inside the app directory.
	ConfigFileName = "config.toml"

	// ManifestFileName is the archive manifest inside the app directory.
	ManifestFileName = "archive.json"

	// DefaultThresholdDays is the staleness threshold when none is configured.
	DefaultThresholdDays = 90

	// DefaultArchivePath is where archived binaries are moved.
	DefaultArchivePath = "~/.bin-expire/archive"

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"

	// DefaultLogMaxSize is the log size that triggers rotation.
	DefaultLogMaxSize = "5MB"

	// DefaultLogMaxBackups is the number of rotated logs kept.
	DefaultLogMaxBackups = 3
)

// DefaultScanDirs are the directories scanned when none are given.
var DefaultScanDirs = []string{
	"~/.cargo/bin",
	"~/go/bin",
}
