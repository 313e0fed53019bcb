package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jamesainslie/binexpire/pkg/binexpire/config"
	"github.com/jamesainslie/binexpire/pkg/binexpire/logging"
	"github.com/jamesainslie/binexpire/pkg/binexpire/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// annotationNoConfig marks commands that run without loading config.toml.
const annotationNoConfig = "bin-expire/no-config"

var log = logging.Get("cli")

// app carries what every command needs once the root hook has run.
type app struct {
	v     *viper.Viper
	paths config.Paths
	cfg   *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "bin-expire",
		Short: "Find and archive binaries you no longer use",
		Long: `bin-expire scans binary directories such as ~/.cargo/bin and ~/go/bin for
executables that have not been used for a configurable number of days, and
moves them into an archive directory from which they can be restored.

Examples:
  bin-expire scan                   # Report stale binaries in the configured dirs
  bin-expire scan -p ~/bin -d 30    # Scan one directory with a 30 day threshold
  bin-expire archive --dry-run      # Show what would be archived
  bin-expire archive -d 180         # Archive binaries unused for 180 days
  bin-expire restore ripgrep        # Move ripgrep back where it came from
  bin-expire history                # List archived binaries`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logging.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config-dir", "", "config root (default: $BIN_EXPIRE_CONFIG_DIR or the XDG config dir)")
	flags.StringP("output", "o", "", fmt.Sprintf("output format: %s (default: pretty on a terminal, plain otherwise)",
		strings.Join(output.Available(), ", ")))
	flags.Bool("debug", false, "write debug logs to stderr")

	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlag("output", flags.Lookup("output"))
	_ = a.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("config_dir", flags.Lookup("config-dir"))

	rootCmd.AddCommand(
		newScanCmd(a),
		newArchiveCmd(a),
		newRestoreCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command. Ctrl-C cancels a scan or archive batch
// between files.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

// initialize resolves paths, writes a default config on first run, loads
// the config and starts logging.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	if dir := a.v.GetString("config_dir"); dir != "" {
		a.paths = config.PathsIn(dir)
	} else {
		a.paths = config.ResolvePaths()
	}

	if cmd.Annotations[annotationNoConfig] == "true" {
		return nil
	}

	created, err := config.WriteDefault(a.paths)
	if err != nil {
		return err
	}

	cfg, err := config.Load(a.paths)
	if err != nil {
		return err
	}
	a.cfg = cfg

	consoleLevel := ""
	if a.v.GetBool("debug") {
		consoleLevel = "debug"
	}
	if err := logging.Init(cfg.LoggingInit(consoleLevel)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if created {
		log.Info("wrote default config", "path", a.paths.ConfigFile)
	}
	log.Debug("starting", "command", cmd.CommandPath(), "config", a.paths.ConfigFile)
	return nil
}

// formatter picks the requested output format, falling back to pretty on a
// terminal and plain everywhere else.
func (a *app) formatter(w io.Writer) (output.Formatter, error) {
	name := a.v.GetString("output")
	if name == "" {
		name = "plain"
		if isTerminal(w) {
			name = "pretty"
		}
	}
	return output.Get(name)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// render formats a report into a buffer and writes it to the command's stdout.
func (a *app) render(cmd *cobra.Command, format func(output.Formatter, *bytes.Buffer) error) error {
	f, err := a.formatter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := format(f, &buf); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
