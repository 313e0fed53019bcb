package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/jamesainslie/binexpire/pkg/binexpire/config"
	"github.com/spf13/cobra"
)

var noConfig = map[string]string{annotationNoConfig: "true"}

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage bin-expire configuration settings.

Configuration is loaded from config.toml under:
  1. $BIN_EXPIRE_CONFIG_DIR/bin-expire (if set)
  2. $XDG_CONFIG_HOME/bin-expire (platform config dir otherwise)

archive.json, the record of archived binaries, lives next to it.

Environment variables can override config file settings using the BIN_EXPIRE_ prefix:
  BIN_EXPIRE_DEFAULT_THRESHOLD_DAYS=30
  BIN_EXPIRE_ARCHIVE_PATH=/mnt/archive/bin`,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.configShow(cmd)
			},
		},
		&cobra.Command{
			Use:         "init",
			Short:       "Create the default configuration file",
			Args:        cobra.NoArgs,
			Annotations: noConfig,
			RunE: func(cmd *cobra.Command, _ []string) error {
				created, err := config.WriteDefault(a.paths)
				if err != nil {
					return fmt.Errorf("failed to create config file: %w", err)
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "Created default config file: %s\n", a.paths.ConfigFile)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", a.paths.ConfigFile)
				}
				return nil
			},
		},
		newConfigPathCmd(a),
		&cobra.Command{
			Use:   "edit",
			Short: "Open the configuration file in an editor",
			Long: `Open config.toml in $VISUAL or $EDITOR, creating it first if needed.

This works even when the current file fails to load.`,
			Args:        cobra.NoArgs,
			Annotations: noConfig,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.configEdit()
			},
		},
	)
	return configCmd
}

func newConfigPathCmd(a *app) *cobra.Command {
	var manifestPath bool

	cmd := &cobra.Command{
		Use:         "path",
		Short:       "Show the configuration file path",
		Args:        cobra.NoArgs,
		Annotations: noConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			if manifestPath {
				fmt.Fprintln(cmd.OutOrStdout(), a.paths.ManifestPath)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.paths.ConfigFile)
		},
	}
	cmd.Flags().BoolVar(&manifestPath, "manifest", false, "show the archive manifest path instead")
	return cmd
}

func (a *app) configShow(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "# Config file: %s\n", a.paths.ConfigFile)
	fmt.Fprintf(out, "# Manifest:    %s\n\n", a.paths.ManifestPath)

	data, err := a.cfg.TOML()
	if err != nil {
		return fmt.Errorf("rendering config: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return err
	}

	overrides := envOverrides(os.Environ())
	fmt.Fprintln(out, "\n# Environment overrides:")
	if len(overrides) == 0 {
		fmt.Fprintln(out, "#   (none)")
	}
	for _, kv := range overrides {
		fmt.Fprintf(out, "#   %s\n", kv)
	}
	return nil
}

// envOverrides returns the BIN_EXPIRE_* variables from environ, sorted.
func envOverrides(environ []string) []string {
	var out []string
	for _, kv := range environ {
		if strings.HasPrefix(kv, config.EnvPrefix+"_") {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

func (a *app) configEdit() error {
	if _, err := config.WriteDefault(a.paths); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
		if runtime.GOOS == "windows" {
			editor = "notepad"
		}
	}

	editorCmd := exec.Command(editor, a.paths.ConfigFile)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}
