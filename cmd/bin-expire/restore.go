package main

import (
	"fmt"

	"github.com/jamesainslie/binexpire/pkg/binexpire/archive"
	"github.com/jamesainslie/binexpire/pkg/binexpire/manifest"
	"github.com/spf13/cobra"
)

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <name>",
		Short: "Move an archived binary back to where it was",
		Long: `Restore finds the most recent archive record for <name> and moves the
archived file back to its original path.

Restore refuses to overwrite a file that already exists at the original path.
The archive record is kept, so "bin-expire history" still shows it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store, err := manifest.New(a.paths.ManifestPath)
			if err != nil {
				return err
			}

			log.Debug("restoring", "name", name, "manifest", store.Path())
			entry, err := archive.NewRestorer(store).Restore(name)
			if err != nil {
				log.Warn("restore failed", "name", name, "reason", archive.Reason(err), "error", err)
				return fmt.Errorf("restoring %s: %w", name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", entry.Name, entry.OriginalPath)
			return nil
		},
	}
}
