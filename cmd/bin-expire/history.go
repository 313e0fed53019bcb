package main

import (
	"bytes"
	"fmt"

	"github.com/jamesainslie/binexpire/pkg/binexpire/manifest"
	"github.com/jamesainslie/binexpire/pkg/binexpire/output"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived binaries",
		Long: `History lists the records in archive.json, newest first, and whether each
archived file is still present in the archive directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := manifest.New(a.paths.ManifestPath)
			if err != nil {
				return err
			}

			entries, err := store.List(limit)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}

			report := output.NewHistoryReport(entries)
			return a.render(cmd, func(f output.Formatter, buf *bytes.Buffer) error {
				return f.FormatHistory(buf, report)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of entries to show (0 for all)")
	return cmd
}
