package main

import (
	"bytes"
	"fmt"

	"github.com/jamesainslie/binexpire/pkg/binexpire/archive"
	"github.com/jamesainslie/binexpire/pkg/binexpire/manifest"
	"github.com/jamesainslie/binexpire/pkg/binexpire/output"
	"github.com/spf13/cobra"
)

func newArchiveCmd(a *app) *cobra.Command {
	var (
		sf     scanFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move stale binaries into the archive directory",
		Long: `Archive scans like "bin-expire scan" and moves every stale binary into
archive_path. Each move is recorded in archive.json so the binary can be
brought back with "bin-expire restore <name>".

Stubs and ignored binaries are never moved. Existing files in the archive are
never overwritten; a second binary with the same name is stored as name~1.

The batch continues past individual failures and exits non-zero if any
binary could not be archived.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.scan(cmd.Context(), sf, cmd.Flags().Changed("days"))
			if err != nil {
				return err
			}
			stale := res.Stale()

			if dryRun {
				report := output.NewDryRunReport(stale, a.cfg.ArchivePath)
				return a.render(cmd, func(f output.Formatter, buf *bytes.Buffer) error {
					return f.FormatArchive(buf, report)
				})
			}

			store, err := manifest.New(a.paths.ManifestPath)
			if err != nil {
				return err
			}
			archiver := archive.NewArchiver(a.cfg.ArchivePath, store)
			log.Debug("archiving", "stale", len(stale), "root", archiver.Root(), "manifest", store.Path())
			outcomes := archiver.ArchiveAll(cmd.Context(), stale)

			report := output.NewArchiveReport(outcomes, a.cfg.ArchivePath)
			log.Info("archive complete", "moved", report.Moved, "failed", report.Failed, "bytes", report.MovedBytes)

			if err := a.render(cmd, func(f output.Formatter, buf *bytes.Buffer) error {
				return f.FormatArchive(buf, report)
			}); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d binaries could not be archived", report.Failed, len(report.Rows))
			}
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be archived without moving anything")
	return cmd
}
