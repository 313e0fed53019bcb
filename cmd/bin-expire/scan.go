package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/jamesainslie/binexpire/pkg/binexpire/config"
	"github.com/jamesainslie/binexpire/pkg/binexpire/output"
	"github.com/jamesainslie/binexpire/pkg/binexpire/scanner"
	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
	"github.com/spf13/cobra"
)

// scanFlags are shared by scan and archive.
type scanFlags struct {
	dirs []string
	days int
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.dirs, "dir", "p", nil, "directory to scan (repeatable; default: scan_dirs from config)")
	cmd.Flags().IntVarP(&f.days, "days", "d", 0, "staleness threshold in days (default: default_threshold_days from config)")
}

func newScanCmd(a *app) *cobra.Command {
	var (
		sf     scanFlags
		filter output.Filter
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report binaries unused for longer than the threshold",
		Long: `Scan lists the configured binary directories and marks each executable as
stale, OK, or a stub (a zero-byte placeholder that is never archived).

By default only stale and stub rows are shown. Use --verbose to include OK
rows along with the timestamp source and full path of every binary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.scan(cmd.Context(), sf, cmd.Flags().Changed("days"))
			if err != nil {
				return err
			}

			report := output.NewScanReport(res, filter, a.cfg.ArchivePath)
			return a.render(cmd, func(f output.Formatter, buf *bytes.Buffer) error {
				return f.FormatScan(buf, report)
			})
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVarP(&filter.Verbose, "verbose", "v", false, "show OK rows, timestamp source and paths")
	cmd.Flags().BoolVar(&filter.OnlyStale, "only-stale", false, "show only stale rows")
	cmd.Flags().BoolVar(&filter.HideOK, "hide-ok", false, "hide OK rows")
	cmd.Flags().BoolVar(&filter.HideStub, "hide-stub", false, "hide stub rows")
	return cmd
}

// scan runs the scanner over the flag or configured directories.
func (a *app) scan(ctx context.Context, sf scanFlags, daysSet bool) (*scanner.Result, error) {
	threshold := a.cfg.Threshold()
	if daysSet {
		if err := types.ValidateThresholdDays(sf.days); err != nil {
			return nil, fmt.Errorf("invalid --days: %w", err)
		}
		threshold = types.Days(sf.days)
	}

	dirs, err := resolveDirs(sf.dirs, a.cfg.ScanDirs)
	if err != nil {
		return nil, err
	}

	classifier, err := a.cfg.Classifier()
	if err != nil {
		return nil, err
	}

	s, err := scanner.New(scanner.Options{
		Dirs:       dirs,
		Threshold:  threshold,
		Classifier: classifier,
		Policy:     a.cfg.Policy(),
	})
	if err != nil {
		return nil, err
	}

	log.Debug("scanning", "dirs", dirs, "threshold_days", int(threshold/types.Day), "policy", a.cfg.Policy())
	res, err := s.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	stale, ok, stub := res.Counts()
	log.Info("scan complete", "stale", stale, "ok", ok, "stub", stub, "errors", len(res.Errors), "elapsed", res.Elapsed)
	return res, nil
}

// resolveDirs expands ~ and makes flag directories absolute. Configured
// directories are used when no flag was given.
func resolveDirs(flagDirs, configured []string) ([]string, error) {
	dirs := flagDirs
	if len(dirs) == 0 {
		dirs = configured
	}

	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", dir, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
