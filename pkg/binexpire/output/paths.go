package output

import (
	"bytes"

	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
)

// PathsFormatter writes one path per line for piping to other tools.
// Scans list the stale paths; archive runs list the new archived paths;
// history lists archived paths that still exist.
type PathsFormatter struct {
	sep byte
}

// FormatScan writes the path of every visible stale row.
func (f *PathsFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	for _, row := range r.Rows {
		if row.Status == types.StatusStale {
			f.write(w, row.Path)
		}
	}
	return nil
}

// FormatArchive writes the destination of every successful move.
// A dry run writes the source paths instead.
func (f *PathsFormatter) FormatArchive(w *bytes.Buffer, r *ArchiveReport) error {
	for _, row := range r.Rows {
		switch {
		case r.DryRun:
			f.write(w, row.From)
		case row.OK():
			f.write(w, row.To)
		}
	}
	return nil
}

// FormatHistory writes archived paths still present on disk.
func (f *PathsFormatter) FormatHistory(w *bytes.Buffer, r *HistoryReport) error {
	for _, row := range r.Rows {
		if row.Present {
			f.write(w, row.ArchivedPath)
		}
	}
	return nil
}

func (f *PathsFormatter) write(w *bytes.Buffer, path string) {
	w.WriteString(path)
	w.WriteByte(f.sep)
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{sep: '\n'}
	})
	// Null-delimited, for xargs -0.
	Register("null", func() Formatter {
		return &PathsFormatter{sep: 0}
	})
}

var _ Formatter = (*PathsFormatter)(nil)
