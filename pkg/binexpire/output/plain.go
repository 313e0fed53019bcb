package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// PlainFormatter formats output as aligned columns with no styling.
// It is the default when stdout is not a terminal.
type PlainFormatter struct{}

// FormatScan writes the rows, the counts line and the archive hint.
func (f *PlainFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	if len(r.Rows) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if err := writeRow(tw, scanHeaders(r.Filter.Verbose)); err != nil {
			return err
		}
		for _, row := range r.Rows {
			if err := writeRow(tw, scanCells(row, r.Filter.Verbose)); err != nil {
				return err
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		w.WriteString("\n")
	}

	fmt.Fprintf(w, "%s stale_bytes=%s\n", countsLine(r), humanize.IBytes(uint64(max(r.StaleBytes, 0))))
	if r.StaleCount > 0 {
		w.WriteString(archiveHint(r))
		w.WriteString("\n")
	}
	for _, dir := range r.MissingDirs {
		fmt.Fprintf(w, "missing: %s\n", dir)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, fe := range r.Errors {
		fmt.Fprintf(w, "error: %s: %s\n", fe.Path, fe.Error)
	}
	return nil
}

// FormatArchive writes one line per binary: the result, the name and where it went.
func (f *PlainFormatter) FormatArchive(w *bytes.Buffer, r *ArchiveReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range r.Rows {
		var cells []string
		switch {
		case r.DryRun:
			cells = []string{"would-move", row.Name, row.SizeHuman, row.From}
		case row.OK():
			cells = []string{"moved", row.Name, row.SizeHuman, row.From + " -> " + row.To}
		default:
			cells = []string{"failed", row.Name, row.SizeHuman, row.Reason + ": " + row.Error}
		}
		if err := writeRow(tw, cells); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "moved=%d failed=%d bytes=%s\n", r.Moved, r.Failed, humanize.IBytes(uint64(max(r.MovedBytes, 0))))
	return nil
}

// FormatHistory writes one line per manifest entry.
func (f *PlainFormatter) FormatHistory(w *bytes.Buffer, r *HistoryReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeRow(tw, []string{"ARCHIVED", "NAME", "ORIGINAL", "ARCHIVED_PATH", "PRESENT"}); err != nil {
		return err
	}
	for _, row := range r.Rows {
		cells := []string{
			row.ArchivedAt.UTC().Format("2006-01-02T15:04:05Z"),
			row.Name,
			row.OriginalPath,
			row.ArchivedPath,
			presentMark(row.Present),
		}
		if err := writeRow(tw, cells); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeRow(tw *tabwriter.Writer, cells []string) error {
	_, err := tw.Write([]byte(strings.Join(cells, "\t") + "\n"))
	return err
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
