package output

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// formatDate renders a timestamp as YYYY-MM-DD, or "-" when unknown.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// scanHeaders returns the scan table columns. Verbose adds SRC and PATH.
func scanHeaders(verbose bool) []string {
	cols := []string{"ST", "NAME", "SIZE", "ACCESSED", "MODIFIED"}
	if verbose {
		cols = append(cols, "SRC", "PATH")
	}
	return cols
}

// scanCells returns the unstyled cells for a row, matching scanHeaders.
func scanCells(row Row, verbose bool) []string {
	cells := []string{
		row.Status.Glyph(),
		row.Name,
		row.SizeHuman,
		formatDate(row.Accessed),
		formatDate(row.Modified),
	}
	if verbose {
		cells = append(cells, row.Source.Short(), row.Path)
	}
	return cells
}

// countsLine is the one-line status summary shared by the text formats.
func countsLine(r *ScanReport) string {
	return fmt.Sprintf("STALE=%d OK=%d STUB=%d", r.StaleCount, r.OKCount, r.StubCount)
}

// archiveHint suggests the archive command after a scan that found stale binaries.
func archiveHint(r *ScanReport) string {
	return fmt.Sprintf("Run bin-expire archive --days %d to move these to %s",
		r.ThresholdDays, r.ArchivePath)
}

// formatDuration formats an elapsed time in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func presentMark(present bool) string {
	if present {
		return "yes"
	}
	return "missing"
}
