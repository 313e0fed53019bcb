package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It is the default when stdout is a terminal.
type PrettyFormatter struct{}

// FormatScan writes a header, the visible rows and a summary footer.
func (f *PrettyFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	w.WriteString(f.scanHeader(r))
	w.WriteString("\n")

	if len(r.Rows) == 0 {
		w.WriteString(MutedStyle.Render("  No stale binaries found"))
		w.WriteString("\n")
	} else {
		rows := make([][]string, len(r.Rows))
		for i, row := range r.Rows {
			cells := scanCells(row, r.Filter.Verbose)
			cells[0] = StatusStyle(row.Status).Render(cells[0])
			cells[2] = SizeStyle.Render(cells[2])
			rows[i] = cells
		}
		w.WriteString(renderTable(scanHeaders(r.Filter.Verbose), rows))
		w.WriteString("\n")
	}

	w.WriteString(f.scanFooter(r))
	w.WriteString("\n")

	if len(r.Warnings) > 0 || len(r.Errors) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r))
	}
	return nil
}

func (f *PrettyFormatter) scanHeader(r *ScanReport) string {
	lines := []string{TitleStyle.Render("bin-expire scan")}

	for _, dir := range r.Dirs {
		lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Dir:"), ValueStyle.Render(dir)))
	}
	for _, dir := range r.MissingDirs {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			LabelStyle.Render("Dir:"), MutedStyle.Render(dir), MutedStyle.Render("(missing)")))
	}

	info := fmt.Sprintf("%s %s  %s %s",
		LabelStyle.Render("Threshold:"), ValueStyle.Render(fmt.Sprintf("%d days", r.ThresholdDays)),
		LabelStyle.Render("Elapsed:"), ValueStyle.Render(formatDuration(r.Elapsed)))
	lines = append(lines, info)

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) scanFooter(r *ScanReport) string {
	counts := strings.Join([]string{
		ErrorStyle.Render(fmt.Sprintf("STALE=%d", r.StaleCount)),
		SuccessStyle.Render(fmt.Sprintf("OK=%d", r.OKCount)),
		MutedStyle.Render(fmt.Sprintf("STUB=%d", r.StubCount)),
	}, " ")

	line := fmt.Sprintf("%s  %s %s", counts,
		LabelStyle.Render("Reclaimable:"), SizeStyle.Render(humanize.IBytes(uint64(max(r.StaleBytes, 0)))))

	parts := []string{line}
	if r.StaleCount > 0 {
		parts = append(parts, MutedStyle.Render(archiveHint(r)))
	}
	return FooterBox.Render(strings.Join(parts, "\n"))
}

func (f *PrettyFormatter) formatWarnings(r *ScanReport) string {
	var sb strings.Builder

	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")
	for _, warning := range r.Warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}
	for _, fe := range r.Errors {
		sb.WriteString(WarningStyle.Render(fmt.Sprintf("  %s: %s", fe.Path, fe.Error)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatArchive writes one line per binary and a totals footer.
func (f *PrettyFormatter) FormatArchive(w *bytes.Buffer, r *ArchiveReport) error {
	title := "bin-expire archive"
	if r.DryRun {
		title += " (dry run)"
	}
	header := fmt.Sprintf("%s\n%s %s", TitleStyle.Render(title),
		LabelStyle.Render("Archive:"), ValueStyle.Render(r.ArchivePath))
	w.WriteString(HeaderBox.Render(header))
	w.WriteString("\n")

	if len(r.Rows) == 0 {
		w.WriteString(MutedStyle.Render("  Nothing to archive"))
		w.WriteString("\n")
		return nil
	}

	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = []string{
			archiveResult(row, r.DryRun),
			row.Name,
			SizeStyle.Render(row.SizeHuman),
			row.From,
			archiveTarget(row),
		}
	}
	w.WriteString(renderTable([]string{"", "NAME", "SIZE", "FROM", "TO"}, rows))
	w.WriteString("\n")

	verb := "Moved:"
	if r.DryRun {
		verb = "Would move:"
	}
	footer := fmt.Sprintf("%s %s  %s %s  %s %s",
		LabelStyle.Render(verb), ValueStyle.Render(fmt.Sprintf("%d", r.Moved)),
		LabelStyle.Render("Failed:"), failedStyle(r.Failed).Render(fmt.Sprintf("%d", r.Failed)),
		LabelStyle.Render("Total:"), SizeStyle.Render(humanize.IBytes(uint64(max(r.MovedBytes, 0)))))
	w.WriteString(FooterBox.Render(footer))
	w.WriteString("\n")
	return nil
}

func archiveResult(row ArchiveRow, dryRun bool) string {
	switch {
	case dryRun:
		return MutedStyle.Render("→")
	case row.OK():
		return SuccessStyle.Render("✓")
	default:
		return ErrorStyle.Render("✗")
	}
}

func archiveTarget(row ArchiveRow) string {
	if !row.OK() {
		return ErrorStyle.Render(fmt.Sprintf("%s: %s", row.Reason, row.Error))
	}
	if row.To == "" {
		return MutedStyle.Render("-")
	}
	return row.To
}

func failedStyle(n int) lipgloss.Style {
	if n > 0 {
		return ErrorStyle
	}
	return ValueStyle
}

// FormatHistory writes the archive history table.
func (f *PrettyFormatter) FormatHistory(w *bytes.Buffer, r *HistoryReport) error {
	if len(r.Rows) == 0 {
		w.WriteString(MutedStyle.Render("No archived binaries"))
		w.WriteString("\n")
		return nil
	}

	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		present := SuccessStyle.Render(presentMark(row.Present))
		if !row.Present {
			present = WarningStyle.Render(presentMark(row.Present))
		}
		rows[i] = []string{
			row.ArchivedAt.Local().Format("2006-01-02 15:04"),
			row.Name,
			SizeStyle.Render(humanize.IBytes(uint64(max(row.Size, 0)))),
			row.OriginalPath,
			present,
		}
	}
	w.WriteString(renderTable([]string{"ARCHIVED", "NAME", "SIZE", "ORIGINAL", "PRESENT"}, rows))
	w.WriteString("\n")
	return nil
}

// renderTable lays out pre-styled cells under a ruled header.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
	return t.Render()
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
