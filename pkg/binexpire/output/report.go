package output

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jamesainslie/binexpire/pkg/binexpire/archive"
	"github.com/jamesainslie/binexpire/pkg/binexpire/manifest"
	"github.com/jamesainslie/binexpire/pkg/binexpire/scanner"
	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
)

// Filter decides which scan rows are shown. Counts are never filtered.
type Filter struct {
	// Verbose also shows OK rows and the provenance and path columns.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// OnlyStale hides OK and stub rows.
	OnlyStale bool `json:"only_stale" yaml:"only_stale"`

	// HideOK hides OK rows even when verbose.
	HideOK bool `json:"hide_ok" yaml:"hide_ok"`

	// HideStub hides stub rows.
	HideStub bool `json:"hide_stub" yaml:"hide_stub"`
}

// Visible reports whether an entry with status s is shown.
// By default stale and stub rows are shown; verbose adds OK rows.
func (f Filter) Visible(s types.Status) bool {
	switch s {
	case types.StatusStale:
		return true
	case types.StatusStub:
		return !f.HideStub && !f.OnlyStale
	default:
		return f.Verbose && !f.HideOK && !f.OnlyStale
	}
}

// Row is one displayed scan entry.
type Row struct {
	Status    types.Status     `json:"status" yaml:"status"`
	Name      string           `json:"name" yaml:"name"`
	Path      string           `json:"path" yaml:"path"`
	Size      int64            `json:"size" yaml:"size"`
	SizeHuman string           `json:"size_human" yaml:"size_human"`
	Accessed  time.Time        `json:"accessed,omitzero" yaml:"accessed,omitempty"`
	Modified  time.Time        `json:"modified,omitzero" yaml:"modified,omitempty"`
	LastUsed  time.Time        `json:"last_used,omitzero" yaml:"last_used,omitempty"`
	Source    types.Provenance `json:"source" yaml:"source"`
	AgeDays   int              `json:"age_days" yaml:"age_days"`
}

// ScanReport is a scan result prepared for display.
type ScanReport struct {
	Rows          []Row               `json:"rows" yaml:"rows"`
	ThresholdDays int                 `json:"threshold_days" yaml:"threshold_days"`
	Dirs          []string            `json:"dirs" yaml:"dirs"`
	MissingDirs   []string            `json:"missing_dirs,omitempty" yaml:"missing_dirs,omitempty"`
	StaleCount    int                 `json:"stale" yaml:"stale"`
	OKCount       int                 `json:"ok" yaml:"ok"`
	StubCount     int                 `json:"stub" yaml:"stub"`
	StaleBytes    int64               `json:"stale_bytes" yaml:"stale_bytes"`
	ArchivePath   string              `json:"archive_path" yaml:"archive_path"`
	Filter        Filter              `json:"filter" yaml:"filter"`
	Warnings      []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors        []scanner.FileError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Elapsed       time.Duration       `json:"-" yaml:"-"`
}

// NewScanReport applies f to a scan result.
func NewScanReport(res *scanner.Result, f Filter, archivePath string) *ScanReport {
	r := &ScanReport{
		Rows:          []Row{},
		ThresholdDays: int(res.Threshold / types.Day),
		Dirs:          res.DirsScanned,
		MissingDirs:   res.DirsMissing,
		StaleBytes:    res.StaleBytes(),
		ArchivePath:   archivePath,
		Filter:        f,
		Warnings:      res.Warnings,
		Errors:        res.Errors,
		Elapsed:       res.Elapsed,
	}
	r.StaleCount, r.OKCount, r.StubCount = res.Counts()

	for _, e := range res.Entries {
		if !f.Visible(e.Status) {
			continue
		}
		r.Rows = append(r.Rows, Row{
			Status:    e.Status,
			Name:      e.Name,
			Path:      e.Path,
			Size:      e.Size,
			SizeHuman: e.HumanSize(),
			Accessed:  e.Accessed,
			Modified:  e.Modified,
			LastUsed:  e.LastUsed,
			Source:    e.Source,
			AgeDays:   int(e.Age(res.ScanStart) / types.Day),
		})
	}
	sort.SliceStable(r.Rows, func(i, j int) bool {
		return strings.ToLower(r.Rows[i].Name) < strings.ToLower(r.Rows[j].Name)
	})
	return r
}

// ArchiveRow is the outcome of archiving one binary.
type ArchiveRow struct {
	Name      string `json:"name" yaml:"name"`
	From      string `json:"from" yaml:"from"`
	To        string `json:"to,omitempty" yaml:"to,omitempty"`
	Size      int64  `json:"size" yaml:"size"`
	SizeHuman string `json:"size_human" yaml:"size_human"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the row succeeded.
func (r ArchiveRow) OK() bool {
	return r.Error == ""
}

// ArchiveReport summarizes an archive batch.
type ArchiveReport struct {
	Rows        []ArchiveRow `json:"rows" yaml:"rows"`
	Moved       int          `json:"moved" yaml:"moved"`
	Failed      int          `json:"failed" yaml:"failed"`
	MovedBytes  int64        `json:"moved_bytes" yaml:"moved_bytes"`
	ArchivePath string       `json:"archive_path" yaml:"archive_path"`
	DryRun      bool         `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// NewArchiveReport builds a report from batch outcomes.
func NewArchiveReport(outcomes []archive.Outcome, archivePath string) *ArchiveReport {
	r := &ArchiveReport{Rows: []ArchiveRow{}, ArchivePath: archivePath}
	for _, o := range outcomes {
		row := ArchiveRow{
			Name:      o.Entry.Name,
			From:      o.Entry.Path,
			To:        o.Record.ArchivedPath,
			Size:      o.Entry.Size,
			SizeHuman: o.Entry.HumanSize(),
		}
		if o.Err != nil {
			row.Reason = o.Reason()
			row.Error = o.Err.Error()
			r.Failed++
		} else {
			r.Moved++
			r.MovedBytes += o.Entry.Size
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

// NewDryRunReport lists the entries an archive run would move.
func NewDryRunReport(stale []types.Entry, archivePath string) *ArchiveReport {
	r := &ArchiveReport{Rows: []ArchiveRow{}, ArchivePath: archivePath, DryRun: true}
	for _, e := range stale {
		r.Rows = append(r.Rows, ArchiveRow{
			Name:      e.Name,
			From:      e.Path,
			Size:      e.Size,
			SizeHuman: e.HumanSize(),
		})
		r.MovedBytes += e.Size
	}
	r.Moved = len(r.Rows)
	return r
}

// HistoryRow is one manifest entry and whether its archived file still exists.
type HistoryRow struct {
	ID           string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string    `json:"name" yaml:"name"`
	OriginalPath string    `json:"original_path" yaml:"original_path"`
	ArchivedPath string    `json:"archived_path" yaml:"archived_path"`
	ArchivedAt   time.Time `json:"archived_at" yaml:"archived_at"`
	Size         int64     `json:"size,omitempty" yaml:"size,omitempty"`
	Present      bool      `json:"present" yaml:"present"`
}

// HistoryReport lists archive history, newest first.
type HistoryReport struct {
	Rows []HistoryRow `json:"rows" yaml:"rows"`
}

// NewHistoryReport builds a report, checking each archived path on disk.
func NewHistoryReport(entries []manifest.Entry) *HistoryReport {
	r := &HistoryReport{Rows: make([]HistoryRow, 0, len(entries))}
	for _, e := range entries {
		_, err := os.Lstat(e.ArchivedPath)
		r.Rows = append(r.Rows, HistoryRow{
			ID:           e.ID,
			Name:         e.Name,
			OriginalPath: e.OriginalPath,
			ArchivedPath: e.ArchivedPath,
			ArchivedAt:   e.ArchivedAt,
			Size:         e.Size,
			Present:      err == nil || !errors.Is(err, fs.ErrNotExist),
		})
	}
	return r
}
