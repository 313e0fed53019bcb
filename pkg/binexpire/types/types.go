// Package types provides core data types for bin-expire.
// It includes the per-file scan entry, its classification and status,
// the provenance of its "last used" timestamp, and small helpers for
// day-based thresholds and human-readable sizes.
package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Day is the unit staleness thresholds are expressed in.
const Day = 24 * time.Hour

// Days converts a whole number of days into a duration.
func Days(n int) time.Duration {
	return time.Duration(n) * Day
}

// ErrNegativeThreshold indicates that a negative day threshold was provided.
var ErrNegativeThreshold = errors.New("threshold cannot be negative")

// ValidateThresholdDays checks that a day threshold is usable.
func ValidateThresholdDays(days int) error {
	if days < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeThreshold, days)
	}
	return nil
}

// Provenance records which filesystem timestamp supplied a "last used" value.
type Provenance int

const (
	// ProvenanceUnknown means neither timestamp could be read.
	ProvenanceUnknown Provenance = iota
	// ProvenanceAtime means the access time was used.
	ProvenanceAtime
	// ProvenanceMtime means the modification time was used.
	ProvenanceMtime
)

// String returns the string representation of the provenance.
func (p Provenance) String() string {
	switch p {
	case ProvenanceAtime:
		return "atime"
	case ProvenanceMtime:
		return "mtime"
	default:
		return "unknown"
	}
}

// Short returns the one-letter column form used in tables.
func (p Provenance) Short() string {
	switch p {
	case ProvenanceAtime:
		return "A"
	case ProvenanceMtime:
		return "M"
	default:
		return "?"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Provenance) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Classification is the Classifier's verdict for a file name.
type Classification int

const (
	// Normal is an ordinary binary, eligible for staleness checks.
	Normal Classification = iota
	// Stub is a zero-byte placeholder executable. Stubs are never archived.
	Stub
	// Ignored is a name listed in ignored_bins. Ignored entries are dropped from scan output.
	Ignored
)

// String returns the string representation of the classification.
func (c Classification) String() string {
	switch c {
	case Stub:
		return "stub"
	case Ignored:
		return "ignored"
	default:
		return "normal"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Status is the judgment attached to a scanned entry.
type Status int

const (
	// StatusOK means the file was used within the threshold, or staleness could not be established.
	StatusOK Status = iota
	// StatusStale means the file's last-used age exceeds the threshold.
	StatusStale
	// StatusStub means the entry is a stub and was never compared to the threshold.
	StatusStub
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusStale:
		return "stale"
	case StatusStub:
		return "stub"
	default:
		return "ok"
	}
}

// Glyph returns the single-character marker shown in scan tables.
func (s Status) Glyph() string {
	switch s {
	case StatusStale:
		return "✗"
	case StatusStub:
		return "·"
	default:
		return "✓"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entry is one filesystem object considered by a scan.
// Entries are built fresh on every scan and never persisted.
type Entry struct {
	// Name is the file name without directory.
	Name string `json:"name"`

	// Path is the absolute path to the file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Accessed is the raw access time, zero when unavailable.
	Accessed time.Time `json:"accessed,omitzero"`

	// Modified is the raw modification time, zero when unavailable.
	Modified time.Time `json:"modified,omitzero"`

	// LastUsed is the resolved "last used" time. Zero when Source is ProvenanceUnknown.
	LastUsed time.Time `json:"last_used,omitzero"`

	// Source is the provenance of LastUsed.
	Source Provenance `json:"source"`

	// Class is the Classifier's verdict.
	Class Classification `json:"classification"`

	// Status is the staleness judgment.
	Status Status `json:"status"`
}

// HasLastUsed reports whether a last-used timestamp was resolved.
func (e *Entry) HasLastUsed() bool {
	return e.Source != ProvenanceUnknown && !e.LastUsed.IsZero()
}

// Age returns how long ago the entry was last used, relative to now.
// Timestamps in the future are clamped to zero.
func (e *Entry) Age(now time.Time) time.Duration {
	if !e.HasLastUsed() {
		return 0
	}
	age := now.Sub(e.LastUsed)
	if age < 0 {
		return 0
	}
	return age
}

// HumanSize returns the file size formatted as a human-readable string.
func (e *Entry) HumanSize() string {
	return FormatSize(e.Size)
}

// IsStale reports whether a file last used at lastUsed is stale at now.
// Age is measured in whole days, so an age exactly equal to the threshold is not stale.
// A lastUsed in the future (clock skew) is never stale.
func IsStale(lastUsed, now time.Time, threshold time.Duration) bool {
	age := now.Sub(lastUsed)
	if age <= 0 {
		return false
	}
	return age.Truncate(Day) > threshold
}

// FormatSize converts a size in bytes to a human-readable string
// using binary (IEC) units.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
