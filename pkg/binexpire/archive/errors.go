package archive

import (
	"errors"

	"github.com/jamesainslie/binexpire/pkg/binexpire/manifest"
)

// Archive errors.
var (
	// ErrNotFound means the source vanished between scan and archive.
	ErrNotFound = errors.New("source file not found")

	// ErrCorruptCopy means a fallback copy did not verify; the destination was removed.
	ErrCorruptCopy = errors.New("copy verification failed")

	// ErrNotStale means a non-stale, stub or ignored entry was passed to Archive.
	ErrNotStale = errors.New("entry is not stale")

	// ErrUnrecorded means the move succeeded but the manifest write failed.
	// The move is rolled back when possible.
	ErrUnrecorded = errors.New("archive move could not be recorded")
)

// Restore errors.
var (
	ErrNotArchived         = errors.New("no archived entry")
	ErrArchivedFileMissing = errors.New("archived file is missing")
	ErrDestinationExists   = errors.New("destination already exists")
)

// Reason names the error class of err for reports.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrCorruptCopy):
		return "CorruptCopy"
	case errors.Is(err, ErrNotStale):
		return "NotStale"
	case errors.Is(err, ErrNotArchived):
		return "NotArchived"
	case errors.Is(err, ErrArchivedFileMissing):
		return "ArchivedFileMissing"
	case errors.Is(err, ErrDestinationExists):
		return "DestinationExists"
	case errors.Is(err, ErrUnrecorded):
		return "Unrecorded"
	case errors.Is(err, manifest.ErrCorrupt):
		return "ConfigError"
	default:
		return "IoError"
	}
}
