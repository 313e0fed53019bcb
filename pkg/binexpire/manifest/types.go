// Package manifest records every archive move so archived binaries can be
// traced back to where they came from.
package manifest

import "time"

// FormatVersion is written into every manifest document.
const FormatVersion = 1

// Entry records one completed archive move. Entries are never mutated.
type Entry struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	OriginalPath string    `json:"original_path"`
	ArchivedPath string    `json:"archived_path"`
	ArchivedAt   time.Time `json:"moved_at"`
	Size         int64     `json:"size,omitempty"`
}

// document is the on-disk shape of archive.json.
type document struct {
	Version int     `json:"version,omitempty"`
	Entries []Entry `json:"entries"`
}
