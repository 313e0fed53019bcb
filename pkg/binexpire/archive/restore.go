package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jamesainslie/binexpire/pkg/binexpire/manifest"
)

// Lookup finds the most recent archive record for a binary name.
// *manifest.Store implements it.
type Lookup interface {
	MostRecent(name string) (manifest.Entry, bool, error)
}

// Restorer moves archived binaries back to where they came from.
type Restorer struct {
	lookup Lookup
}

// NewRestorer creates a Restorer backed by l.
func NewRestorer(l Lookup) *Restorer {
	return &Restorer{lookup: l}
}

// Restore moves the most recently archived file named name back to its
// original path. It never overwrites an existing file and leaves the
// manifest untouched.
func (r *Restorer) Restore(name string) (manifest.Entry, error) {
	e, ok, err := r.lookup.MostRecent(name)
	if err != nil {
		return manifest.Entry{}, fmt.Errorf("reading manifest: %w", err)
	}
	if !ok {
		return manifest.Entry{}, fmt.Errorf("%w: %s", ErrNotArchived, name)
	}

	if _, err := os.Lstat(e.ArchivedPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return e, fmt.Errorf("%w: %s", ErrArchivedFileMissing, e.ArchivedPath)
		}
		return e, fmt.Errorf("stat %s: %w", e.ArchivedPath, err)
	}

	if _, err := os.Lstat(e.OriginalPath); err == nil {
		return e, fmt.Errorf("%w: %s", ErrDestinationExists, e.OriginalPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return e, fmt.Errorf("stat %s: %w", e.OriginalPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(e.OriginalPath), 0o755); err != nil {
		return e, fmt.Errorf("creating %s: %w", filepath.Dir(e.OriginalPath), err)
	}

	if err := moveFile(e.ArchivedPath, e.OriginalPath); err != nil {
		// The archived file vanished after the check above.
		if errors.Is(err, ErrNotFound) {
			return e, fmt.Errorf("%w: %s", ErrArchivedFileMissing, e.ArchivedPath)
		}
		return e, err
	}

	log.Info("restored", "name", e.Name, "to", e.OriginalPath)
	return e, nil
}
