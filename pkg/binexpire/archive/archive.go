// Package archive moves stale binaries out of PATH directories into an
// archive directory and back again. Every move is recorded in the manifest
// so an archived file can always be traced to its original location.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamesainslie/binexpire/pkg/binexpire/logging"
	"github.com/jamesainslie/binexpire/pkg/binexpire/manifest"
	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
)

var log = logging.Get("archive")

// maxCollisionSuffix bounds the search for a free archive name.
const maxCollisionSuffix = 10000

// Recorder persists completed moves. *manifest.Store implements it.
type Recorder interface {
	Record(manifest.Entry) (manifest.Entry, error)
	Recorded(archivedPath string) (bool, error)
}

// Archiver moves stale entries into an archive root.
type Archiver struct {
	root     string
	recorder Recorder
	now      func() time.Time
}

// NewArchiver creates an Archiver writing into root and recording to rec.
func NewArchiver(root string, rec Recorder) *Archiver {
	return &Archiver{
		root:     root,
		recorder: rec,
		now:      time.Now,
	}
}

// Root returns the archive directory.
func (a *Archiver) Root() string {
	return a.root
}

// Archive moves one stale entry into the archive root and records it.
// Non-stale entries fail with ErrNotStale before anything is touched.
func (a *Archiver) Archive(e types.Entry) (manifest.Entry, error) {
	if e.Status != types.StatusStale || e.Class != types.Normal {
		return manifest.Entry{}, fmt.Errorf("%w: %s is %s/%s", ErrNotStale, e.Name, e.Class, e.Status)
	}

	src := e.Path
	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return manifest.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return manifest.Entry{}, fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.MkdirAll(a.root, 0o755); err != nil {
		return manifest.Entry{}, fmt.Errorf("creating archive directory: %w", err)
	}

	dst, err := a.moveToFreeName(src, e.Name)
	if err != nil {
		return manifest.Entry{}, err
	}
	log.Info("archived", "name", e.Name, "from", src, "to", dst)

	recorded, err := a.recorder.Record(manifest.Entry{
		Name:         e.Name,
		OriginalPath: src,
		ArchivedPath: dst,
		ArchivedAt:   a.now().UTC().Truncate(time.Second),
		Size:         e.Size,
	})
	if err != nil {
		if rbErr := moveFile(dst, src); rbErr != nil {
			log.Error("rollback failed; archived file is unrecorded", "path", dst, "error", rbErr)
			return manifest.Entry{}, fmt.Errorf("%w: %w (file left at %s: %v)", ErrUnrecorded, err, dst, rbErr)
		}
		log.Warn("manifest write failed; move rolled back", "name", e.Name, "error", err)
		return manifest.Entry{}, fmt.Errorf("%w: %w", ErrUnrecorded, err)
	}

	return recorded, nil
}

// moveToFreeName moves src into the archive root under name, or the first
// "<stem>~N<ext>" variant that is neither on disk nor claimed by a record.
func (a *Archiver) moveToFreeName(src, name string) (string, error) {
	for n := 0; n <= maxCollisionSuffix; n++ {
		dst := filepath.Join(a.root, candidateName(name, n))
		if _, err := os.Lstat(dst); err == nil {
			continue
		}
		claimed, err := a.recorder.Recorded(dst)
		if err != nil {
			return "", fmt.Errorf("reading manifest: %w", err)
		}
		if claimed {
			continue
		}

		err = moveFile(src, dst)
		if err == nil {
			return dst, nil
		}
		// Lost a race for this name; try the next one.
		if errors.Is(err, ErrDestinationExists) {
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("no free archive name for %s in %s", name, a.root)
}

// candidateName returns name for n == 0, otherwise name with "~n" before its extension.
func candidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}
	return fmt.Sprintf("%s~%d%s", stem, n, ext)
}

// Outcome is the result of archiving one entry in a batch.
type Outcome struct {
	Entry  types.Entry    `json:"entry"`
	Record manifest.Entry `json:"record,omitzero"`
	Err    error          `json:"-"`
}

// Reason returns the error class of the outcome, or "" on success.
func (o Outcome) Reason() string {
	return Reason(o.Err)
}

// ArchiveAll archives every stale entry, continuing past failures.
// Entries that are not stale are skipped and produce no outcome.
func (a *Archiver) ArchiveAll(ctx context.Context, entries []types.Entry) []Outcome {
	batch := log.With("root", a.Root())

	var out []Outcome
	for _, e := range entries {
		if e.Status != types.StatusStale || e.Class != types.Normal {
			continue
		}
		if err := ctx.Err(); err != nil {
			out = append(out, Outcome{Entry: e, Err: err})
			continue
		}

		rec, err := a.Archive(e)
		if err != nil {
			batch.Warn("archive failed", "name", e.Name, "reason", Reason(err), "error", err)
		}
		out = append(out, Outcome{Entry: e, Record: rec, Err: err})
	}
	batch.Debug("batch done", "attempted", len(out))
	return out
}
