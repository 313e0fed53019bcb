package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jamesainslie/binexpire/pkg/binexpire/timesource"
)

// rename is swapped in tests to force the copy fallback.
var rename = renameNoReplace

// renameChecked refuses to replace an existing dst, then renames.
// The existence check and the rename are not atomic.
func renameChecked(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	}
	return os.Rename(src, dst)
}

// moveFile moves src to dst without ever replacing dst. It tries an atomic
// rename first and falls back to copy, verify, remove when the rename is
// rejected (typically across devices).
func moveFile(src, dst string) error {
	err := rename(src, dst)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	case errors.Is(err, fs.ErrNotExist):
		if _, statErr := os.Lstat(src); errors.Is(statErr, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return fmt.Errorf("moving %s: %w", src, err)
	}

	log.Debug("rename failed, copying instead", "src", src, "dst", dst, "error", err)
	return copyThenRemove(src, dst)
}

// copyThenRemove copies src to a new file at dst, verifies the size, then
// removes src. On any failure dst is removed and src is left untouched.
func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return fmt.Errorf("opening source: %w", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copying %s: not a regular file", src)
	}
	times := timesource.Read(src, info)

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return fmt.Errorf("creating destination: %w", err)
	}

	discard := func(cause error) error {
		_ = out.Close()
		_ = os.Remove(dst)
		return cause
	}

	n, err := io.Copy(out, in)
	if err != nil {
		return discard(fmt.Errorf("copying %s: %w", src, err))
	}
	if err := out.Sync(); err != nil {
		return discard(fmt.Errorf("syncing destination: %w", err))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("closing destination: %w", err)
	}

	copied, err := os.Stat(dst)
	if err != nil || n != info.Size() || copied.Size() != info.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("%w: %s: wrote %d of %d bytes", ErrCorruptCopy, dst, n, info.Size())
	}

	// Metadata is best effort; the bytes are what matter.
	_ = os.Chmod(dst, info.Mode().Perm())
	accessed := times.Accessed
	if accessed.IsZero() {
		accessed = info.ModTime()
	}
	_ = os.Chtimes(dst, accessed, info.ModTime())

	// Windows refuses to remove an open file.
	_ = in.Close()
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("removing source after copy: %w", err)
	}
	return nil
}
