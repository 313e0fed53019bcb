// Package classify decides whether a scanned file is a normal binary,
// a zero-byte placeholder stub, or a name the user asked to ignore.
package classify

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
)

// DefaultStubExtensions lists the executable extensions whose zero-byte
// files are placeholder aliases (e.g. Windows App Execution Alias stubs).
var DefaultStubExtensions = []string{".exe"}

// ErrInvalidPattern indicates an ignored_bins entry is not a valid glob.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

// Classifier classifies file names. It is safe for concurrent use once built.
type Classifier struct {
	patterns []string
	stubExts map[string]struct{}
	foldCase bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithStubExtensions replaces the set of executable extensions considered for stubs.
func WithStubExtensions(exts ...string) Option {
	return func(c *Classifier) {
		c.stubExts = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			c.stubExts[strings.ToLower(ext)] = struct{}{}
		}
	}
}

// New creates a Classifier for the given ignore list.
// Entries may be literal names ("rustc") or glob patterns ("cargo-*").
// Names are matched case-insensitively on Windows.
func New(ignored []string, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		foldCase: runtime.GOOS == "windows",
	}
	WithStubExtensions(DefaultStubExtensions...)(c)
	for _, opt := range opts {
		opt(c)
	}

	for _, p := range ignored {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
		if c.foldCase {
			p = strings.ToLower(p)
		}
		c.patterns = append(c.patterns, p)
	}

	return c, nil
}

// Classify returns the classification for a file with the given name and size.
// Ignored takes precedence over Stub: an ignored name is dropped regardless of size.
func (c *Classifier) Classify(name string, size int64) types.Classification {
	if c.IsIgnored(name) {
		return types.Ignored
	}
	if size == 0 && c.isStubExt(filepath.Ext(name)) {
		return types.Stub
	}
	return types.Normal
}

// IsIgnored reports whether name matches an ignored_bins entry.
func (c *Classifier) IsIgnored(name string) bool {
	if c.foldCase {
		name = strings.ToLower(name)
	}
	for _, p := range c.patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (c *Classifier) isStubExt(ext string) bool {
	if ext == "" {
		return false
	}
	_, ok := c.stubExts[strings.ToLower(ext)]
	return ok
}
