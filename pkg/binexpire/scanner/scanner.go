package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/binexpire/pkg/binexpire/logging"
	"github.com/jamesainslie/binexpire/pkg/binexpire/timesource"
	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
)

var log = logging.Get("scanner")

// FileError records a file that could not be read. It never aborts a scan.
type FileError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Result is the outcome of one scan.
type Result struct {
	// Entries in directory order, then by file name. Ignored files are absent.
	Entries []types.Entry `json:"entries"`

	// DirsScanned lists the directories that existed and were listed.
	DirsScanned []string `json:"dirs_scanned"`

	// DirsMissing lists configured directories that do not exist.
	DirsMissing []string `json:"dirs_missing,omitempty"`

	// Errors lists per-file failures that were skipped.
	Errors []FileError `json:"errors,omitempty"`

	// AccessTimeContaminated is set when access times were discarded for the
	// whole run because the scan itself appeared to update them.
	AccessTimeContaminated bool `json:"access_time_contaminated,omitempty"`

	// Warnings are advisory messages, e.g. about noatime mounts.
	Warnings []string `json:"warnings,omitempty"`

	Threshold time.Duration `json:"threshold"`
	ScanStart time.Time     `json:"scan_start"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Stale returns the entries judged stale.
func (r *Result) Stale() []types.Entry {
	var out []types.Entry
	for _, e := range r.Entries {
		if e.Status == types.StatusStale {
			out = append(out, e)
		}
	}
	return out
}

// Counts tallies entries per status.
func (r *Result) Counts() (stale, ok, stub int) {
	for _, e := range r.Entries {
		switch e.Status {
		case types.StatusStale:
			stale++
		case types.StatusStub:
			stub++
		default:
			ok++
		}
	}
	return stale, ok, stub
}

// StaleBytes sums the sizes of stale entries.
func (r *Result) StaleBytes() int64 {
	var total int64
	for _, e := range r.Entries {
		if e.Status == types.StatusStale {
			total += e.Size
		}
	}
	return total
}

// Scanner judges the binaries in a set of directories.
type Scanner struct {
	opts Options
}

// New creates a Scanner. Options are validated and defaults applied.
func New(opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan options: %w", err)
	}
	return &Scanner{opts: opts}, nil
}

// pending is an entry whose timestamp still needs resolving.
type pending struct {
	entry types.Entry
	times timesource.Times
}

// Scan lists every configured directory and returns one judgment per file.
// It only fails when ctx is cancelled; per-file problems are recorded in Result.Errors.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := s.opts.Now()
	resolver := timesource.NewResolver(s.opts.Policy, start, s.opts.Tolerance)

	result := &Result{
		Threshold: s.opts.Threshold,
		ScanStart: start,
	}

	var batch []pending
	for _, dir := range s.opts.Dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			log.Debug("skipping missing directory", "dir", dir)
			result.DirsMissing = append(result.DirsMissing, dir)
			continue
		}

		entries, errs, err := s.listDir(ctx, dir)
		if err != nil {
			return nil, err
		}
		result.DirsScanned = append(result.DirsScanned, dir)
		result.Errors = append(result.Errors, errs...)
		batch = append(batch, entries...)

		if resolver.Policy() == timesource.PolicyAccessTime {
			if warning := timesource.AccessTimeWarning(dir); warning != "" {
				log.Warn(warning)
				result.Warnings = append(result.Warnings, warning)
			}
		}
	}

	end := s.opts.Now()

	resolve := resolver.Resolve
	if resolver.BatchContaminated(accessTimes(batch), end) {
		log.Warn("access times look updated by this scan; using modification times", "files", len(batch))
		result.AccessTimeContaminated = true
		result.Warnings = append(result.Warnings, "access times were touched during the scan; fell back to modification times")
		resolve = resolver.ResolveModTime
	}

	result.Entries = make([]types.Entry, 0, len(batch))
	for _, p := range batch {
		e := p.entry
		e.LastUsed, e.Source = resolve(p.times)
		e.Status = s.judge(&e, start)
		result.Entries = append(result.Entries, e)
	}

	result.Elapsed = s.opts.Now().Sub(start)
	stale, ok, stub := result.Counts()
	log.Info("scan complete", "dirs", len(result.DirsScanned), "stale", stale, "ok", ok, "stub", stub, "elapsed", result.Elapsed)

	return result, nil
}

func (s *Scanner) judge(e *types.Entry, now time.Time) types.Status {
	if e.Class == types.Stub {
		return types.StatusStub
	}
	if !e.HasLastUsed() {
		return types.StatusOK
	}
	if types.IsStale(e.LastUsed, now, s.opts.Threshold) {
		return types.StatusStale
	}
	return types.StatusOK
}

// listDir reads the immediate children of dir, skipping subdirectories and
// ignored names. Results are sorted by name.
func (s *Scanner) listDir(ctx context.Context, dir string) ([]pending, []FileError, error) {
	root := dir
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		root = resolved
	}

	var (
		entries []pending
		errs    []FileError
	)

	// One worker: the callback runs serially.
	conf := fastwalk.Config{Follow: false, NumWorkers: 1}
	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fastwalk.ErrSkipFiles
		}
		if path == root {
			return nil
		}
		if err != nil {
			errs = append(errs, FileError{Path: path, Error: err.Error()})
			return nil
		}
		if d.IsDir() {
			return fastwalk.SkipDir
		}

		name := d.Name()
		if s.opts.Classifier.IsIgnored(name) {
			return nil
		}

		// Report paths under the configured directory, not its symlink target.
		full := filepath.Join(dir, name)

		// Stat follows symlinks so a linked binary is judged by its target.
		info, statErr := os.Stat(full)
		if statErr != nil {
			log.Warn("skipping unreadable file", "path", full, "error", statErr)
			errs = append(errs, FileError{Path: full, Error: statErr.Error()})
			return nil
		}
		if info.IsDir() {
			return nil
		}

		times := timesource.Read(full, info)
		p := pending{
			entry: types.Entry{
				Name:     name,
				Path:     full,
				Size:     info.Size(),
				Accessed: times.Accessed,
				Modified: times.Modified,
				Class:    s.opts.Classifier.Classify(name, info.Size()),
			},
			times: times,
		}

		entries = append(entries, p)
		return nil
	})

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if walkErr != nil && !errors.Is(walkErr, fastwalk.ErrSkipFiles) {
		log.Warn("listing directory failed", "dir", dir, "error", walkErr)
		errs = append(errs, FileError{Path: dir, Error: walkErr.Error()})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].entry.Name < entries[j].entry.Name
	})
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].Path < errs[j].Path
	})

	return entries, errs, nil
}

func accessTimes(batch []pending) []time.Time {
	out := make([]time.Time, len(batch))
	for i, p := range batch {
		out[i] = p.times.Accessed
	}
	return out
}
