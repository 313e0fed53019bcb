package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/binexpire/pkg/binexpire/classify"
	"github.com/jamesainslie/binexpire/pkg/binexpire/timesource"
	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow is truncated to whole seconds so backdated mtimes survive
// filesystems with coarse timestamp precision.
func fixedNow() time.Time {
	return time.Now().Truncate(time.Second)
}

func writeBinary(t *testing.T, dir, name string, size int, age time.Duration, now time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o755))
	when := now.Add(-age)
	require.NoError(t, os.Chtimes(path, when, when))
	return path
}

func newScanner(t *testing.T, opts Options) *Scanner {
	t.Helper()

	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func byName(entries []types.Entry) map[string]types.Entry {
	out := make(map[string]types.Entry, len(entries))
	for _, e := range entries {
		out[e.Name] = e
	}
	return out
}

func TestScan_ConcreteScenario(t *testing.T) {
	now := fixedNow()
	dir := t.TempDir()

	writeBinary(t, dir, "tool_a", 50000, types.Days(100), now)
	writeBinary(t, dir, "tool_b.exe", 0, types.Days(400), now)
	writeBinary(t, dir, "rustc", 1024, types.Days(200), now)

	c, err := classify.New([]string{"rustc"})
	require.NoError(t, err)

	s := newScanner(t, Options{
		Dirs:       []string{dir},
		Threshold:  types.Days(30),
		Classifier: c,
		Policy:     timesource.PolicyModTime,
		Now:        func() time.Time { return now },
	})

	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	got := byName(result.Entries)
	require.Len(t, got, 2)
	assert.NotContains(t, got, "rustc")

	toolA := got["tool_a"]
	assert.Equal(t, types.StatusStale, toolA.Status)
	assert.Equal(t, types.Normal, toolA.Class)
	assert.Equal(t, types.ProvenanceMtime, toolA.Source)
	assert.Equal(t, int64(50000), toolA.Size)
	assert.Equal(t, filepath.Join(dir, "tool_a"), toolA.Path)

	toolB := got["tool_b.exe"]
	assert.Equal(t, types.StatusStub, toolB.Status)
	assert.Equal(t, types.Stub, toolB.Class)

	stale, ok, stub := result.Counts()
	assert.Equal(t, 1, stale)
	assert.Equal(t, 0, ok)
	assert.Equal(t, 1, stub)
	assert.Equal(t, int64(50000), result.StaleBytes())

	staleEntries := result.Stale()
	require.Len(t, staleEntries, 1)
	assert.Equal(t, "tool_a", staleEntries[0].Name)
}

func TestScan_ThresholdBoundary(t *testing.T) {
	now := fixedNow()
	dir := t.TempDir()

	writeBinary(t, dir, "exact", 10, types.Days(30), now)
	writeBinary(t, dir, "almost", 10, types.Days(30)+23*time.Hour, now)
	writeBinary(t, dir, "over", 10, types.Days(31), now)
	writeBinary(t, dir, "future", 10, -types.Days(5), now)

	s := newScanner(t, Options{
		Dirs:      []string{dir},
		Threshold: types.Days(30),
		Now:       func() time.Time { return now },
	})

	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	got := byName(result.Entries)
	assert.Equal(t, types.StatusOK, got["exact"].Status)
	assert.Equal(t, types.StatusOK, got["almost"].Status)
	assert.Equal(t, types.StatusStale, got["over"].Status)
	assert.Equal(t, types.StatusOK, got["future"].Status)
}

func TestScan_OrderingAndDirectories(t *testing.T) {
	now := fixedNow()
	first := t.TempDir()
	second := t.TempDir()
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	writeBinary(t, first, "zeta", 1, types.Days(1), now)
	writeBinary(t, first, "alpha", 1, types.Days(1), now)
	writeBinary(t, second, "beta", 1, types.Days(1), now)
	require.NoError(t, os.Mkdir(filepath.Join(first, "subdir"), 0o755))
	writeBinary(t, filepath.Join(first, "subdir"), "nested", 1, types.Days(1), now)

	s := newScanner(t, Options{
		Dirs:      []string{first, missing, second},
		Threshold: types.Days(30),
		Now:       func() time.Time { return now },
	})

	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	var names []string
	for _, e := range result.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta", "beta"}, names)
	assert.Equal(t, []string{first, second}, result.DirsScanned)
	assert.Equal(t, []string{missing}, result.DirsMissing)
	assert.Empty(t, result.Errors)
}

func TestScan_Idempotent(t *testing.T) {
	now := fixedNow()
	dir := t.TempDir()

	writeBinary(t, dir, "old", 100, types.Days(120), now)
	writeBinary(t, dir, "new", 100, types.Days(2), now)
	writeBinary(t, dir, "shim.exe", 0, types.Days(2), now)

	s := newScanner(t, Options{
		Dirs:      []string{dir},
		Threshold: types.Days(90),
		Now:       func() time.Time { return now },
	})

	first, err := s.Scan(context.Background())
	require.NoError(t, err)
	second, err := s.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, second.Entries, len(first.Entries))
	for i := range first.Entries {
		assert.Equal(t, first.Entries[i].Name, second.Entries[i].Name)
		assert.Equal(t, first.Entries[i].Status, second.Entries[i].Status)
		assert.Equal(t, first.Entries[i].Class, second.Entries[i].Class)
	}
}

func TestScan_UnreadableEntryIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	now := fixedNow()
	dir := t.TempDir()
	writeBinary(t, dir, "good", 10, types.Days(1), now)
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, "dangling")))

	s := newScanner(t, Options{
		Dirs:      []string{dir},
		Threshold: types.Days(30),
		Now:       func() time.Time { return now },
	})

	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, "good", result.Entries[0].Name)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasSuffix(result.Errors[0].Path, "dangling"))
}

func TestScan_SymlinkedBinaryUsesTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	now := fixedNow()
	store := t.TempDir()
	bin := t.TempDir()
	target := writeBinary(t, store, "real-tool", 4096, types.Days(100), now)
	require.NoError(t, os.Symlink(target, filepath.Join(bin, "tool")))

	s := newScanner(t, Options{
		Dirs:      []string{bin},
		Threshold: types.Days(30),
		Now:       func() time.Time { return now },
	})

	result, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "tool", result.Entries[0].Name)
	assert.Equal(t, int64(4096), result.Entries[0].Size)
	assert.Equal(t, types.StatusStale, result.Entries[0].Status)
}

func TestScan_AccessTimePolicy(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "windows":
	default:
		t.Skip("access times unavailable")
	}

	now := fixedNow()

	t.Run("recent access keeps binary", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "used")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o755))
		require.NoError(t, os.Chtimes(path, now.Add(-types.Days(3)), now.Add(-types.Days(200))))

		s := newScanner(t, Options{
			Dirs:      []string{dir},
			Threshold: types.Days(30),
			Policy:    timesource.PolicyAccessTime,
			Now:       func() time.Time { return now },
		})
		result, err := s.Scan(context.Background())
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)

		e := result.Entries[0]
		assert.Equal(t, types.ProvenanceAtime, e.Source)
		assert.Equal(t, types.StatusOK, e.Status)
		assert.False(t, result.AccessTimeContaminated)
	})

	t.Run("batch touched by scan falls back to mtime", func(t *testing.T) {
		dir := t.TempDir()
		for i := 0; i < timesource.MinBatchSamples; i++ {
			path := filepath.Join(dir, "tool"+string(rune('a'+i)))
			require.NoError(t, os.WriteFile(path, []byte("x"), 0o755))
			require.NoError(t, os.Chtimes(path, now, now.Add(-types.Days(100))))
		}

		s := newScanner(t, Options{
			Dirs:      []string{dir},
			Threshold: types.Days(30),
			Policy:    timesource.PolicyAccessTime,
			Now:       func() time.Time { return now },
		})
		result, err := s.Scan(context.Background())
		require.NoError(t, err)

		assert.True(t, result.AccessTimeContaminated)
		assert.NotEmpty(t, result.Warnings)
		require.Len(t, result.Entries, timesource.MinBatchSamples)
		for _, e := range result.Entries {
			assert.Equal(t, types.ProvenanceMtime, e.Source, e.Name)
			assert.Equal(t, types.StatusStale, e.Status, e.Name)
		}
	})
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newScanner(t, Options{Dirs: []string{t.TempDir()}})
	_, err := s.Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOptions_Validate(t *testing.T) {
	opts := Options{Threshold: -1}
	require.NoError(t, opts.Validate())

	assert.Equal(t, DefaultThreshold, opts.Threshold)
	assert.NotNil(t, opts.Classifier)
	assert.NotNil(t, opts.Now)
}
