package classify

import (
	"errors"
	"testing"

	"github.com/jamesainslie/binexpire/pkg/binexpire/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foldCase pins name matching so results do not depend on the host OS.
func foldCase(fold bool) Option {
	return func(c *Classifier) {
		c.foldCase = fold
	}
}

func TestClassify(t *testing.T) {
	c, err := New([]string{"rustc", "cargo-*"}, foldCase(false))
	require.NoError(t, err)

	tests := []struct {
		name string
		file string
		size int64
		want types.Classification
	}{
		{"normal binary", "tool_a", 50000, types.Normal},
		{"zero byte exe is stub", "tool_b.exe", 0, types.Stub},
		{"zero byte EXE is stub", "WindowsApps.EXE", 0, types.Stub},
		{"non-empty exe is normal", "tool_c.exe", 10, types.Normal},
		{"zero byte without extension is normal", "empty", 0, types.Normal},
		{"zero byte script is normal", "run.sh", 0, types.Normal},
		{"ignored literal", "rustc", 1 << 20, types.Ignored},
		{"ignored glob", "cargo-watch", 1024, types.Ignored},
		{"ignored wins over stub", "cargo-stub.exe", 0, types.Ignored},
		{"case sensitive miss", "RUSTC", 100, types.Normal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.file, tt.size))
		})
	}
}

func TestClassify_FoldCase(t *testing.T) {
	c, err := New([]string{"RustC"}, foldCase(true))
	require.NoError(t, err)

	assert.Equal(t, types.Ignored, c.Classify("rustc", 10))
	assert.Equal(t, types.Ignored, c.Classify("RUSTC", 10))
	assert.Equal(t, types.Normal, c.Classify("rustfmt", 10))
}

func TestClassify_StubExtensions(t *testing.T) {
	c, err := New(nil, WithStubExtensions("com", ".exe"))
	require.NoError(t, err)

	assert.Equal(t, types.Stub, c.Classify("alias.com", 0))
	assert.Equal(t, types.Stub, c.Classify("alias.exe", 0))
	assert.Equal(t, types.Normal, c.Classify("alias.bat", 0))
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New([]string{"bad["})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}

func TestNew_SkipsBlankEntries(t *testing.T) {
	c, err := New([]string{"", "  "})
	require.NoError(t, err)
	assert.Equal(t, types.Normal, c.Classify("anything", 1))
}
