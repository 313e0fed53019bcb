package types

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	threshold := Days(30)

	tests := []struct {
		name     string
		lastUsed time.Time
		want     bool
	}{
		{"used today", now.Add(-time.Hour), false},
		{"exactly threshold", now.Add(-threshold), false},
		{"threshold plus a few hours", now.Add(-threshold - 5*time.Hour), false},
		{"threshold plus one day", now.Add(-threshold - Day), true},
		{"far past", now.Add(-Days(200)), true},
		{"future timestamp", now.Add(48 * time.Hour), false},
		{"same instant", now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStale(tt.lastUsed, now, threshold))
		})
	}
}

func TestIsStale_ZeroThreshold(t *testing.T) {
	now := time.Now()
	assert.False(t, IsStale(now.Add(-23*time.Hour), now, 0))
	assert.True(t, IsStale(now.Add(-25*time.Hour), now, 0))
}

func TestEntry_Age(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("unknown provenance has zero age", func(t *testing.T) {
		e := Entry{LastUsed: now.Add(-Days(5)), Source: ProvenanceUnknown}
		assert.Equal(t, time.Duration(0), e.Age(now))
		assert.False(t, e.HasLastUsed())
	})

	t.Run("future timestamp clamps to zero", func(t *testing.T) {
		e := Entry{LastUsed: now.Add(time.Hour), Source: ProvenanceMtime}
		assert.Equal(t, time.Duration(0), e.Age(now))
	})

	t.Run("past timestamp", func(t *testing.T) {
		e := Entry{LastUsed: now.Add(-Days(3)), Source: ProvenanceAtime}
		assert.Equal(t, Days(3), e.Age(now))
	})
}

func TestValidateThresholdDays(t *testing.T) {
	require.NoError(t, ValidateThresholdDays(0))
	require.NoError(t, ValidateThresholdDays(90))

	err := ValidateThresholdDays(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativeThreshold))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "atime", ProvenanceAtime.String())
	assert.Equal(t, "M", ProvenanceMtime.Short())
	assert.Equal(t, "?", ProvenanceUnknown.Short())

	assert.Equal(t, "stub", Stub.String())
	assert.Equal(t, "ignored", Ignored.String())
	assert.Equal(t, "normal", Normal.String())

	assert.Equal(t, "✗", StatusStale.Glyph())
	assert.Equal(t, "·", StatusStub.Glyph())
	assert.Equal(t, "✓", StatusOK.Glyph())
}

func TestEntry_JSON(t *testing.T) {
	e := Entry{
		Name:   "tool_a",
		Path:   "/home/user/.cargo/bin/tool_a",
		Size:   50000,
		Source: ProvenanceMtime,
		Class:  Normal,
		Status: StatusStale,
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "mtime", raw["source"])
	assert.Equal(t, "normal", raw["classification"])
	assert.Equal(t, "stale", raw["status"])
	assert.NotContains(t, raw, "last_used")
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "0 B", FormatSize(-5))
}
