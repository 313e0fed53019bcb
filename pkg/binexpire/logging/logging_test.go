package logging_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/binexpire/pkg/binexpire/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"INFO", logging.LevelInfo, false},
		{"", logging.LevelInfo, false},
		{"warning", logging.LevelWarn, false},
		{" error ", logging.LevelError, false},
		{"loud", logging.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := logging.ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, logging.ErrInvalidLevel) {
				t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// Tests below share global logging state and must not run in parallel.

func TestInit(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     logging.Config
		wantErr bool
	}{
		{
			name: "defaults",
			cfg:  logging.Config{Level: "info", Path: filepath.Join(dir, "a.log")},
		},
		{
			name: "component overrides",
			cfg: logging.Config{
				Level:      "warn",
				Path:       filepath.Join(dir, "b.log"),
				Components: map[string]string{"scanner": "debug"},
			},
		},
		{
			name:    "invalid level",
			cfg:     logging.Config{Level: "loud", Path: filepath.Join(dir, "c.log")},
			wantErr: true,
		},
		{
			name: "invalid component level",
			cfg: logging.Config{
				Level:      "info",
				Path:       filepath.Join(dir, "d.log"),
				Components: map[string]string{"archive": "chatty"},
			},
			wantErr: true,
		},
		{
			name:    "invalid console level",
			cfg:     logging.Config{Level: "info", Path: filepath.Join(dir, "e.log"), ConsoleLevel: "chatty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logging.Init(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if closeErr := logging.Close(); closeErr != nil {
				t.Errorf("Close() error = %v", closeErr)
			}
		})
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "bin-expire.log")

	// Created before Init; must start writing once Init runs.
	early := logging.Get("archive-test")

	if err := logging.Init(logging.Config{Level: "info", Path: logPath}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	early.Info("moved binary", "name", "tool_a")
	logging.Get("archive-test").Debug("hidden debug line")
	logging.Get("archive-test").With("dir", "/tmp/bin").Warn("with context")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	content := string(data)

	for _, want := range []string{"moved binary", "tool_a", "archive-test", "with context", "/tmp/bin"} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "hidden debug line") {
		t.Errorf("debug line written at info level:\n%s", content)
	}
}

func TestComponentLevelOverride(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "override.log")

	err := logging.Init(logging.Config{
		Level:      "error",
		Path:       logPath,
		Components: map[string]string{"verbose-comp": "debug"},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logging.Get("verbose-comp").Debug("debug from verbose")
	logging.Get("quiet-comp").Info("info from quiet")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "debug from verbose") {
		t.Error("component override did not lower the level")
	}
	if strings.Contains(string(data), "info from quiet") {
		t.Error("default level did not filter info")
	}
}

func TestLoggingBeforeInitIsDiscarded(t *testing.T) {
	// Must not panic or create files.
	logging.Get("uninitialized").Error("nowhere to go")
}

func TestDefaultLogPath(t *testing.T) {
	got := logging.DefaultLogPath()
	if filepath.Base(got) != "bin-expire.log" {
		t.Errorf("DefaultLogPath() = %q, want bin-expire.log basename", got)
	}
	if filepath.Base(filepath.Dir(got)) != "bin-expire" {
		t.Errorf("DefaultLogPath() = %q, want bin-expire parent", got)
	}
}
