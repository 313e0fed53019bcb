package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/binexpire/pkg/binexpire/logging"
)

var log = logging.Get("manifest")

// ErrCorrupt is returned when the manifest file exists but cannot be parsed.
// Entries are never silently dropped.
var ErrCorrupt = errors.New("manifest is corrupt")

// Store is the manifest file. The whole document is read on every call and
// rewritten on every Record through a temp file and rename.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a Store backed by the JSON file at path.
// The file and its directory are created on the first Record.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("manifest path cannot be empty")
	}
	return &Store{path: path, now: time.Now}, nil
}

// Path returns the manifest file path.
func (s *Store) Path() string {
	return s.path
}

// Record appends e and persists the manifest before returning.
// ID, Name and ArchivedAt are filled in when empty.
func (s *Store) Record(e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Entry{}, err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Name == "" {
		e.Name = filepath.Base(e.OriginalPath)
	}
	if e.ArchivedAt.IsZero() {
		e.ArchivedAt = s.now().UTC().Truncate(time.Second)
	}

	for _, existing := range doc.Entries {
		if existing.ArchivedPath == e.ArchivedPath {
			return Entry{}, fmt.Errorf("archived path %s already recorded", e.ArchivedPath)
		}
	}

	doc.Entries = append(doc.Entries, e)
	if err := s.write(doc); err != nil {
		return Entry{}, err
	}

	log.Info("recorded archive", "name", e.Name, "archived_path", e.ArchivedPath)
	return e, nil
}

// Recorded reports whether any entry already claims archivedPath.
// Restored and hand-deleted files keep their claim.
func (s *Store) Recorded(archivedPath string) (bool, error) {
	entries, err := s.Load()
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.ArchivedPath == archivedPath {
			return true, nil
		}
	}
	return false, nil
}

// Load returns every entry in insertion order.
func (s *Store) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// MostRecent returns the entry with the latest ArchivedAt whose name matches.
// Ties go to the later-recorded entry. Names compare case-insensitively on Windows.
func (s *Store) MostRecent(name string) (Entry, bool, error) {
	entries, err := s.Load()
	if err != nil {
		return Entry{}, false, err
	}

	var (
		best  Entry
		found bool
	)
	for _, e := range entries {
		if !sameName(e.Name, name) {
			continue
		}
		if !found || !e.ArchivedAt.Before(best.ArchivedAt) {
			best = e
			found = true
		}
	}
	return best, found, nil
}

// List returns entries newest first. A non-positive limit returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}

	// Reverse first so the stable sort keeps later records ahead on ties.
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ArchivedAt.After(out[j].ArchivedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// load must be called with s.mu held.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Version: FormatVersion, Entries: []Entry{}}, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	doc := &document{}
	if len(bytes.TrimSpace(data)) == 0 {
		doc.Entries = []Entry{}
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}
	return doc, nil
}

// write replaces the manifest atomically: temp file, fsync, rename.
func (s *Store) write(doc *document) error {
	doc.Version = FormatVersion

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp manifest: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}

func sameName(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
