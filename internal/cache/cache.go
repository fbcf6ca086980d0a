// Package cache persists fetched manifests on disk, one JSON file per
// build category, valid until the end of the day they were fetched on.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.sphp.dev/spcu/internal/manifest"
)

// Entry is the persisted cache unit for one category.
type Entry struct {
	Category  manifest.Category     `json:"category"`
	FetchedAt time.Time             `json:"fetchedAt"`
	ExpiresAt time.Time             `json:"expiresAt"`
	Entries   []manifest.BuildEntry `json:"entries"`
}

// FileInfo describes one on-disk cache file for diagnostic display,
// regardless of whether it is still valid.
type FileInfo struct {
	Category  manifest.Category
	Entries   int
	Size      int64
	FetchedAt time.Time
	ExpiresAt time.Time
	Valid     bool
}

// Store reads and writes per-category cache files below a root directory.
// The directory and clock are injected so tests can use a temp dir and
// simulate day-boundary crossings.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a store rooted at dir. If now is nil, time.Now is used.
func NewStore(dir string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{dir: dir, now: now}
}

// DefaultDir returns the platform-standard cache directory for spcu.
func DefaultDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "spcu")
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) filePath(category manifest.Category) string {
	return filepath.Join(s.dir, string(category)+".json")
}

// Get returns the cached entry for the category if one exists, is
// readable, and has not expired. A corrupt or stale file is reported as
// a miss, never as an error; it is left in place to be overwritten by
// the next Put.
func (s *Store) Get(category manifest.Category) (Entry, bool) {
	data, err := os.ReadFile(s.filePath(category))
	if err != nil {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}

	if !s.now().Before(entry.ExpiresAt) {
		return Entry{}, false
	}

	return entry, true
}

// Put stores a freshly fetched manifest for the category, replacing any
// previous file. The entry expires at the local midnight following the
// fetch time. The replace is a whole-file rename so concurrent readers
// never observe a partial write.
func (s *Store) Put(category manifest.Category, entries []manifest.BuildEntry) error {
	fetchedAt := s.now()

	entry := Entry{
		Category:  category,
		FetchedAt: fetchedAt,
		ExpiresAt: endOfDay(fetchedAt),
		Entries:   entries,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	path := s.filePath(category)
	tmp := path + ".new"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace cache file: %w", err)
	}

	return nil
}

// List enumerates all on-disk cache files in category display order.
// Unreadable files are still listed, with size and modification time
// from file metadata only.
func (s *Store) List() []FileInfo {
	var infos []FileInfo

	for _, category := range manifest.Categories() {
		stat, err := os.Stat(s.filePath(category))
		if err != nil {
			continue
		}

		info := FileInfo{
			Category:  category,
			Size:      stat.Size(),
			FetchedAt: stat.ModTime(),
		}

		if entry, ok := s.read(category); ok {
			info.Entries = len(entry.Entries)
			info.FetchedAt = entry.FetchedAt
			info.ExpiresAt = entry.ExpiresAt
			info.Valid = s.now().Before(entry.ExpiresAt)
		}

		infos = append(infos, info)
	}

	return infos
}

// Clear removes the cache file for the given category, or all cache
// files if the category is empty. It returns the number of files
// removed; a missing file is not an error.
func (s *Store) Clear(category manifest.Category) (int, error) {
	categories := manifest.Categories()
	if category != "" {
		categories = []manifest.Category{category}
	}

	var removed int
	for _, c := range categories {
		err := os.Remove(s.filePath(c))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("remove cache file: %w", err)
		}
		removed++
	}

	return removed, nil
}

// read decodes a cache file without checking its validity.
func (s *Store) read(category manifest.Category) (Entry, bool) {
	data, err := os.ReadFile(s.filePath(category))
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

// endOfDay returns the midnight boundary following t, in t's location.
func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, t.Location())
}
