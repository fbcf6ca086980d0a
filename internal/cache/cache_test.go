package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-cmp/cmp"

	"go.sphp.dev/spcu/internal/manifest"
)

var versionComparer = cmp.Comparer(func(a, b *semver.Version) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
})

// fakeClock returns a settable clock function.
func fakeClock(start time.Time) (func() time.Time, func(time.Time)) {
	now := start
	return func() time.Time { return now }, func(t time.Time) { now = t }
}

func testEntries() []manifest.BuildEntry {
	return []manifest.BuildEntry{
		{
			Category:    manifest.CategoryBulk,
			OS:          manifest.Linux,
			Arch:        manifest.AMD64,
			BuildType:   manifest.BuildCLI,
			Version:     semver.MustParse("8.4.10"),
			DownloadURL: "https://dl.example.com/bulk/php-8.4.10-cli-linux-x86_64.tar.gz",
		},
		{
			Category:    manifest.CategoryBulk,
			OS:          manifest.Linux,
			Arch:        manifest.AMD64,
			BuildType:   manifest.BuildCLI,
			Version:     semver.MustParse("8.4.9"),
			DownloadURL: "https://dl.example.com/bulk/php-8.4.9-cli-linux-x86_64.tar.gz",
		},
	}
}

func TestStorePutGet(t *testing.T) {
	now, _ := fakeClock(time.Date(2026, 8, 25, 14, 30, 0, 0, time.Local))
	store := NewStore(t.TempDir(), now)

	entries := testEntries()
	if err := store.Put(manifest.CategoryBulk, entries); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, ok := store.Get(manifest.CategoryBulk)
	if !ok {
		t.Fatal("Get() = miss, want hit")
	}
	if d := cmp.Diff(entries, got.Entries, versionComparer); d != "" {
		t.Errorf("Get() entries mismatch (-want/+got): %v", d)
	}

	wantExpires := time.Date(2026, 8, 26, 0, 0, 0, 0, time.Local)
	if !got.ExpiresAt.Equal(wantExpires) {
		t.Errorf("Get() ExpiresAt = %v, want %v", got.ExpiresAt, wantExpires)
	}

	if _, ok := store.Get(manifest.CategoryCommon); ok {
		t.Error("Get() = hit for other category, want miss")
	}
}

func TestStoreGetExpired(t *testing.T) {
	now, setNow := fakeClock(time.Date(2026, 8, 25, 23, 59, 0, 0, time.Local))
	store := NewStore(t.TempDir(), now)

	if err := store.Put(manifest.CategoryBulk, testEntries()); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	if _, ok := store.Get(manifest.CategoryBulk); !ok {
		t.Fatal("Get() before midnight = miss, want hit")
	}

	// crossing the day boundary invalidates the entry, the file stays
	setNow(time.Date(2026, 8, 26, 0, 0, 1, 0, time.Local))
	if _, ok := store.Get(manifest.CategoryBulk); ok {
		t.Error("Get() after midnight = hit, want miss")
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "bulk.json")); err != nil {
		t.Errorf("stale cache file should remain on disk: %v", err)
	}
}

func TestStoreGetCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	if err := os.WriteFile(filepath.Join(dir, "bulk.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Get(manifest.CategoryBulk); ok {
		t.Error("Get() = hit for corrupt file, want miss")
	}
}

func TestStorePutOverwrites(t *testing.T) {
	now, _ := fakeClock(time.Date(2026, 8, 25, 10, 0, 0, 0, time.Local))
	store := NewStore(t.TempDir(), now)

	if err := store.Put(manifest.CategoryBulk, testEntries()); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	replacement := testEntries()[:1]
	if err := store.Put(manifest.CategoryBulk, replacement); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, ok := store.Get(manifest.CategoryBulk)
	if !ok {
		t.Fatal("Get() = miss, want hit")
	}
	if d := cmp.Diff(replacement, got.Entries, versionComparer); d != "" {
		t.Errorf("Get() entries mismatch (-want/+got): %v", d)
	}
}

func TestStoreListAndClear(t *testing.T) {
	now, _ := fakeClock(time.Date(2026, 8, 25, 10, 0, 0, 0, time.Local))
	store := NewStore(t.TempDir(), now)

	if err := store.Put(manifest.CategoryBulk, testEntries()); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := store.Put(manifest.CategoryCommon, testEntries()[:1]); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	infos := store.List()
	if len(infos) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(infos))
	}
	if infos[0].Category != manifest.CategoryBulk || infos[1].Category != manifest.CategoryCommon {
		t.Errorf("List() order = %v, %v", infos[0].Category, infos[1].Category)
	}
	if infos[0].Entries != 2 || infos[1].Entries != 1 {
		t.Errorf("List() entry counts = %d, %d, want 2, 1", infos[0].Entries, infos[1].Entries)
	}
	for _, info := range infos {
		if !info.Valid {
			t.Errorf("List() %s not valid, want valid", info.Category)
		}
		if info.Size <= 0 {
			t.Errorf("List() %s size = %d, want > 0", info.Category, info.Size)
		}
	}

	removed, err := store.Clear(manifest.CategoryBulk)
	if err != nil {
		t.Fatalf("Clear(bulk) failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Clear(bulk) removed %d, want 1", removed)
	}
	if infos := store.List(); len(infos) != 1 || infos[0].Category != manifest.CategoryCommon {
		t.Errorf("List() after Clear(bulk) = %v", infos)
	}

	removed, err = store.Clear("")
	if err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Clear() removed %d, want 1", removed)
	}
	if infos := store.List(); len(infos) != 0 {
		t.Errorf("List() after Clear() = %v, want empty", infos)
	}

	// clearing nothing is a no-op, not an error
	removed, err = store.Clear("")
	if err != nil {
		t.Fatalf("Clear() on empty cache failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Clear() on empty cache removed %d, want 0", removed)
	}
}

func TestStoreListExpired(t *testing.T) {
	now, setNow := fakeClock(time.Date(2026, 8, 25, 10, 0, 0, 0, time.Local))
	store := NewStore(t.TempDir(), now)

	if err := store.Put(manifest.CategoryBulk, testEntries()); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	setNow(time.Date(2026, 8, 27, 10, 0, 0, 0, time.Local))

	infos := store.List()
	if len(infos) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(infos))
	}
	if infos[0].Valid {
		t.Error("List() expired entry reported valid")
	}
	if infos[0].Entries != 2 {
		t.Errorf("List() expired entry count = %d, want 2", infos[0].Entries)
	}
}

func TestEndOfDay(t *testing.T) {
	tests := []struct {
		testName string
		at       time.Time
		want     time.Time
	}{
		{
			testName: "afternoon",
			at:       time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC),
			want:     time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			testName: "just after midnight",
			at:       time.Date(2026, 8, 25, 0, 0, 1, 0, time.UTC),
			want:     time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			testName: "month boundary",
			at:       time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC),
			want:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			testName: "year boundary",
			at:       time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC),
			want:     time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			if got := endOfDay(tt.at); !got.Equal(tt.want) {
				t.Errorf("endOfDay() = %v, want %v", got, tt.want)
			}
		})
	}
}
