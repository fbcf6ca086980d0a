package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"

	"go.sphp.dev/spcu/internal/cache"
	"go.sphp.dev/spcu/internal/manifest"
)

type fakeFetcher struct {
	entries []manifest.BuildEntry
	err     error
	calls   int
}

func (f *fakeFetcher) FetchManifest(ctx context.Context, category manifest.Category) ([]manifest.BuildEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func newTestService(t *testing.T, fetcher *fakeFetcher) *Service {
	t.Helper()
	return &Service{
		Cache:   cache.NewStore(t.TempDir(), nil),
		Fetcher: fetcher,
	}
}

func TestServiceResolveLatest(t *testing.T) {
	fetcher := &fakeFetcher{entries: []manifest.BuildEntry{
		bulkEntry("8.4.9"),
		bulkEntry("8.4.15"),
		bulkEntry("8.3.20"),
	}}
	service := newTestService(t, fetcher)
	ctx := context.Background()

	// first request fetches and caches
	artifact, err := service.ResolveLatest(ctx, bulkCriteria("8.4"), false)
	if err != nil {
		t.Fatalf("ResolveLatest() failed: %v", err)
	}
	if artifact.Version.String() != "8.4.15" {
		t.Errorf("ResolveLatest() = %v, want 8.4.15", artifact.Version)
	}
	if artifact.FromCache {
		t.Error("ResolveLatest() FromCache = true on first request, want false")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}

	// second request is served from the cache
	artifact, err = service.ResolveLatest(ctx, bulkCriteria("8.4"), false)
	if err != nil {
		t.Fatalf("ResolveLatest() failed: %v", err)
	}
	if !artifact.FromCache {
		t.Error("ResolveLatest() FromCache = false on second request, want true")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}

	// bypassing the cache forces a fresh fetch
	artifact, err = service.ResolveLatest(ctx, bulkCriteria("8.4"), true)
	if err != nil {
		t.Fatalf("ResolveLatest() failed: %v", err)
	}
	if artifact.FromCache {
		t.Error("ResolveLatest() FromCache = true with bypass, want false")
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.calls)
	}
}

func TestServiceResolveLatestNoMatch(t *testing.T) {
	fetcher := &fakeFetcher{entries: []manifest.BuildEntry{bulkEntry("8.4.9")}}
	service := newTestService(t, fetcher)

	_, err := service.ResolveLatest(context.Background(), bulkCriteria("8.5"), false)

	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("ResolveLatest() error = %v, want *NoMatchError", err)
	}
}

func TestServiceFetchErrorNotCached(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	service := newTestService(t, fetcher)
	ctx := context.Background()

	if _, err := service.ResolveLatest(ctx, bulkCriteria(""), false); err == nil {
		t.Fatal("ResolveLatest() succeeded, want transport error")
	}
	if _, ok := service.Cache.Get(manifest.CategoryBulk); ok {
		t.Error("failed fetch was cached")
	}

	// once the remote recovers, the next request succeeds
	fetcher.err = nil
	fetcher.entries = []manifest.BuildEntry{bulkEntry("8.4.9")}
	artifact, err := service.ResolveLatest(ctx, bulkCriteria(""), false)
	if err != nil {
		t.Fatalf("ResolveLatest() failed: %v", err)
	}
	if artifact.FromCache {
		t.Error("ResolveLatest() FromCache = true after failed fetch, want false")
	}
}

func TestServiceExpiredCacheRefetches(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 0, 0, 0, time.Local)
	clock := func() time.Time { return now }

	fetcher := &fakeFetcher{entries: []manifest.BuildEntry{bulkEntry("8.4.9")}}
	service := &Service{
		Cache:   cache.NewStore(t.TempDir(), clock),
		Fetcher: fetcher,
	}
	ctx := context.Background()

	if _, err := service.ResolveLatest(ctx, bulkCriteria(""), false); err != nil {
		t.Fatalf("ResolveLatest() failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetcher called %d times, want 1", fetcher.calls)
	}

	// past midnight the cached manifest no longer counts
	now = time.Date(2026, 8, 26, 9, 0, 0, 0, time.Local)
	artifact, err := service.ResolveLatest(ctx, bulkCriteria(""), false)
	if err != nil {
		t.Fatalf("ResolveLatest() failed: %v", err)
	}
	if artifact.FromCache {
		t.Error("ResolveLatest() FromCache = true after expiry, want false")
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.calls)
	}
}

func TestServiceCheckUpdate(t *testing.T) {
	entries := []manifest.BuildEntry{
		bulkEntry("8.4.9"),
		bulkEntry("8.4.15"),
	}

	tests := []struct {
		testName string // description of this test case
		// Named input parameters for target function.
		current string
		want    bool
	}{
		{
			testName: "older current has update",
			current:  "8.4.9",
			want:     true,
		},
		{
			testName: "equal current is up to date",
			current:  "8.4.15",
			want:     false,
		},
		{
			testName: "newer current is not a downgrade",
			current:  "8.5.0",
			want:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			service := newTestService(t, &fakeFetcher{entries: entries})

			status, err := service.CheckUpdate(context.Background(), semver.MustParse(tt.current), bulkCriteria(""), false)
			if err != nil {
				t.Fatalf("CheckUpdate() failed: %v", err)
			}
			if status.UpdateAvailable != tt.want {
				t.Errorf("CheckUpdate() UpdateAvailable = %v, want %v", status.UpdateAvailable, tt.want)
			}
			if status.Latest.Version.String() != "8.4.15" {
				t.Errorf("CheckUpdate() latest = %v, want 8.4.15", status.Latest.Version)
			}
			if tt.want && status.Latest.DownloadURL == "" {
				t.Error("CheckUpdate() update available without download URL")
			}
		})
	}
}

func TestServiceListVersions(t *testing.T) {
	fetcher := &fakeFetcher{entries: []manifest.BuildEntry{
		bulkEntry("8.3.20"),
		bulkEntry("8.4.15"),
		bulkEntry("8.4.9"),
	}}
	service := newTestService(t, fetcher)

	versions, err := service.ListVersions(context.Background(), bulkCriteria(""), false)
	if err != nil {
		t.Fatalf("ListVersions() failed: %v", err)
	}

	want := []string{"8.4.15", "8.4.9", "8.3.20"}
	if len(versions) != len(want) {
		t.Fatalf("ListVersions() returned %d versions, want %d", len(versions), len(want))
	}
	for i, v := range versions {
		if v.String() != want[i] {
			t.Errorf("ListVersions()[%d] = %v, want %v", i, v, want[i])
		}
	}
}
