package resolve

import (
	"context"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	"go.sphp.dev/spcu/internal/cache"
	"go.sphp.dev/spcu/internal/manifest"
)

// Fetcher retrieves the published build entries for a category from the
// remote API.
type Fetcher interface {
	FetchManifest(ctx context.Context, category manifest.Category) ([]manifest.BuildEntry, error)
}

// Artifact is a resolved build entry together with its provenance.
type Artifact struct {
	manifest.BuildEntry

	// FromCache is true when the entry was resolved against a cached
	// manifest rather than a fresh fetch.
	FromCache bool
}

// UpdateStatus is the outcome of an update check.
type UpdateStatus struct {
	Current *semver.Version
	Latest  Artifact

	// UpdateAvailable is true only when the resolved latest version is
	// strictly greater than Current; an older upstream is never
	// reported as an update.
	UpdateAvailable bool
}

// Service answers resolution requests by composing the cache store, the
// remote fetcher, and the entry selection. It holds no state of its own;
// everything durable lives in the cache store.
type Service struct {
	Cache   *cache.Store
	Fetcher Fetcher
}

// ResolveLatest returns the best entry for the criteria, resolving
// against the cached manifest when one is valid and bypassCache is
// false, and against a fresh fetch otherwise. The criteria must already
// be defaulted. A *NoMatchError is returned when nothing matches.
func (s *Service) ResolveLatest(ctx context.Context, criteria manifest.Criteria, bypassCache bool) (Artifact, error) {
	entries, fromCache, err := s.manifest(ctx, criteria.Category, bypassCache)
	if err != nil {
		return Artifact{}, err
	}

	entry, err := FindLatest(entries, criteria)
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{BuildEntry: entry, FromCache: fromCache}, nil
}

// CheckUpdate resolves the latest entry for the criteria and compares it
// against the given current version.
func (s *Service) CheckUpdate(ctx context.Context, current *semver.Version, criteria manifest.Criteria, bypassCache bool) (UpdateStatus, error) {
	latest, err := s.ResolveLatest(ctx, criteria, bypassCache)
	if err != nil {
		return UpdateStatus{}, err
	}

	return UpdateStatus{
		Current:         current,
		Latest:          latest,
		UpdateAvailable: latest.Version.GreaterThan(current),
	}, nil
}

// ListVersions returns all distinct versions matching the criteria,
// newest first, using the same cache-or-fetch path as ResolveLatest.
func (s *Service) ListVersions(ctx context.Context, criteria manifest.Criteria, bypassCache bool) ([]*semver.Version, error) {
	entries, _, err := s.manifest(ctx, criteria.Category, bypassCache)
	if err != nil {
		return nil, err
	}
	return ListVersions(entries, criteria), nil
}

// manifest returns the build entries for a category, from the cache when
// possible. A fresh fetch is written back to the cache; a write failure
// only costs the caching, never the request. Failed fetches are never
// cached.
func (s *Service) manifest(ctx context.Context, category manifest.Category, bypassCache bool) ([]manifest.BuildEntry, bool, error) {
	if !bypassCache {
		if entry, ok := s.Cache.Get(category); ok {
			return entry.Entries, true, nil
		}
	}

	entries, err := s.Fetcher.FetchManifest(ctx, category)
	if err != nil {
		return nil, false, err
	}

	if err := s.Cache.Put(category, entries); err != nil {
		slog.Warn("failed to write cache", "category", category, "error", err)
	}

	return entries, false, nil
}
