// Package resolve selects build entries from manifests and orchestrates
// the cache-or-fetch pipeline behind every resolution request.
package resolve

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"go.sphp.dev/spcu/internal/manifest"
)

// NoMatchError reports that no manifest entry satisfied the criteria.
// It is a normal negative result, not a failure; callers decide how to
// present it.
type NoMatchError struct {
	Criteria manifest.Criteria
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no build matches %s", e.Criteria)
}

// FindLatest returns the entry with the highest version among those
// matching the criteria. Versions compare numerically by major, minor,
// patch. On equal versions the first entry in manifest order wins; the
// upstream listing never legitimately contains such duplicates, but a
// stale mirror might.
func FindLatest(entries []manifest.BuildEntry, criteria manifest.Criteria) (manifest.BuildEntry, error) {
	var (
		best  manifest.BuildEntry
		found bool
	)
	for _, entry := range entries {
		if !criteria.Matches(entry) {
			continue
		}
		if !found || entry.Version.GreaterThan(best.Version) {
			best = entry
			found = true
		}
	}
	if !found {
		return manifest.BuildEntry{}, &NoMatchError{Criteria: criteria}
	}
	return best, nil
}

// ListVersions returns the distinct versions matching the criteria,
// newest first.
func ListVersions(entries []manifest.BuildEntry, criteria manifest.Criteria) []*semver.Version {
	seen := make(map[string]struct{})
	var versions []*semver.Version
	for _, entry := range entries {
		if !criteria.Matches(entry) {
			continue
		}
		key := entry.Version.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		versions = append(versions, entry.Version)
	}

	sort.Sort(sort.Reverse(semver.Collection(versions)))
	return versions
}
