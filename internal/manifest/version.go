package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionFilter narrows resolution to a version range. A full
// `major.minor.patch` filter matches exactly one version; `major.minor`
// matches any patch of that minor; a bare `major` matches any minor.
// A patch of 0 in a full filter is an exact requirement, never a
// wildcard: `8.4.0` only matches 8.4.0, while `8.4` matches all of 8.4.x.
type VersionFilter struct {
	raw         string
	constraints *semver.Constraints
}

// ParseVersionFilter parses a version filter string.
func ParseVersionFilter(s string) (*VersionFilter, error) {
	var spec string
	switch strings.Count(s, ".") {
	case 0:
		spec = s + ".x.x"
	case 1:
		spec = s + ".x"
	case 2:
		spec = "=" + s
	default:
		return nil, fmt.Errorf("invalid version filter: %q", s)
	}

	constraints, err := semver.NewConstraint(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid version filter %q: %w", s, err)
	}

	return &VersionFilter{
		raw:         s,
		constraints: constraints,
	}, nil
}

// Match reports whether the version satisfies the filter.
func (f *VersionFilter) Match(v *semver.Version) bool {
	if v == nil {
		return false
	}
	return f.constraints.Check(v)
}

func (f *VersionFilter) String() string { return f.raw }
