package manifest

import (
	"fmt"
	"strings"
)

// Criteria describes which build a caller is asking for. Zero-valued
// fields are filled in by WithDefaults before resolution.
type Criteria struct {
	Category  Category
	OS        OS
	Arch      Arch
	BuildType BuildType
	Version   *VersionFilter // nil means latest overall
}

// WithDefaults returns a copy of c with unset fields replaced by their
// defaults: the host platform for os/arch, `cli` for the build type, and
// the per-OS default category (win-max on windows, bulk elsewhere).
func (c Criteria) WithDefaults(host Platform) Criteria {
	if c.OS == "" {
		c.OS = host.OS
	}
	if c.Arch == "" {
		c.Arch = host.Arch
	}
	if c.BuildType == "" {
		c.BuildType = BuildCLI
	}
	if c.Category == "" {
		if c.OS == Windows {
			c.Category = CategoryWinMax
		} else {
			c.Category = CategoryBulk
		}
	}
	return c
}

// Matches reports whether the entry satisfies all criteria fields,
// including the version filter.
func (c Criteria) Matches(entry BuildEntry) bool {
	if entry.Category != c.Category ||
		entry.OS != c.OS ||
		entry.Arch != c.Arch ||
		entry.BuildType != c.BuildType {
		return false
	}
	if c.Version != nil && !c.Version.Match(entry.Version) {
		return false
	}
	return true
}

// String renders the criteria for user-facing diagnostics.
func (c Criteria) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "category=%s os=%s arch=%s build-type=%s", c.Category, c.OS, c.Arch, c.BuildType)
	if c.Version != nil {
		fmt.Fprintf(&sb, " version=%s", c.Version)
	}
	return sb.String()
}
