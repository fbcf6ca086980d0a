// Package manifest holds the typed model of the upstream build matrix:
// the closed platform/category enums, the build entries listed by the
// remote API, and the filter criteria used to query them.
package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Category is a named bundle of compiled-in extensions.
type Category string

const (
	CategoryBulk    Category = "bulk"
	CategoryCommon  Category = "common"
	CategoryMinimal Category = "minimal"
	CategoryWinMin  Category = "win-min"
	CategoryWinMax  Category = "win-max"
)

// Categories returns all build categories in display order.
func Categories() []Category {
	return []Category{
		CategoryBulk,
		CategoryCommon,
		CategoryMinimal,
		CategoryWinMin,
		CategoryWinMax,
	}
}

// ParseCategory validates a user- or API-supplied category name.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryBulk, CategoryCommon, CategoryMinimal, CategoryWinMin, CategoryWinMax:
		return c, nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// Path returns the category's path below the download base URL.
// The windows categories live in a subtree with different names.
func (c Category) Path() string {
	switch c {
	case CategoryWinMin:
		return "windows/spc-min"
	case CategoryWinMax:
		return "windows/spc-max"
	}
	return string(c)
}

func (c Category) String() string { return string(c) }

// windows reports whether the category publishes windows artifacts.
func (c Category) windows() bool {
	return c == CategoryWinMin || c == CategoryWinMax
}

// OS is a supported target operating system.
type OS string

const (
	Linux   OS = "linux"
	MacOS   OS = "macos"
	Windows OS = "windows"
)

// ParseOS validates a user-supplied operating system name.
func ParseOS(s string) (OS, error) {
	switch o := OS(s); o {
	case Linux, MacOS, Windows:
		return o, nil
	}
	return "", fmt.Errorf("unknown os: %q", s)
}

func (o OS) String() string { return string(o) }

// Arch is a supported target architecture.
type Arch string

const (
	AMD64 Arch = "x86_64"
	ARM64 Arch = "aarch64"
)

// ParseArch validates a user-supplied architecture name.
func ParseArch(s string) (Arch, error) {
	switch a := Arch(s); a {
	case AMD64, ARM64:
		return a, nil
	}
	return "", fmt.Errorf("unknown arch: %q", s)
}

func (a Arch) String() string { return string(a) }

// BuildType is the SAPI variant of a published build.
type BuildType string

const (
	BuildCLI   BuildType = "cli"
	BuildFPM   BuildType = "fpm"
	BuildMicro BuildType = "micro"
)

// ParseBuildType validates a user-supplied build type.
func ParseBuildType(s string) (BuildType, error) {
	switch b := BuildType(s); b {
	case BuildCLI, BuildFPM, BuildMicro:
		return b, nil
	}
	return "", fmt.Errorf("unknown build type: %q", s)
}

func (b BuildType) String() string { return string(b) }

// BuildEntry is one published artifact.
// (Category, OS, Arch, BuildType, Version) is unique within a manifest.
type BuildEntry struct {
	Category    Category        `json:"category"`
	OS          OS              `json:"os"`
	Arch        Arch            `json:"arch"`
	BuildType   BuildType       `json:"buildType"`
	Version     *semver.Version `json:"version"`
	DownloadURL string          `json:"downloadUrl"`
}

// ParseEntry builds a BuildEntry from an artifact file name as published
// in the upstream directory listing.
//
// Unix categories list names like
//
//	php-8.4.10-cli-linux-x86_64.tar.gz
//
// while the windows categories list names like
//
//	php-8.4.10-cli-win.zip
//
// carrying no os/arch tokens; those are fixed to windows/x86_64.
func ParseEntry(category Category, name string, downloadURL string) (BuildEntry, error) {
	base, ok := trimArchiveExt(name)
	if !ok {
		return BuildEntry{}, fmt.Errorf("not an artifact archive: %q", name)
	}

	parts := strings.Split(base, "-")
	if len(parts) < 2 || parts[0] != "php" {
		return BuildEntry{}, fmt.Errorf("unexpected artifact name: %q", name)
	}

	version, err := semver.StrictNewVersion(parts[1])
	if err != nil {
		return BuildEntry{}, fmt.Errorf("artifact version %q: %w", parts[1], err)
	}

	entry := BuildEntry{
		Category:    category,
		Version:     version,
		DownloadURL: downloadURL,
	}

	if category.windows() {
		if len(parts) != 4 || parts[3] != "win" {
			return BuildEntry{}, fmt.Errorf("unexpected windows artifact name: %q", name)
		}
		entry.OS = Windows
		entry.Arch = AMD64
	} else {
		if len(parts) != 5 {
			return BuildEntry{}, fmt.Errorf("unexpected artifact name: %q", name)
		}
		if entry.OS, err = ParseOS(parts[3]); err != nil {
			return BuildEntry{}, fmt.Errorf("artifact %q: %w", name, err)
		}
		if entry.Arch, err = ParseArch(parts[4]); err != nil {
			return BuildEntry{}, fmt.Errorf("artifact %q: %w", name, err)
		}
	}

	if entry.BuildType, err = ParseBuildType(parts[2]); err != nil {
		return BuildEntry{}, fmt.Errorf("artifact %q: %w", name, err)
	}

	return entry, nil
}

func trimArchiveExt(name string) (string, bool) {
	for _, ext := range []string{".tar.gz", ".zip"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return name, false
}
