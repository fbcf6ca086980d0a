package manifest

import (
	"fmt"
	"runtime"
)

// Platform is a detected or requested os/arch pair.
type Platform struct {
	OS   OS
	Arch Arch
}

// HostPlatform maps the runtime's os/arch onto the upstream naming.
// It fails on platforms the upstream build matrix does not publish for.
func HostPlatform() (Platform, error) {
	var p Platform

	switch runtime.GOOS {
	case "linux":
		p.OS = Linux
	case "darwin":
		p.OS = MacOS
	case "windows":
		p.OS = Windows
	default:
		return Platform{}, fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		p.Arch = AMD64
	case "arm64", "arm":
		p.Arch = ARM64
	default:
		return Platform{}, fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}

	return p, nil
}
