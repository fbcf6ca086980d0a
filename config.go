package main

import (
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// Config holds all application configuration settings. Every field is
// optional; the zero value selects the upstream defaults.
type Config struct {
	// BaseURL is the root of the build matrix download server.
	BaseURL string `yaml:"baseUrl"`

	// ManifestJSONPath extracts artifact file names from the listing
	// response, for mirrors that wrap the listing in an envelope.
	ManifestJSONPath string `yaml:"manifestJsonPath"`

	// CacheDir overrides the platform-standard cache directory.
	CacheDir string `yaml:"cacheDir"`

	Defaults Defaults `yaml:"defaults"`
}

// Defaults holds configured fallbacks for the filter options. Flags take
// precedence over these; these take precedence over host detection.
type Defaults struct {
	Category  string `yaml:"category"`
	OS        string `yaml:"os"`
	Arch      string `yaml:"arch"`
	BuildType string `yaml:"buildType"`
}

// LoadConfig reads the configuration from a reader into `cfg`.
func LoadConfig(r io.Reader, cfg *Config) error {
	if r == nil {
		return nil
	}
	return yaml.NewDecoder(r).Decode(cfg)
}

// LoadConfigFile reads the configuration from a file into `cfg`.
// A missing file leaves `cfg` untouched.
func LoadConfigFile(name string, cfg *Config) error {
	file, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func() {
		_ = file.Close()
	}()
	if err := LoadConfig(file, cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}
