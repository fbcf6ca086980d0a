package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	_url "net/url"
	"os"
	"path/filepath"

	"github.com/cluttrdev/cli"
	"github.com/pterm/pterm"

	"go.sphp.dev/spcu/internal/manifest"
	"go.sphp.dev/spcu/internal/metaerr"
	"go.sphp.dev/spcu/internal/resolve"
	"go.sphp.dev/spcu/internal/spcapi"
)

func newDownloadCmd() *cli.Command {
	cfg := downloadCmd{}

	fs := flag.NewFlagSet("spcu download", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "download",
		ShortHelp:  "Download a published build artifact.",
		ShortUsage: "spcu download [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type downloadCmd struct {
	rootCmd
	buildFlags

	version string
	output  string
	extract bool
}

func (c *downloadCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
	c.buildFlags.RegisterFlags(fs)

	fs.StringVar(&c.version, "V", "", "Limit to a version or major.minor line, e.g. 8.4.10 or 8.4.")
	fs.StringVar(&c.version, "version", "", "Limit to a version or major.minor line, e.g. 8.4.10 or 8.4.")
	fs.StringVar(&c.output, "o", "", "The output file path.")
	fs.StringVar(&c.output, "output", "", "The output file path.")
	fs.BoolVar(&c.extract, "x", false, "Extract the binary from the downloaded archive.")
	fs.BoolVar(&c.extract, "extract", false, "Extract the binary from the downloaded archive.")
}

func (c *downloadCmd) Exec(ctx context.Context, args []string) (err error) {
	c.initLogging()

	defer func() {
		if err != nil && c.logFile != os.Stderr {
			err = fmt.Errorf("%w\nSee %s for details", err, c.logFile.Name())
		}
	}()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	criteria, err := c.criteria(cfg)
	if err != nil {
		return err
	}
	if c.version != "" {
		if criteria.Version, err = manifest.ParseVersionFilter(c.version); err != nil {
			return err
		}
	}

	client := spcapi.NewClient(cfg.BaseURL, cfg.ManifestJSONPath)
	service := &resolve.Service{
		Cache:   newStore(cfg),
		Fetcher: client,
	}

	artifact, err := service.ResolveLatest(ctx, criteria, c.noCache)
	if err != nil {
		var noMatch *resolve.NoMatchError
		if errors.As(err, &noMatch) {
			fmt.Printf("No build matches %s\n", noMatch.Criteria)
			return nil
		}
		return err
	}

	spinner, _ := pterm.DefaultSpinner.Start("Downloading ", artifact.DownloadURL)

	output, err := c.fetch(ctx, client, artifact)
	if err != nil {
		slog.With("url", artifact.DownloadURL, "error", err).
			With(metaerr.GetMetadata(err)...).
			Error("failed to download artifact")
		spinner.Fail("Failed to download ", artifact.DownloadURL, ": ", err)
		return err
	}
	spinner.Success("Downloaded to ", output)

	return nil
}

// fetch downloads the resolved artifact, optionally extracting the
// contained binary, and returns the final output path.
func (c *downloadCmd) fetch(ctx context.Context, client *spcapi.Client, artifact resolve.Artifact) (string, error) {
	name := filepath.Base(urlPath(artifact.DownloadURL))

	if !c.extract {
		output := c.output
		if output == "" {
			output = name
		}
		if err := client.Download(ctx, artifact.DownloadURL, output); err != nil {
			return "", err
		}
		return output, nil
	}

	tmpDir, err := os.MkdirTemp("", "spcu-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Error("failed to remove temporary directory", "dir", tmpDir, "error", err)
		}
	}()

	archive := filepath.Join(tmpDir, name)
	if err := client.Download(ctx, artifact.DownloadURL, archive); err != nil {
		return "", err
	}

	binName := archiveBinaryName(artifact.BuildType, artifact.OS)
	extracted, err := Extract(archive, binName)
	if err != nil {
		return "", fmt.Errorf("extract archived binary: %w", err)
	}

	output := c.output
	if output == "" {
		output = binName
	}
	if err := Install(extracted, output); err != nil {
		return "", fmt.Errorf("install binary: %w", err)
	}

	return output, nil
}

// archiveBinaryName returns the name of the binary inside a published
// archive for the given build type.
func archiveBinaryName(buildType manifest.BuildType, os manifest.OS) string {
	switch buildType {
	case manifest.BuildFPM:
		return "php-fpm"
	case manifest.BuildMicro:
		return "micro.sfx"
	}
	if os == manifest.Windows {
		return "php.exe"
	}
	return "php"
}

func urlPath(url string) string {
	u, _ := _url.Parse(url)
	return u.Path
}
