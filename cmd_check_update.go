package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/cluttrdev/cli"

	"go.sphp.dev/spcu/internal/resolve"
)

func newCheckUpdateCmd() *cli.Command {
	cfg := checkUpdateCmd{}

	fs := flag.NewFlagSet("spcu check-update", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "check-update",
		ShortHelp:  "Check whether a newer build than the given version is published.",
		ShortUsage: "spcu check-update -v VERSION [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type checkUpdateCmd struct {
	rootCmd
	buildFlags

	version string
}

func (c *checkUpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
	c.buildFlags.RegisterFlags(fs)

	fs.StringVar(&c.version, "v", "", "The currently installed version.")
	fs.StringVar(&c.version, "version", "", "The currently installed version.")
}

func (c *checkUpdateCmd) Exec(ctx context.Context, args []string) error {
	c.initLogging()

	if c.version == "" {
		return fmt.Errorf("missing required flag: -version")
	}
	current, err := semver.NewVersion(c.version)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", c.version, err)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	criteria, err := c.criteria(cfg)
	if err != nil {
		return err
	}

	status, err := newService(cfg).CheckUpdate(ctx, current, criteria, c.noCache)
	if err != nil {
		var noMatch *resolve.NoMatchError
		if errors.As(err, &noMatch) {
			fmt.Printf("No build matches %s\n", noMatch.Criteria)
			return nil
		}
		return err
	}

	cachedMarker := ""
	if status.Latest.FromCache {
		cachedMarker = " (cached)"
	}
	if status.UpdateAvailable {
		fmt.Printf("Update available: %s -> %s%s\n", status.Current, status.Latest.Version, cachedMarker)
		fmt.Printf("  %s\n", status.Latest.DownloadURL)
	} else {
		fmt.Printf("You have the latest version: %s%s\n", status.Current, cachedMarker)
	}

	return nil
}
