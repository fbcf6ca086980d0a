package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/cluttrdev/cli"

	"go.sphp.dev/spcu/internal/manifest"
	"go.sphp.dev/spcu/internal/resolve"
)

func newLatestCmd() *cli.Command {
	cfg := latestCmd{}

	fs := flag.NewFlagSet("spcu latest", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "latest",
		ShortHelp:  "Fetch the latest published build version.",
		ShortUsage: "spcu latest [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type latestCmd struct {
	rootCmd
	buildFlags

	version string
}

func (c *latestCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
	c.buildFlags.RegisterFlags(fs)

	fs.StringVar(&c.version, "V", "", "Limit to a version or major.minor line, e.g. 8.4.10 or 8.4.")
	fs.StringVar(&c.version, "version", "", "Limit to a version or major.minor line, e.g. 8.4.10 or 8.4.")
}

func (c *latestCmd) Exec(ctx context.Context, args []string) error {
	c.initLogging()

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

	artifact, err := newService(cfg).ResolveLatest(ctx, criteria, c.noCache)
	if err != nil {
		var noMatch *resolve.NoMatchError
		if errors.As(err, &noMatch) {
			fmt.Printf("No build matches %s\n", noMatch.Criteria)
			return nil
		}
		return err
	}

	if artifact.FromCache {
		fmt.Printf("Latest Version: %s (cached)\n", artifact.Version)
	} else {
		fmt.Printf("Latest Version: %s\n", artifact.Version)
	}

	return nil
}
