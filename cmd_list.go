package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cluttrdev/cli"

	"go.sphp.dev/spcu/internal/manifest"
)

func newListCmd() *cli.Command {
	cfg := listCmd{}

	fs := flag.NewFlagSet("spcu list", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "list",
		ShortHelp:  "List versions available for download.",
		ShortUsage: "spcu list [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type listCmd struct {
	rootCmd
	buildFlags

	version string
}

func (c *listCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
	c.buildFlags.RegisterFlags(fs)

	fs.StringVar(&c.version, "V", "", "Limit to a version or major.minor line, e.g. 8.4.10 or 8.4.")
	fs.StringVar(&c.version, "version", "", "Limit to a version or major.minor line, e.g. 8.4.10 or 8.4.")
}

func (c *listCmd) Exec(ctx context.Context, args []string) error {
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

	versions, err := newService(cfg).ListVersions(ctx, criteria, c.noCache)
	if err != nil {
		return err
	}

	if len(versions) == 0 {
		fmt.Printf("No build matches %s\n", criteria)
		return nil
	}
	for _, v := range versions {
		fmt.Println(v)
	}

	return nil
}
