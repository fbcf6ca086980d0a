package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/cluttrdev/cli"
	"github.com/pterm/pterm"

	"go.sphp.dev/spcu/internal/manifest"
)

func newCacheCmd() *cli.Command {
	var cfg rootCmd

	fs := flag.NewFlagSet("spcu cache", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "cache",
		ShortHelp:  "Manage the local manifest cache.",
		ShortUsage: "spcu cache [COMMAND] [OPTION]...",
		Subcommands: []*cli.Command{
			newCacheListCmd(),
			newCacheClearCmd(),
			newCachePathCmd(),
		},
		Flags: fs,
		Exec:  cfg.Exec,
	}
}

func newCacheListCmd() *cli.Command {
	cfg := cacheListCmd{}

	fs := flag.NewFlagSet("spcu cache list", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "list",
		ShortHelp:  "List all cached manifests with details.",
		ShortUsage: "spcu cache list [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type cacheListCmd struct {
	rootCmd
}

func (c *cacheListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
}

func (c *cacheListCmd) Exec(ctx context.Context, args []string) error {
	c.initLogging()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store := newStore(cfg)

	infos := store.List()
	if len(infos) == 0 {
		fmt.Println("No cached files found.")
		fmt.Printf("Cache directory: %s\n", store.Dir())
		return nil
	}

	now := time.Now()
	data := pterm.TableData{
		{"Category", "Entries", "Size", "Fetched", "Expires"},
	}
	for _, info := range infos {
		data = append(data, []string{
			info.Category.String(),
			strconv.Itoa(info.Entries),
			formatSize(info.Size),
			info.FetchedAt.Format("2006-01-02 15:04"),
			formatExpires(info.ExpiresAt, now),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	fmt.Printf("\nCache directory: %s\n", store.Dir())
	return nil
}

func newCacheClearCmd() *cli.Command {
	cfg := cacheClearCmd{}

	fs := flag.NewFlagSet("spcu cache clear", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "clear",
		ShortHelp:  "Clear cached manifests.",
		ShortUsage: "spcu cache clear [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type cacheClearCmd struct {
	rootCmd

	category string
}

func (c *cacheClearCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)

	fs.StringVar(&c.category, "C", "", "Clear only a specific category.")
	fs.StringVar(&c.category, "category", "", "Clear only a specific category.")
}

func (c *cacheClearCmd) Exec(ctx context.Context, args []string) error {
	c.initLogging()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store := newStore(cfg)

	var category manifest.Category
	if c.category != "" {
		if category, err = manifest.ParseCategory(c.category); err != nil {
			return err
		}
	}

	removed, err := store.Clear(category)
	if err != nil {
		return err
	}

	if removed == 0 {
		fmt.Println("No cache files to remove.")
	} else {
		fmt.Printf("Removed %d cache file(s).\n", removed)
	}
	return nil
}

func newCachePathCmd() *cli.Command {
	cfg := cachePathCmd{}

	fs := flag.NewFlagSet("spcu cache path", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "path",
		ShortHelp:  "Print the cache directory path.",
		ShortUsage: "spcu cache path",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type cachePathCmd struct {
	rootCmd
}

func (c *cachePathCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
}

func (c *cachePathCmd) Exec(ctx context.Context, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	fmt.Println(newStore(cfg).Dir())
	return nil
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	}
	return fmt.Sprintf("%d B", bytes)
}

func formatExpires(expires time.Time, now time.Time) string {
	if !now.Before(expires) {
		return "expired"
	}

	duration := expires.Sub(now)
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("in %dh %dm", hours, minutes)
	}
	return fmt.Sprintf("in %dm", minutes)
}
