package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cluttrdev/cli"

	"go.sphp.dev/spcu/internal/cache"
	"go.sphp.dev/spcu/internal/manifest"
	"go.sphp.dev/spcu/internal/resolve"
	"go.sphp.dev/spcu/internal/spcapi"
)

// execute configures the root command and then runs it with the given context.
func execute(ctx context.Context) error {
	cmd := configure()
	opts := []cli.ParseOption{
		cli.WithEnvVarPrefix("SPCU"),
	}
	args := os.Args[1:]

	if err := cmd.Parse(args, opts...); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse arguments: %w", err)
	}

	return cmd.Run(ctx)
}

// configure returns the root command.
func configure() *cli.Command {
	var cfg rootCmd

	fs := flag.NewFlagSet("spcu", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "spcu",
		ShortHelp:  "Resolve and download static-php builds.",
		ShortUsage: "spcu [COMMAND] [OPTION]... [ARG]...",
		Subcommands: []*cli.Command{
			cli.DefaultVersionCommand(os.Stdout),
			newLatestCmd(),
			newCheckUpdateCmd(),
			newDownloadCmd(),
			newListCmd(),
			newCacheCmd(),
			newExamplesCmd(),
		},
		Flags: fs,
		Exec:  cfg.Exec,
	}
}

func initLogging(w io.Writer, level string, format string) {
	if w == nil {
		w = os.Stderr
	}

	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := slog.HandlerOptions{
		Level: lvl,
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(w, &opts)
	case "json":
		handler = slog.NewJSONHandler(w, &opts)
	default:
		handler = slog.NewTextHandler(w, &opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

type rootCmd struct {
	ConfigFile string

	logFile   *os.File
	logLevel  string
	logFormat string
	debug     bool
}

func (c *rootCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", ".spcu.yaml", "The configuration file.")

	fs.StringVar(&c.logLevel, "log-level", "info", "The log level.")
	fs.StringVar(&c.logFormat, "log-format", "text", "The log format ('text' or 'json').")
	fs.BoolVar(&c.debug, "debug", false, "Enable debug mode.")
}

func (c *rootCmd) Exec(ctx context.Context, args []string) error {
	return flag.ErrHelp
}

func (c *rootCmd) initLogging() {
	if stateDir, err := userStateDir(); err == nil {
		c.logFile, _ = os.OpenFile(filepath.Join(stateDir, "spcu.log"), os.O_APPEND|os.O_WRONLY|os.O_CREATE, os.ModePerm)
	}
	if c.logFile == nil {
		c.logFile = os.Stderr
	}

	level := c.logLevel
	if c.debug {
		level = "debug"
	}
	initLogging(c.logFile, level, c.logFormat)
}

// loadConfig reads the configuration file. A missing file is not an
// error, the defaults apply.
func (c *rootCmd) loadConfig() (Config, error) {
	var cfg Config
	if err := LoadConfigFile(c.ConfigFile, &cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

func userStateDir() (string, error) {
	xdgStateHome, ok := os.LookupEnv("XDG_STATE_HOME")
	if !ok || xdgStateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		xdgStateHome = filepath.Join(home, ".local", "state")
	}

	return xdgStateHome, nil
}

// newStore returns the cache store for the configured cache directory.
func newStore(cfg Config) *cache.Store {
	dir := cfg.CacheDir
	if dir == "" {
		dir = cache.DefaultDir()
	}
	return cache.NewStore(dir, nil)
}

// newService wires the cache store and the API client into the
// resolution service.
func newService(cfg Config) *resolve.Service {
	return &resolve.Service{
		Cache:   newStore(cfg),
		Fetcher: spcapi.NewClient(cfg.BaseURL, cfg.ManifestJSONPath),
	}
}

// buildFlags are the filter options shared by the commands that resolve
// against the build matrix.
type buildFlags struct {
	category  string
	os        string
	arch      string
	buildType string
	noCache   bool
}

func (f *buildFlags) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.category, "C", "", "The build category (bulk, common, minimal, win-min, win-max).")
	fs.StringVar(&f.category, "category", "", "The build category (bulk, common, minimal, win-min, win-max).")
	fs.StringVar(&f.os, "O", "", "The target operating system (linux, macos, windows).")
	fs.StringVar(&f.os, "os", "", "The target operating system (linux, macos, windows).")
	fs.StringVar(&f.arch, "A", "", "The target architecture (x86_64, aarch64).")
	fs.StringVar(&f.arch, "arch", "", "The target architecture (x86_64, aarch64).")
	fs.StringVar(&f.buildType, "B", "", "The build type (cli, fpm, micro).")
	fs.StringVar(&f.buildType, "build-type", "", "The build type (cli, fpm, micro).")
	fs.BoolVar(&f.noCache, "no-cache", false, "Skip the cache and fetch fresh data.")
}

// criteria merges flags over configured defaults; whatever remains unset
// is filled from the host platform.
func (f *buildFlags) criteria(cfg Config) (manifest.Criteria, error) {
	var (
		criteria manifest.Criteria
		err      error
	)

	if s := firstOf(f.category, cfg.Defaults.Category); s != "" {
		if criteria.Category, err = manifest.ParseCategory(s); err != nil {
			return manifest.Criteria{}, err
		}
	}
	if s := firstOf(f.os, cfg.Defaults.OS); s != "" {
		if criteria.OS, err = manifest.ParseOS(s); err != nil {
			return manifest.Criteria{}, err
		}
	}
	if s := firstOf(f.arch, cfg.Defaults.Arch); s != "" {
		if criteria.Arch, err = manifest.ParseArch(s); err != nil {
			return manifest.Criteria{}, err
		}
	}
	if s := firstOf(f.buildType, cfg.Defaults.BuildType); s != "" {
		if criteria.BuildType, err = manifest.ParseBuildType(s); err != nil {
			return manifest.Criteria{}, err
		}
	}

	host, err := manifest.HostPlatform()
	if err != nil {
		return manifest.Criteria{}, err
	}

	return criteria.WithDefaults(host), nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
