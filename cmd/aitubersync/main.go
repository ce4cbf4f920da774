package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"aitubersync/internal/app"
	"aitubersync/internal/config"
	"aitubersync/internal/feed"
	"aitubersync/internal/ingest"
	"aitubersync/internal/syncer"
	"aitubersync/internal/youtube"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "sync":
		err = cmdSync(ctx, args)
	case "add":
		err = cmdAdd(ctx, args)
	case "import":
		err = cmdImport(ctx, args)
	case "feed":
		err = cmdFeed(ctx, args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		if errors.Is(err, youtube.ErrNoCredentials) {
			fmt.Fprintln(os.Stderr, "Error: no YouTube API key configured (set YOUTUBE_API_KEY or youtube_api_key)")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `aitubersync - keep the AITuber directory's featured videos up to date

Usage:
  aitubersync sync [flags]                    Refresh every entry from YouTube
  aitubersync add [flags] <identifier>...     Add channels by URL, @handle, id or name
  aitubersync import [flags] <file|->         Add entries from LLM extraction JSON
  aitubersync feed [flags]                    Export featured videos as a feed
  aitubersync help                            Show this help message

Examples:
  aitubersync sync --workers 4
  aitubersync add https://www.youtube.com/@nikechan UCSHXPmFvDM32bLm0OgHblsA
  aitubersync add --file channels.txt
  aitubersync import extraction.json
  aitubersync feed --format atom --out public/feed.xml

Every command accepts --config <file>. Without it aitubersync.{yaml,yml,json,toml}
in the current directory is used if present; AITUBERSYNC_* variables override it.

For help on specific command: aitubersync <command> -h
`)
}

// commonFlags registers the flags every command shares.
func commonFlags(fs *flag.FlagSet) *string {
	return fs.String("config", "", "Config file (yaml, json or toml)")
}

// setup loads configuration, installs the logger and builds the container.
func setup(ctx context.Context, configPath string, override func(*config.Config)) (*app.App, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	logger := config.NewLogger(cfg.LogLevel, os.Stdout, os.Stderr)
	slog.SetDefault(logger)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}

func shutdown(a *app.App) {
	if err := a.Shutdown(); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func cmdSync(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	configPath := commonFlags(fs)
	workers := fs.Int("workers", 0, "Entries synced in parallel (0 = config value)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aitubersync sync [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	a, _, err := setup(ctx, *configPath, func(c *config.Config) {
		if *workers > 0 {
			c.Workers = *workers
		}
	})
	if err != nil {
		return err
	}
	defer shutdown(a)

	engine, err := a.Engine()
	if err != nil {
		return err
	}
	report, err := engine.RunPass(ctx)
	if err != nil {
		return err
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s (%s): %v\n", f.Name, f.ChannelID, f.Err)
	}
	for _, id := range report.DuplicateIDs {
		fmt.Fprintf(os.Stderr, "warning: channel %s appears more than once\n", id)
	}
	fmt.Fprintf(os.Stderr, "Updated %d, skipped %d, failed %d\n", report.Updated, report.Skipped, len(report.Failures))
	return nil
}

func cmdAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := commonFlags(fs)
	batch := fs.String("file", "", "Newline-delimited identifiers ('-' for stdin)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aitubersync add [flags] <identifier>...\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	identifiers := fs.Args()
	if *batch != "" {
		more, err := withInput(*batch, ingest.SplitBatch)
		if err != nil {
			return err
		}
		identifiers = append(identifiers, more...)
	}
	if len(identifiers) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing identifier\n")
		fs.Usage()
		os.Exit(1)
	}

	a, _, err := setup(ctx, *configPath, nil)
	if err != nil {
		return err
	}
	defer shutdown(a)

	engine, err := a.Engine()
	if err != nil {
		return err
	}
	report, err := engine.AddIdentifiers(ctx, identifiers)
	if err != nil {
		return err
	}
	printAddReport(os.Stdout, report)
	return nil
}

func cmdImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := commonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aitubersync import [flags] <file|->\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing extraction file\n")
		fs.Usage()
		os.Exit(1)
	}

	candidates, err := withInput(argv[0], ingest.ReadExtraction)
	if err != nil {
		return err
	}

	a, _, err := setup(ctx, *configPath, nil)
	if err != nil {
		return err
	}
	defer shutdown(a)

	engine, err := a.Engine()
	if err != nil {
		return err
	}
	report, err := engine.AddCandidates(ctx, candidates)
	if err != nil {
		return err
	}
	printAddReport(os.Stdout, report)
	return nil
}

func cmdFeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	configPath := commonFlags(fs)
	formatStr := fs.String("format", "atom", "Feed format: atom, rss or json")
	out := fs.String("out", "-", "Output file ('-' for stdout)")
	limit := fs.Int("limit", 0, "Maximum items (0 = all)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aitubersync feed [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	format, err := feed.ParseFormat(*formatStr)
	if err != nil {
		return err
	}

	a, cfg, err := setup(ctx, *configPath, nil)
	if err != nil {
		return err
	}
	defer shutdown(a)

	store, err := a.Store()
	if err != nil {
		return err
	}
	dir, err := store.Load(ctx)
	if err != nil {
		return err
	}
	f := feed.Build(dir, feed.Options{Title: cfg.FeedTitle, Link: cfg.FeedLink, Limit: *limit})

	if *out == "-" {
		return feed.Write(os.Stdout, f, format)
	}
	file, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := feed.Write(file, f, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// withInput opens name ("-" is stdin) and hands it to read.
func withInput[T any](name string, read func(io.Reader) (T, error)) (T, error) {
	if name == "-" {
		return read(os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return read(f)
}

func printAddReport(out io.Writer, report *syncer.AddReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tNAME\tCHANNEL ID\tDETAIL")
	for _, e := range report.Added {
		fmt.Fprintf(w, "added\t%s\t%s\t%s\n", e.Label(), e.ChannelID, e.FeaturedVideoURL)
	}
	for _, r := range report.Rejected {
		fmt.Fprintf(w, "skipped\t%s\t%s\t%s\n", r.Entry.Label(), r.Entry.ChannelID, r.Reason)
	}
	w.Flush()

	fmt.Fprintf(os.Stderr, "\nTotal new AITubers added: %d\n", len(report.Added))
}
