package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/bustop"
	"github.com/fwojciec/bustop/cache"
	"github.com/fwojciec/bustop/crawl"
	"github.com/fwojciec/bustop/fs"
	"github.com/fwojciec/bustop/goquery"
	bustophttp "github.com/fwojciec/bustop/http"
	"github.com/fwojciec/bustop/rod"
	bustopslog "github.com/fwojciec/bustop/slog"
	"github.com/fwojciec/bustop/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Config file path. A missing file is not an error.
	ConfigPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Fetcher, if set, is used instead of the network fetcher.
	Fetcher bustop.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: defaultConfigPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// networkCommands need a fetcher.
var networkCommands = map[string]bool{
	"list":    true,
	"thread":  true,
	"sync":    true,
	"archive": true,
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := LoadConfigFile(m.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set BUSTOP_CONFIG to use a different config file\n")
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("bustop"),
		kong.Description("Read and archive javbus forum listings and threads."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		cfg.Vars(),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'bustop --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	logger := newLogger(stderr, cli.Debug)
	deps.Logger = logger

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set BUSTOP_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.Articles = sqlite.NewArticleService(m.DB)
	deps.Threads = sqlite.NewThreadService(m.DB)
	deps.NewWriter = func(dir string) bustop.ThreadWriter { return fs.NewWriter(dir) }

	drops := bustopslog.DropLogger(logger)
	listings, err := goquery.NewListingParser(goquery.NewListingSelectors(), cli.BaseURL,
		goquery.WithListingDropFunc(drops))
	if err != nil {
		fmt.Fprintln(stderr, "Hint: --base-url must be an absolute URL")
		return err
	}
	deps.ListingParser = bustopslog.NewLoggingListingParser(listings, logger)
	deps.ThreadParser = bustopslog.NewLoggingThreadParser(
		goquery.NewThreadParser(goquery.NewThreadSelectors(), goquery.WithThreadDropFunc(drops)),
		logger,
	)

	if networkCommands[cmd] {
		fetcher, err := m.newFetcher(cli, logger, stderr)
		if err != nil {
			return err
		}
		fetcher = bustopslog.NewLoggingFetcher(cache.NewFetcher(fetcher, cli.CacheTTL), logger)
		defer fetcher.Close()

		deps.Reader = &crawl.Reader{
			Fetcher:     fetcher,
			Listings:    deps.ListingParser,
			Threads:     deps.ThreadParser,
			RateLimiter: crawl.NewDomainLimiter(cli.RPS, cfg.LimiterOptions()...),
			BaseURL:     cli.BaseURL,
			ForumID:     cli.ForumID,
			Logger:      logger,
		}
		deps.Syncer = &crawl.Syncer{
			Reader:   deps.Reader,
			Articles: deps.Articles,
			Threads:  deps.Threads,
			Logger:   logger,
		}
	}

	return kongCtx.Run(deps)
}

func (m *Main) newFetcher(cli *CLI, logger *slog.Logger, stderr io.Writer) (bustop.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if cli.Browser {
		fetcher, err := rod.NewFetcher(
			rod.WithFetchTimeout(cli.Timeout),
			rod.WithBrowserOptions(rod.WithLogger(logger)),
		)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		return fetcher, nil
	}
	return bustophttp.NewFetcher(bustophttp.WithTimeout(cli.Timeout)), nil
}

// newLogger writes text records to w. Only warnings are shown unless
// debug is set.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("BUSTOP_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "bustop.db"
	}
	dir := filepath.Join(home, ".bustop")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "bustop.db")
}
