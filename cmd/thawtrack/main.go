// Thawtrack CLI
// This application checks token thaw schedules for Cardano addresses,
// fetches and normalizes candle data from multiple market-data providers,
// and composes synthetic pair charts.
//
// Usage:
//
//	thawtrack check <address>
//	thawtrack chart --provider okx --instrument NIGHT-USDT --timeframe 1H
//	thawtrack chart --pair NIGHT-USDT/ADA-USDT --timeframe 1H
//	thawtrack watch --pair NIGHT-USDT/ADA-USDT
//	thawtrack addresses save <address>
//	thawtrack addresses list
//	thawtrack history <address>
//
// For detailed help on any command, use: thawtrack <command> --help
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/thawtrack/thawtrack/internal/checker"
	"github.com/thawtrack/thawtrack/internal/compose"
	"github.com/thawtrack/thawtrack/internal/config"
	"github.com/thawtrack/thawtrack/internal/logger"
	"github.com/thawtrack/thawtrack/internal/models"
	"github.com/thawtrack/thawtrack/internal/provider"
	"github.com/thawtrack/thawtrack/internal/quote"
	"github.com/thawtrack/thawtrack/internal/schedule"
	"github.com/thawtrack/thawtrack/internal/storage"
)

const (
	Version = "1.0.0"
	AppName = "thawtrack"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0
	ExitUsageError  = 1
	ExitConfigError = 2
	ExitDataError   = 4
	ExitInterrupt   = 130
)

// CLI wires the application components for command execution.
type CLI struct {
	config     *config.AppConfig
	logManager *logger.Manager
	logger     *slog.Logger
	normalizer *provider.Normalizer
	quotes     *quote.Service
	store      storage.Store
	checker    *checker.Checker
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(ExitUsageError)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := &CLI{}
	if err := cli.initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer cli.shutdown()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "check":
		err = cli.handleCheck(ctx, args)
	case "chart":
		err = cli.handleChart(ctx, args)
	case "watch":
		err = cli.handleWatch(ctx, args)
	case "addresses":
		err = cli.handleAddresses(ctx, args)
	case "history":
		err = cli.handleHistory(ctx, args)
	case "version":
		fmt.Printf("%s version %s\n", AppName, Version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(ExitUsageError)
	}

	if err != nil {
		if ctx.Err() != nil {
			cli.logger.Warn("interrupted", "command", command)
			os.Exit(ExitInterrupt)
		}
		cli.logger.Error("command failed", "command", command, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitDataError)
	}
}

// initialize loads configuration and builds the component graph.
func (cli *CLI) initialize(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("THAWTRACK_CONFIG"))
	if err != nil {
		return err
	}
	cli.config = cfg

	logManager, err := logger.NewManager(cfg.Logging)
	if err != nil {
		return err
	}
	cli.logManager = logManager
	cli.logger = logManager.Component("cli")

	timeout, err := cfg.HTTPTimeout()
	if err != nil {
		return err
	}
	client := provider.NewClientWithTimeout(logManager.Component("http"), timeout)
	cli.normalizer = provider.NewNormalizer(client, logManager.Component("provider"))
	cli.quotes = quote.NewService(client, logManager.Component("quote"))

	switch cfg.Storage.Type {
	case "memory":
		cli.store = storage.NewMemoryStore()
	default:
		store, err := storage.NewDuckDBStore(cfg.Storage.Path, logManager.Component("storage"))
		if err != nil {
			return err
		}
		cli.store = store
	}
	if err := cli.store.Initialize(ctx); err != nil {
		return err
	}

	source := &schedule.ScriptSource{
		Command: cfg.Schedule.Command,
		Args:    cfg.Schedule.Args,
		Dir:     cfg.Schedule.Dir,
		Logger:  logManager.Component("schedule"),
	}
	normalizer := schedule.NewNormalizer(cfg.Asset, cfg.DisplayOffset(), logManager.Component("schedule"))

	chk, err := checker.New(checker.Config{
		Source:      source,
		Normalizer:  normalizer,
		Quoter:      cli.quotes,
		History:     cli.store,
		AssetSymbol: cfg.Asset,
		Logger:      logManager.Component("checker"),
	})
	if err != nil {
		return err
	}
	cli.checker = chk
	return nil
}

func (cli *CLI) shutdown() {
	if cli.store != nil {
		if err := cli.store.Close(); err != nil {
			cli.logger.Warn("failed to close store", "error", err)
		}
	}
	if cli.logManager != nil {
		_ = cli.logManager.Close()
	}
}

// handleCheck runs a full schedule check for one address and prints the
// per-batch summaries and totals.
func (cli *CLI) handleCheck(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	save := fs.Bool("save", false, "Remember the address for later listing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s check [--save] <address>", AppName)
	}
	address := fs.Arg(0)

	result, err := cli.checker.Check(ctx, address)
	if err != nil {
		return err
	}

	fmt.Printf("🔍 Schedule for %s (request %s)\n\n", address, result.RequestID)
	for _, rec := range result.Records {
		fmt.Println(rec.SummaryText)
	}
	fmt.Printf("\n💰 Total: %g %s", result.Summary.TotalAmount, cli.config.Asset)
	if result.Priced {
		fmt.Printf(" ≈ $%g (at $%g)\n", result.Summary.TotalValue, result.Summary.UnitPrice)
	} else {
		fmt.Printf(" (no price available)\n")
	}

	if *save {
		if err := cli.store.Save(ctx, address); err != nil {
			return err
		}
		fmt.Println("📝 Address saved")
	}
	return nil
}

// chartFlags carries parsed chart/watch options.
type chartFlags struct {
	Provider   string
	Instrument string
	Pair       string
	Timeframe  string
	Limit      int
}

func parseChartFlags(name string, args []string, cfg *config.AppConfig) (*chartFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &chartFlags{}
	fs.StringVar(&f.Provider, "provider", string(provider.OKX), "Market-data provider: okx, bybit, gate")
	fs.StringVar(&f.Instrument, "instrument", "", "Single instrument, e.g. NIGHT-USDT")
	fs.StringVar(&f.Pair, "pair", "", "Synthetic pair as LEFT/RIGHT, e.g. NIGHT-USDT/ADA-USDT")
	fs.StringVar(&f.Timeframe, "timeframe", cfg.Market.Timeframe, "Timeframe: 1m, 5m, 15m, 1H, 4H, 1D")
	fs.IntVar(&f.Limit, "limit", cfg.Market.CandleLimit, "Number of candles to fetch")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.Instrument == "" && f.Pair == "" {
		return nil, fmt.Errorf("either --instrument or --pair is required")
	}
	if f.Instrument != "" && f.Pair != "" {
		return nil, fmt.Errorf("--instrument and --pair are mutually exclusive")
	}
	return f, nil
}

// series builds the fetch function for the flags: a direct provider fetch
// for a single instrument, or a composed synthetic pair.
func (cli *CLI) series(f *chartFlags) (compose.SeriesFunc, error) {
	p, err := provider.ParseProvider(f.Provider)
	if err != nil {
		return nil, err
	}

	if f.Instrument != "" {
		inst := f.Instrument
		return func(ctx context.Context) ([]models.Candle, error) {
			return cli.normalizer.Candles(ctx, p, inst, f.Timeframe, f.Limit)
		}, nil
	}

	left, right, ok := strings.Cut(f.Pair, "/")
	if !ok || left == "" || right == "" {
		return nil, fmt.Errorf("invalid pair %q, expected LEFT/RIGHT", f.Pair)
	}
	leftFn := func(ctx context.Context) ([]models.Candle, error) {
		return cli.normalizer.Candles(ctx, p, left, f.Timeframe, f.Limit)
	}
	rightFn := func(ctx context.Context) ([]models.Candle, error) {
		return cli.normalizer.Candles(ctx, p, right, f.Timeframe, f.Limit)
	}
	return func(ctx context.Context) ([]models.Candle, error) {
		return compose.FetchPair(ctx, leftFn, rightFn)
	}, nil
}

// handleChart fetches one candle series and prints it.
func (cli *CLI) handleChart(ctx context.Context, args []string) error {
	flags, err := parseChartFlags("chart", args, cli.config)
	if err != nil {
		return err
	}
	fetch, err := cli.series(flags)
	if err != nil {
		return err
	}

	candles, err := fetch(ctx)
	if err != nil {
		return err
	}

	printCandles(candles)
	return nil
}

// handleWatch refreshes a candle series on an interval until interrupted.
func (cli *CLI) handleWatch(ctx context.Context, args []string) error {
	flags, err := parseChartFlags("watch", args, cli.config)
	if err != nil {
		return err
	}
	fetch, err := cli.series(flags)
	if err != nil {
		return err
	}

	interval, err := cli.config.PollInterval()
	if err != nil {
		return err
	}

	poller := compose.NewPoller(interval, fetch, func(snap compose.Snapshot) {
		fmt.Printf("── %s (%d candles) ──\n", snap.FetchedAt.Format(time.RFC3339), len(snap.Candles))
		printCandles(tail(snap.Candles, 5))
	}, cli.logManager.Component("poller"))

	cli.logger.Info("watching", "interval", interval.String())
	return poller.Run(ctx)
}

// handleAddresses manages the saved-address list.
func (cli *CLI) handleAddresses(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s addresses <save|list> [address]", AppName)
	}

	switch args[0] {
	case "save":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s addresses save <address>", AppName)
		}
		if err := cli.store.Save(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("📝 Address saved")
		return nil
	case "list":
		addrs, err := cli.store.List(ctx)
		if err != nil {
			return err
		}
		if len(addrs) == 0 {
			fmt.Println("No saved addresses")
			return nil
		}
		for i, a := range addrs {
			fmt.Printf("%d. %s (saved %s)\n", i+1, a.Address, a.CreatedAt.Format("2006-01-02"))
		}
		return nil
	default:
		return fmt.Errorf("unknown addresses subcommand %q", args[0])
	}
}

// handleHistory prints past check results for an address, newest first.
func (cli *CLI) handleHistory(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s history <address>", AppName)
	}

	snaps, err := cli.store.History(ctx, args[0])
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("No check history for this address")
		return nil
	}

	fmt.Printf("%-25s %8s %14s %10s %12s\n", "CHECKED AT", "RECORDS", "TOTAL", "PRICE", "VALUE")
	for _, s := range snaps {
		fmt.Printf("%-25s %8d %14.3f %10.3f %12.3f\n",
			s.CheckedAt.Format(time.RFC3339), s.RecordCount, s.TotalAmount, s.UnitPrice, s.TotalValue)
	}
	return nil
}

func printCandles(candles []models.Candle) {
	if len(candles) == 0 {
		fmt.Println("No candle data")
		return
	}
	fmt.Printf("%-21s %12s %12s %12s %12s %14s\n", "TIME", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
	for _, c := range candles {
		fmt.Printf("%-21s %12.6f %12.6f %12.6f %12.6f %14.2f\n",
			c.Time().Format("2006-01-02 15:04:05"), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
}

func tail(candles []models.Candle, n int) []models.Candle {
	if len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

func printUsage() {
	fmt.Printf(`%s - token thaw schedule and market data tracker

Usage:
  %s <command> [options]

Commands:
  check <address>       Check the thaw schedule for an address
  chart                 Fetch and print a candle series
  watch                 Continuously refresh a candle series
  addresses save|list   Manage saved addresses
  history <address>     Show past check results for an address
  version               Print version information
  help                  Show this help

Chart/watch options:
  --provider    Market-data provider: okx, bybit, gate (default okx)
  --instrument  Single instrument, e.g. NIGHT-USDT
  --pair        Synthetic pair as LEFT/RIGHT, e.g. NIGHT-USDT/ADA-USDT
  --timeframe   Timeframe token: 1m, 5m, 15m, 1H, 4H, 1D
  --limit       Number of candles to fetch

Configuration is read from the file named by THAWTRACK_CONFIG and from
THAWTRACK_* environment variables.
`, AppName, AppName)
}
