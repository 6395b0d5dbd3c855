package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"TickerLens/internal/chart"
	"TickerLens/internal/collector"
	"TickerLens/internal/config"
	"TickerLens/internal/metrics"
	"TickerLens/internal/notifier"
	"TickerLens/internal/recorder"
	"TickerLens/internal/scheduler"
	"TickerLens/internal/ticker"
)

const usage = `usage: tickerlens <command> [flags]

commands:
  analyze   fetch one symbol and print beta, alpha and summary statistics
  watch     run the scheduled watchlist analysis with Telegram commands
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if v := os.Getenv("CONFIG_PATH"); v != "" && path == "" {
		path = v
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newDeps wires the history provider and quote client from cfg.
func newDeps(cfg *config.Config, m *metrics.Metrics, mock bool) ticker.Deps {
	var history collector.HistoryProvider
	switch {
	case mock:
		history = &collector.MockFetcher{Generated: 2520}
	case cfg.DataSource.BaseURL != "":
		history = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, m)
	default:
		history = collector.NewYahooFetcher(cfg.Proxy, m)
	}
	log.Printf("[INFO] data source: %s", history.Name())

	var quotes collector.QuoteSource
	if mock {
		quotes = &collector.MockQuoteSource{}
	} else {
		quotes = collector.NewQuoteClient(cfg.Quote.BaseURL, cfg.Quote.Headers, cfg.Proxy, m)
	}
	return ticker.Deps{History: history, Quotes: quotes, Analysis: cfg.Analysis}
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (default configs/config.yaml or $CONFIG_PATH)")
	symbol := fs.String("symbol", "", "ticker symbol, e.g. AAPL")
	period := fs.String("period", "", "lookback period, e.g. 10Y, 6MO, YTD, MAX")
	index := fs.String("index", "", "benchmark symbol (default from config)")
	rf := fs.Float64("rf", math.NaN(), "annual risk-free rate (default from config)")
	maKind := fs.String("ma", "simple", "moving average kind: simple or exponential")
	windows := fs.String("windows", "", "comma-separated moving average windows, e.g. 20,50")
	chartPath := fs.String("chart", "", "write the moving average chart as JSON to this path")
	mock := fs.Bool("mock", false, "use generated data instead of network providers")
	fs.Parse(args)
	if *symbol == "" && fs.NArg() > 0 {
		*symbol = fs.Arg(0)
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps := newDeps(cfg, nil, *mock)
	tk, err := ticker.New(ctx, *symbol, *period, deps)
	if err != nil {
		return err
	}
	rate := *rf
	if math.IsNaN(rate) {
		rate = cfg.Analysis.RiskFree()
	}
	a, err := tk.Analysis(ctx, *index, rate)
	if err != nil {
		return err
	}

	s := a.Summary
	fmt.Println(tk)
	fmt.Printf("benchmark      %s\n", a.Benchmark)
	fmt.Printf("rows           %d\n", s.Rows)
	fmt.Printf("last price     %.2f\n", s.LastPrice)
	fmt.Printf("return         %+.2f%%\n", s.SimpleReturn*100)
	fmt.Printf("52w range      %.2f ~ %.2f (%.0f%%)\n", s.Low52w, s.High52w, s.Position52w*100)
	fmt.Printf("rsi(14)        %.1f\n", s.RSI14)
	fmt.Printf("beta           %.2f\n", a.Beta)
	fmt.Printf("alpha          %+.4f (rf %.4f)\n", a.Alpha, a.RiskFreeRate)
	fmt.Printf("fundamentals   %d fields\n", a.Fundamentals)

	if *chartPath != "" {
		kind, err := ticker.ParseMAKind(*maKind)
		if err != nil {
			return err
		}
		ws, err := parseWindows(*windows)
		if err != nil {
			return err
		}
		fig, err := tk.MovingAverage(kind, ws)
		if err != nil {
			return err
		}
		if err := chart.SaveJSON(*chartPath, fig); err != nil {
			return err
		}
		log.Printf("[INFO] chart written to %s", *chartPath)
	}
	return nil
}

func parseWindows(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: window %q is not an integer", ticker.ErrInvalidArgument, part)
		}
		out = append(out, w)
	}
	return out, nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (default configs/config.yaml or $CONFIG_PATH)")
	mock := fs.Bool("mock", false, "use generated data instead of network providers")
	fs.Parse(args)

	log.Println("[INFO] TickerLens starting...")
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateWatch(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)
	health := metrics.NewHealth(cfg.Watchlist)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, newDeps(cfg, m, *mock), cfg.Watchlist, tn, rec)
	sched.Metrics = m
	sched.Health = health
	if err := sched.RegisterAll(cfg.Schedule.AnalysisCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, reg, health)
		srv.Start()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Printf("[WARN] metrics server shutdown: %v", err)
			}
		}()
	}

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing watchlist analysis now")
		go sched.RunNow()
	}

	log.Printf("[INFO] TickerLens is watching %s. Press Ctrl+C to stop.", strings.Join(cfg.Watchlist, ", "))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	return nil
}
