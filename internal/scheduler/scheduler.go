package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
	"TickerLens/internal/notifier"
	"TickerLens/internal/recorder"
	"TickerLens/internal/ticker"
)

// Sender delivers a formatted message, retrying on failure.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist analysis on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Deps      ticker.Deps
	Watchlist []string
	Notifier  Sender
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Health    *metrics.Health
	Ctx       context.Context

	mu sync.Mutex // one watchlist run at a time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, deps ticker.Deps, watchlist []string, tn Sender, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Deps:      deps,
		Watchlist: watchlist,
		Notifier:  tn,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// RegisterAll registers the watchlist analysis task.
func (s *Scheduler) RegisterAll(analysisCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the watchlist task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.watchlistTask()
}

func (s *Scheduler) watchlistTask() {
	log.Printf("[INFO] running watchlist analysis (%d symbols)", len(s.Watchlist))
	results, failures := s.RunWatchlist(s.Ctx)

	var runErr error
	if len(failures) > 0 {
		runErr = fmt.Errorf("%d of %d symbols failed", len(failures), len(s.Watchlist))
	}
	if s.Health != nil {
		s.Health.SetRun(time.Now(), runErr)
	}
	s.trySend(notifier.FormatWatchlist(results, failures))
}

// RunWatchlist analyses every watchlist symbol and records each successful run.
// failures maps symbol to error text.
func (s *Scheduler) RunWatchlist(ctx context.Context) ([]*model.Analysis, map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*model.Analysis
	failures := make(map[string]string)
	for _, sym := range s.Watchlist {
		if ctx.Err() != nil {
			failures[sym] = ctx.Err().Error()
			continue
		}
		a, err := s.analyze(ctx, sym)
		if err != nil {
			failures[sym] = err.Error()
			continue
		}
		results = append(results, a)
	}
	return results, failures
}

func (s *Scheduler) analyze(ctx context.Context, symbol string) (*model.Analysis, error) {
	a, _, err := ticker.Analyze(ctx, symbol, s.Deps)
	s.Metrics.ObserveAnalysis(err)
	if err != nil {
		log.Printf("[ERROR] analyze %s: %v", symbol, err)
		return nil, err
	}
	log.Printf("[INFO] %s: beta=%.2f alpha=%.4f", symbol, a.Beta, a.Alpha)
	if err := s.Recorder.RecordAnalysis(a); err != nil {
		log.Printf("[ERROR] record analysis %s: %v", symbol, err)
	}
	return a, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends @botname in group chats.
	name, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch name {
	case "/analyze":
		if len(args) != 1 {
			return "Usage: /analyze SYMBOL"
		}
		a, err := s.analyze(ctx, args[0])
		if err != nil {
			return commandError(args[0], err)
		}
		return notifier.FormatAnalysisReport(a)
	case "/history":
		if len(args) != 1 {
			return "Usage: /history SYMBOL"
		}
		runs, err := s.Recorder.RecentAnalyses(args[0], 10)
		if err != nil {
			log.Printf("[ERROR] load history %s: %v", args[0], err)
			return "❌ Could not load history"
		}
		return notifier.FormatHistory(args[0], runs)
	case "/watchlist":
		results, failures := s.RunWatchlist(ctx)
		return notifier.FormatWatchlist(results, failures)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /analyze SYMBOL\n• /history SYMBOL\n• /watchlist"

func commandError(symbol string, err error) string {
	switch {
	case errors.Is(err, ticker.ErrInvalidArgument):
		return fmt.Sprintf("❌ Invalid request: %v", err)
	case errors.Is(err, ticker.ErrDataUnavailable):
		return fmt.Sprintf("❌ No data for %s", symbol)
	default:
		return fmt.Sprintf("❌ Analysis of %s failed, see logs", symbol)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
