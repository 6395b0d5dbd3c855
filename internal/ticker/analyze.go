package ticker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"TickerLens/internal/config"
	"TickerLens/internal/model"
)

// Analyze builds a Ticker over the configured period and measures it against the
// configured benchmark at the configured risk-free rate.
func Analyze(ctx context.Context, symbol string, deps Deps) (*model.Analysis, *Ticker, error) {
	t, err := New(ctx, symbol, "", deps)
	if err != nil {
		return nil, nil, err
	}
	a, err := t.Analysis(ctx, t.cfg.BenchmarkIndex, t.cfg.RiskFree())
	if err != nil {
		return nil, t, err
	}
	return a, t, nil
}

// Analysis computes beta, alpha and the summary as one record.
func (t *Ticker) Analysis(ctx context.Context, index string, riskFreeRate float64) (*model.Analysis, error) {
	if index == "" {
		index = t.cfg.BenchmarkIndex
	}
	beta, alpha, err := t.BetaAlpha(ctx, index, riskFreeRate)
	if err != nil {
		return nil, err
	}
	return &model.Analysis{
		RunID:        uuid.NewString(),
		Symbol:       t.symbol,
		Benchmark:    index,
		Period:       t.period.String(),
		RiskFreeRate: riskFreeRate,
		Beta:         beta,
		Alpha:        alpha,
		Summary:      t.Summary(),
		Fundamentals: len(t.fundamentals),
		CreatedAt:    time.Now(),
	}, nil
}

// Config returns the analysis settings the ticker falls back on.
func (t *Ticker) Config() config.Analysis { return t.cfg }
