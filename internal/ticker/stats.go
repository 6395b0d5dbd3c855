package ticker

import (
	"context"
	"fmt"
	"math"
	"strings"

	"TickerLens/internal/calculator"
	"TickerLens/internal/model"
)

func (t *Ticker) benchmarkSymbol(index string) (string, error) {
	if index == "" {
		return t.cfg.BenchmarkIndex, nil
	}
	if strings.TrimSpace(index) == "" {
		return "", fmt.Errorf("%w: index must be a non-empty string", ErrInvalidArgument)
	}
	return index, nil
}

// Beta regresses the ticker's daily returns on the benchmark's, with an intercept, and
// returns the slope rounded to two decimals. An empty index uses the configured
// benchmark. The benchmark history is fetched on every call.
func (t *Ticker) Beta(ctx context.Context, index string) (float64, error) {
	idx, err := t.benchmarkSymbol(index)
	if err != nil {
		return 0, err
	}
	bench, err := t.fetchSeries(ctx, idx)
	if err != nil {
		return 0, err
	}
	return betaAgainst(t.series, bench)
}

// betaAgainst pairs returns by date; days where either return is undefined are dropped.
func betaAgainst(stock, bench *model.PriceSeries) (float64, error) {
	benchReturns := bench.Returns()
	var x, y []float64
	for _, r := range stock.Rows {
		if math.IsNaN(r.DailyReturn) || math.IsInf(r.DailyReturn, 0) {
			continue
		}
		m, ok := benchReturns[r.Date]
		if !ok {
			continue
		}
		x = append(x, m)
		y = append(y, r.DailyReturn)
	}
	_, slope, err := calculator.OLS(x, y)
	if err != nil {
		return 0, fmt.Errorf("%w: regress %s on %s: %w", ErrDataUnavailable, stock.Symbol, bench.Symbol, err)
	}
	return calculator.Round(slope, 2), nil
}

// Alpha returns the ticker's simple return in excess of the CAPM expectation:
// rs - (rf + beta*(ri - rf)), where rs and ri are (last-first)/first over the period.
// Simple returns are used rather than compounded daily returns. Beta is measured against
// the same index.
func (t *Ticker) Alpha(ctx context.Context, index string, riskFreeRate float64) (float64, error) {
	_, alpha, err := t.BetaAlpha(ctx, index, riskFreeRate)
	return alpha, err
}

// BetaAlpha computes beta and alpha from a single benchmark fetch.
func (t *Ticker) BetaAlpha(ctx context.Context, index string, riskFreeRate float64) (beta, alpha float64, err error) {
	if math.IsNaN(riskFreeRate) || math.IsInf(riskFreeRate, 0) {
		return 0, 0, fmt.Errorf("%w: risk_free_rate must be a finite float", ErrInvalidArgument)
	}
	idx, err := t.benchmarkSymbol(index)
	if err != nil {
		return 0, 0, err
	}
	bench, err := t.fetchSeries(ctx, idx)
	if err != nil {
		return 0, 0, err
	}

	indexReturn, err := calculator.SimpleReturn(bench.Closes())
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s simple return: %w", ErrDataUnavailable, idx, err)
	}
	stockReturn, err := calculator.SimpleReturn(t.series.Closes())
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s simple return: %w", ErrDataUnavailable, t.symbol, err)
	}
	beta, err = betaAgainst(t.series, bench)
	if err != nil {
		return 0, 0, err
	}
	alpha = stockReturn - (riskFreeRate + beta*(indexReturn-riskFreeRate))
	return beta, alpha, nil
}
