// Package ticker models a single instrument's daily price history and the statistics
// derived from it: daily and cumulative returns, beta and alpha against a benchmark,
// and moving-average charts.
package ticker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"TickerLens/internal/calculator"
	"TickerLens/internal/collector"
	"TickerLens/internal/config"
	"TickerLens/internal/model"
)

var (
	// ErrInvalidArgument is returned for blank symbols, unparseable periods, non-finite
	// rates and unknown moving-average kinds.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDataUnavailable is returned when a provider has no rows for the request.
	ErrDataUnavailable = errors.New("data unavailable")
)

// Deps are the collaborators a Ticker fetches through.
type Deps struct {
	History  collector.HistoryProvider
	Quotes   collector.QuoteSource // optional
	Analysis config.Analysis       // unset fields fall back to config defaults
}

// Ticker is one symbol's price series plus its fundamentals snapshot.
type Ticker struct {
	symbol       string
	period       model.Period
	series       *model.PriceSeries
	fundamentals model.Fundamentals
	history      collector.HistoryProvider
	quotes       collector.QuoteSource
	cfg          config.Analysis
}

// New fetches the daily history of symbol over period and derives its return columns.
// An empty period uses the configured default. A failed fundamentals fetch is logged
// and leaves an empty snapshot.
func New(ctx context.Context, symbol, period string, deps Deps) (*Ticker, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, fmt.Errorf("%w: symbol must be a non-empty string", ErrInvalidArgument)
	}
	if deps.History == nil {
		return nil, fmt.Errorf("%w: no history provider", ErrInvalidArgument)
	}
	cfg := deps.Analysis.WithDefaults()
	if period == "" {
		period = cfg.Period
	}
	p, err := model.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	t := &Ticker{
		symbol:  symbol,
		period:  p,
		history: deps.History,
		quotes:  deps.Quotes,
		cfg:     cfg,
	}
	t.series, err = t.fetchSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	_ = t.RefreshFundamentals(ctx)
	return t, nil
}

func (t *Ticker) fetchSeries(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	rows, err := t.history.FetchHistory(ctx, symbol, t.period)
	if err != nil {
		return nil, fmt.Errorf("fetch %s history from %s: %w", symbol, t.history.Name(), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no price rows for %s over %s", ErrDataUnavailable, symbol, t.period)
	}
	s := model.NewPriceSeries(symbol, rows)
	deriveReturns(s)
	return s, nil
}

func deriveReturns(s *model.PriceSeries) {
	daily := calculator.PctChange(s.Closes())
	cum := calculator.CumulativeReturns(daily)
	for i := range s.Rows {
		s.Rows[i].DailyReturn = daily[i]
		s.Rows[i].CumReturn = cum[i]
	}
}

// RefreshFundamentals re-fetches the fundamentals snapshot. On failure the snapshot is
// emptied and the error returned for callers that care.
func (t *Ticker) RefreshFundamentals(ctx context.Context) error {
	if t.quotes == nil {
		t.fundamentals = model.Fundamentals{}
		return nil
	}
	f, err := t.quotes.FetchQuote(ctx, t.symbol)
	if err != nil {
		log.Printf("[WARN] fetch fundamentals for %s: %v", t.symbol, err)
		t.fundamentals = model.Fundamentals{}
		return err
	}
	t.fundamentals = f.Clone()
	return nil
}

// Symbol returns the symbol as given to New.
func (t *Ticker) Symbol() string { return t.symbol }

// Period returns the lookback the series was fetched over.
func (t *Ticker) Period() model.Period { return t.period }

// Series returns a copy of the price series.
func (t *Ticker) Series() *model.PriceSeries {
	rows := make([]model.PriceRow, len(t.series.Rows))
	copy(rows, t.series.Rows)
	return &model.PriceSeries{Symbol: t.series.Symbol, Rows: rows, FetchedAt: t.series.FetchedAt}
}

// Fundamentals returns a copy of the fundamentals snapshot.
func (t *Ticker) Fundamentals() model.Fundamentals { return t.fundamentals.Clone() }

// AdjustedClose returns the adjusted-close column labelled with the symbol, for joining
// several tickers with model.JoinOnDate.
func (t *Ticker) AdjustedClose() model.LabeledSeries {
	points := make([]model.Point, len(t.series.Rows))
	for i, r := range t.series.Rows {
		points[i] = model.Point{Date: r.Date, Value: r.AdjClose}
	}
	return model.LabeledSeries{Label: t.symbol, Points: points}
}

// String formats the ticker as "SYMBOL [start - end]".
func (t *Ticker) String() string {
	start := t.series.First().Date.Format("2006-01-02")
	end := t.series.Last().Date.Format("2006-01-02")
	return strings.ToUpper(t.symbol) + " [" + start + " - " + end + "]"
}

// Summary computes descriptive statistics over the series.
func (t *Ticker) Summary() model.Summary {
	closes := t.series.Closes()
	last := t.series.Last()
	s := model.Summary{
		Symbol:    t.symbol,
		Period:    t.period.String(),
		Start:     t.series.First().Date,
		End:       last.Date,
		Rows:      t.series.Len(),
		LastPrice: last.AdjClose,
		CumReturn: last.CumReturn,
	}
	if r, err := calculator.SimpleReturn(closes); err == nil {
		s.SimpleReturn = r
	} else {
		s.SimpleReturn = math.NaN()
	}
	if h, l, err := calculator.CalculateRange(closes, calculator.TradingDaysPerYear); err == nil {
		s.High52w, s.Low52w = h, l
		if pos, err := calculator.CalculatePosition(last.AdjClose, h, l); err == nil {
			s.Position52w = pos
		}
	}
	s.SMA200, s.SMA200Dev = math.NaN(), math.NaN()
	if sma, err := calculator.CalculateSMA(closes, calculator.LongSMAWindow); err == nil && sma != 0 {
		s.SMA200 = sma
		s.SMA200Dev = (last.AdjClose - sma) / sma
	}
	if rsi, err := calculator.CalculateRSI(closes, 14); err == nil {
		s.RSI14 = rsi
	}
	return s
}
