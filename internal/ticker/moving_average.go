package ticker

import (
	"fmt"
	"strconv"
	"strings"

	"TickerLens/internal/calculator"
	"TickerLens/internal/chart"
	"TickerLens/internal/model"
)

// MAKind selects the moving-average flavour.
type MAKind string

const (
	Simple      MAKind = "simple"
	Exponential MAKind = "exponential"
)

// ParseMAKind accepts "simple" or "exponential", case-insensitively.
func ParseMAKind(s string) (MAKind, error) {
	k := MAKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Simple, Exponential:
		return k, nil
	}
	return "", fmt.Errorf("%w: moving average kind should be simple or exponential, got %q", ErrInvalidArgument, s)
}

func (k MAKind) label() string {
	if k == Exponential {
		return "Exponential"
	}
	return "Simple"
}

func (k MAKind) prefix() string {
	if k == Exponential {
		return "EMA_"
	}
	return "MA_"
}

// MovingAverageSeries computes one average per window over the adjusted close. Simple
// averages are NaN until a full window is available; exponential ones use span=window
// without bias adjustment. An empty window list uses the configured default window.
func (t *Ticker) MovingAverageSeries(kind MAKind, windows []int) ([]model.LabeledSeries, error) {
	switch kind {
	case Simple, Exponential:
	default:
		return nil, fmt.Errorf("%w: moving average kind should be simple or exponential, got %q", ErrInvalidArgument, kind)
	}
	if len(windows) == 0 {
		windows = []int{t.cfg.MovingAverageWindow}
	}

	closes := t.series.Closes()
	dates := t.series.Dates()
	out := make([]model.LabeledSeries, 0, len(windows))
	for _, w := range windows {
		if w <= 0 {
			return nil, fmt.Errorf("%w: moving average window must be positive, got %d", ErrInvalidArgument, w)
		}
		var values []float64
		if kind == Exponential {
			values, _ = calculator.EMASeries(closes, w)
		} else {
			values, _ = calculator.SMASeries(closes, w)
		}
		points := make([]model.Point, len(values))
		for i, v := range values {
			points[i] = model.Point{Date: dates[i], Value: v}
		}
		out = append(out, model.LabeledSeries{Label: kind.prefix() + strconv.Itoa(w), Points: points})
	}
	return out, nil
}

// MovingAverage returns a chart overlaying the closing price with one line per window.
func (t *Ticker) MovingAverage(kind MAKind, windows []int) (*model.Figure, error) {
	if len(windows) == 0 {
		windows = []int{t.cfg.MovingAverageWindow}
	}
	series, err := t.MovingAverageSeries(kind, windows)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s Stock Price with %s-Day %s Moving Average", t.symbol, formatWindows(windows), kind.label())
	fig := chart.NewFigure(title, "Date", "Price")
	dates := t.series.Dates()
	if err := chart.AddLine(fig, "Closing Price", dates, t.series.Closes()); err != nil {
		return nil, err
	}
	for _, s := range series {
		values := make([]float64, len(s.Points))
		for i, p := range s.Points {
			values[i] = p.Value
		}
		if err := chart.AddLine(fig, s.Label, dates, values); err != nil {
			return nil, err
		}
	}
	return fig, nil
}

// formatWindows renders windows as "[20, 50]".
func formatWindows(windows []int) string {
	parts := make([]string, len(windows))
	for i, w := range windows {
		parts[i] = strconv.Itoa(w)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
