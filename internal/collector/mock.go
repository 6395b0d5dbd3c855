package collector

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"TickerLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols present in Rows return those rows; others return Generated rows, or none
// when Generated is zero. It is safe for concurrent use.
type MockFetcher struct {
	Rows      map[string][]model.PriceRow
	Generated int
	BasePrice float64
	Err       error
	Calls     []string

	mu sync.Mutex
}

// CallCount returns how many fetches have been made.
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string, _ model.Period) ([]model.PriceRow, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, symbol)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if rows, ok := m.Rows[symbol]; ok {
		out := make([]model.PriceRow, len(rows))
		copy(out, rows)
		return out, nil
	}
	if m.Generated == 0 {
		return nil, nil
	}
	base := m.BasePrice
	if base == 0 {
		base = 100
	}
	return GenerateMockRows(symbol, base, m.Generated), nil
}

// GenerateMockRows builds count business-day rows ending yesterday. The path is a
// deterministic function of symbol so different symbols are not perfectly correlated.
func GenerateMockRows(symbol string, basePrice float64, count int) []model.PriceRow {
	seed := 0.0
	for _, r := range strings.ToUpper(symbol) {
		seed += float64(r)
	}
	rows := make([]model.PriceRow, 0, count)
	day := model.Day(time.Now()).AddDate(0, 0, -1)
	for len(rows) < count {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			i := float64(count - len(rows))
			p := basePrice * (1 + 0.0005*i + 0.02*math.Sin(i/7+seed))
			rows = append(rows, model.PriceRow{Date: day, AdjClose: p})
		}
		day = day.AddDate(0, 0, -1)
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}

// MockQuoteSource returns a fixed snapshot, or Err when set.
type MockQuoteSource struct {
	Quote model.Fundamentals
	Err   error
}

func (m *MockQuoteSource) FetchQuote(_ context.Context, _ string) (model.Fundamentals, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quote.Clone(), nil
}
