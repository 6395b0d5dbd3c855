package collector

import (
	"context"

	"TickerLens/internal/model"
)

// HistoryProvider fetches the daily adjusted-close history of a symbol.
// An unknown symbol yields zero rows and a nil error.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string, period model.Period) ([]model.PriceRow, error)
	Name() string
}

// QuoteSource fetches a fundamentals snapshot for a symbol.
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) (model.Fundamentals, error)
}
