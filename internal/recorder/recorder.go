package recorder

import "TickerLens/internal/model"

// Recorder persists analysis runs for later review.
type Recorder interface {
	RecordAnalysis(a *model.Analysis) error
	// RecentAnalyses returns the newest runs for symbol, newest first. An empty symbol
	// matches every symbol.
	RecentAnalyses(symbol string, limit int) ([]model.Analysis, error)
	Close() error
}
