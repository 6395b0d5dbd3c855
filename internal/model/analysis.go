package model

import "time"

// Summary holds descriptive statistics of a single price series.
type Summary struct {
	Symbol       string
	Period       string
	Start        time.Time
	End          time.Time
	Rows         int
	LastPrice    float64
	SimpleReturn float64
	CumReturn    float64
	High52w      float64
	Low52w       float64
	Position52w  float64 // 0.0 ~ 1.0
	SMA200       float64 // NaN with fewer than 200 rows
	SMA200Dev    float64 // (LastPrice - SMA200) / SMA200
	RSI14        float64
}

// Analysis is the full result of one beta/alpha run against a benchmark.
type Analysis struct {
	RunID        string
	Symbol       string
	Benchmark    string
	Period       string
	RiskFreeRate float64
	Beta         float64
	Alpha        float64
	Summary      Summary
	Fundamentals int // number of fundamentals fields retrieved
	CreatedAt    time.Time
}
