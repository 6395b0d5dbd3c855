package calculator

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-12

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPctChange(t *testing.T) {
	prices := []float64{100, 110, 99, 99}
	got := PctChange(prices)
	if !math.IsNaN(got[0]) {
		t.Errorf("first return should be NaN, got %v", got[0])
	}
	for i := 1; i < len(prices); i++ {
		want := (prices[i] - prices[i-1]) / prices[i-1]
		if got[i] != want {
			t.Errorf("return[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestCumulativeReturns_Recurrence(t *testing.T) {
	daily := PctChange([]float64{100, 105, 102, 110, 108, 120})
	cum := CumulativeReturns(daily)
	if !math.IsNaN(cum[0]) {
		t.Fatalf("cum[0] should be NaN, got %v", cum[0])
	}
	if cum[1] != daily[1] {
		t.Errorf("cum[1] = %v, want %v", cum[1], daily[1])
	}
	for i := 2; i < len(cum); i++ {
		want := (1+cum[i-1])*(1+daily[i]) - 1
		if math.Abs(cum[i]-want) > eps {
			t.Errorf("cum[%d] = %v, want %v", i, cum[i], want)
		}
	}
	if !approx(cum[len(cum)-1], 0.2) {
		t.Errorf("final cumulative return = %v, want 0.2", cum[len(cum)-1])
	}
}

func TestSimpleReturn(t *testing.T) {
	r, err := SimpleReturn([]float64{50, 80, 75})
	if err != nil {
		t.Fatal(err)
	}
	if r != 0.5 {
		t.Errorf("simple return = %v, want 0.5", r)
	}
	if _, err := SimpleReturn(nil); err == nil {
		t.Error("expected error for empty prices")
	}
	if _, err := SimpleReturn([]float64{0, 1}); err == nil {
		t.Error("expected error for zero start price")
	}
}

func TestSMASeries(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6, 7}
	got, err := SMASeries(prices, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("sma[%d] should be NaN, got %v", i, got[i])
		}
	}
	tests := []struct {
		idx  int
		want float64
	}{
		{4, 3}, {5, 4}, {6, 5},
	}
	for _, tt := range tests {
		if !approx(got[tt.idx], tt.want) {
			t.Errorf("sma[%d] = %v, want %v", tt.idx, got[tt.idx], tt.want)
		}
	}
	if _, err := SMASeries(prices, 0); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestSMASeries_MatchesCalculateSMA(t *testing.T) {
	prices := []float64{10, 12, 11, 15, 14, 13, 18, 20}
	series, _ := SMASeries(prices, 3)
	last, err := CalculateSMA(prices, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(series[len(series)-1], last) {
		t.Errorf("rolling tail %v != CalculateSMA %v", series[len(series)-1], last)
	}
	if _, err := CalculateSMA(prices, len(prices)+1); err == nil {
		t.Error("expected error when fewer prices than the window")
	}
	if _, err := CalculateSMA(prices, 0); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestEMASeries(t *testing.T) {
	prices := []float64{10, 11, 12, 13}
	got, err := EMASeries(prices, 3)
	if err != nil {
		t.Fatal(err)
	}
	// alpha = 0.5
	want := []float64{10, 10.5, 11.25, 12.125}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("ema[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if _, err := EMASeries(prices, -1); err == nil {
		t.Error("expected error for negative span")
	}
}

func TestOLS(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 5, 7, 9, 11}
	a, b, err := OLS(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(a, 1) || !approx(b, 2) {
		t.Errorf("got intercept=%v slope=%v, want 1 and 2", a, b)
	}

	_, self, err := OLS(x, x)
	if err != nil {
		t.Fatal(err)
	}
	if self != 1 {
		t.Errorf("self regression slope = %v, want exactly 1", self)
	}
}

func TestOLS_Errors(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want error
	}{
		{"mismatch", []float64{1, 2}, []float64{1}, ErrLengthMismatch},
		{"too few", []float64{1}, []float64{1}, ErrTooFewPoints},
		{"flat", []float64{2, 2, 2}, []float64{1, 2, 3}, ErrZeroVariance},
	}
	for _, tt := range tests {
		if _, _, err := OLS(tt.x, tt.y); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.234, 1.23},
		{1.235, 1.24},
		{-0.875, -0.88},
		{0.999, 1.0},
	}
	for _, tt := range tests {
		if got := Round(tt.in, 2); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !math.IsNaN(Round(math.NaN(), 2)) {
		t.Error("NaN should pass through")
	}
}

func TestCalculateRSI(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	rsi, err := CalculateRSI(rising, 14)
	if err != nil {
		t.Fatal(err)
	}
	if rsi != 100 {
		t.Errorf("monotonic rise RSI = %v, want 100", rsi)
	}
	short, _ := CalculateRSI(rising[:5], 14)
	if short != 50 {
		t.Errorf("insufficient data RSI = %v, want 50", short)
	}
}

func TestCalculateRangeAndPosition(t *testing.T) {
	closes := []float64{5, 50, 10, 20, 15}
	high, low, err := CalculateRange(closes, 3)
	if err != nil {
		t.Fatal(err)
	}
	if high != 20 || low != 10 {
		t.Errorf("range = (%v, %v), want (20, 10)", high, low)
	}
	pos, _ := CalculatePosition(15, high, low)
	if pos != 0.5 {
		t.Errorf("position = %v, want 0.5", pos)
	}
	if _, _, err := CalculateRange(nil, 3); err == nil {
		t.Error("expected error for no closes")
	}
	if _, err := CalculatePosition(1, 0, 2); err == nil {
		t.Error("expected error when high < low")
	}
}
