package recorder

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"TickerLens/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func analysis(id, symbol string, at time.Time) *model.Analysis {
	return &model.Analysis{
		RunID:        id,
		Symbol:       symbol,
		Benchmark:    "^GSPC",
		Period:       "10Y",
		RiskFreeRate: 0.05,
		Beta:         1.23,
		Alpha:        0.04,
		Summary: model.Summary{
			Start:        time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC),
			End:          time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			Rows:         2515,
			LastPrice:    250.4,
			SimpleReturn: 8.1,
			CumReturn:    8.1,
			SMA200:       240,
			SMA200Dev:    math.NaN(),
			RSI14:        math.NaN(),
		},
		Fundamentals: 42,
		CreatedAt:    at,
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := newTestRecorder(t)
	base := time.Date(2024, 6, 1, 22, 30, 0, 0, time.UTC)

	for i, sym := range []string{"AAPL", "MSFT", "AAPL"} {
		if err := r.RecordAnalysis(analysis(sym+string(rune('a'+i)), sym, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordAnalysis: %v", err)
		}
	}

	got, err := r.RecentAnalyses("AAPL", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 AAPL runs, got %d", len(got))
	}
	if got[0].RunID != "AAPLc" {
		t.Errorf("expected newest first, got %s", got[0].RunID)
	}
	a := got[0]
	if a.Beta != 1.23 || a.Alpha != 0.04 || a.Summary.Rows != 2515 || a.Fundamentals != 42 {
		t.Errorf("unexpected row %+v", a)
	}
	if a.Summary.SMA200 != 240 || !math.IsNaN(a.Summary.SMA200Dev) {
		t.Errorf("SMA200 = %v, deviation = %v", a.Summary.SMA200, a.Summary.SMA200Dev)
	}
	if !math.IsNaN(a.Summary.RSI14) {
		t.Errorf("undefined RSI should read back as NaN, got %v", a.Summary.RSI14)
	}
	if !a.Summary.End.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end date = %v", a.Summary.End)
	}

	all, err := r.RecentAnalyses("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs overall, got %d", len(all))
	}
}

func TestSQLiteRecorder_DuplicateRunID(t *testing.T) {
	r := newTestRecorder(t)
	a := analysis("run-1", "AAPL", time.Now())
	if err := r.RecordAnalysis(a); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordAnalysis(a); err == nil {
		t.Error("expected unique constraint error on duplicate run id")
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordAnalysis(analysis("x", "AAPL", time.Now())); err != nil {
		t.Fatal(err)
	}
	got, err := r.RecentAnalyses("AAPL", 5)
	if err != nil || len(got) != 0 {
		t.Errorf("noop returned %v, %v", got, err)
	}
}
