package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TickerLens/internal/model"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the watcher writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL UNIQUE,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			benchmark      TEXT NOT NULL,
			period         TEXT,
			risk_free_rate REAL,
			beta           REAL,
			alpha          REAL,
			start_date     INTEGER,
			end_date       INTEGER,
			row_count      INTEGER,
			last_price     REAL,
			simple_return  REAL,
			cum_return     REAL,
			high_52w       REAL,
			low_52w        REAL,
			position_52w   REAL,
			sma200         REAL,
			sma200_dev     REAL,
			rsi14          REAL,
			fundamentals   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON analysis_runs(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := a.Summary
	_, err := r.db.Exec(`INSERT INTO analysis_runs
		(run_id, timestamp, symbol, benchmark, period, risk_free_rate, beta, alpha,
		 start_date, end_date, row_count, last_price, simple_return, cum_return,
		 high_52w, low_52w, position_52w, sma200, sma200_dev, rsi14, fundamentals)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.RunID, a.CreatedAt.Unix(), a.Symbol, a.Benchmark, a.Period,
		nullable(a.RiskFreeRate), nullable(a.Beta), nullable(a.Alpha),
		s.Start.Unix(), s.End.Unix(), s.Rows,
		nullable(s.LastPrice), nullable(s.SimpleReturn), nullable(s.CumReturn),
		nullable(s.High52w), nullable(s.Low52w), nullable(s.Position52w),
		nullable(s.SMA200), nullable(s.SMA200Dev), nullable(s.RSI14),
		a.Fundamentals,
	)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", a.RunID, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecentAnalyses(symbol string, limit int) ([]model.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT
		run_id, timestamp, symbol, benchmark, period, risk_free_rate, beta, alpha,
		start_date, end_date, row_count, last_price, simple_return, cum_return,
		high_52w, low_52w, position_52w, sma200, sma200_dev, rsi14, fundamentals
		FROM analysis_runs
		WHERE (? = '' OR symbol = ?)
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, symbol, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []model.Analysis
	for rows.Next() {
		var (
			a                   model.Analysis
			ts, start, end      int64
			period              sql.NullString
			rf, beta, alpha     sql.NullFloat64
			last, simple, cum   sql.NullFloat64
			high, low, pos, rsi sql.NullFloat64
			sma, smaDev         sql.NullFloat64
		)
		if err := rows.Scan(&a.RunID, &ts, &a.Symbol, &a.Benchmark, &period, &rf, &beta, &alpha,
			&start, &end, &a.Summary.Rows, &last, &simple, &cum,
			&high, &low, &pos, &sma, &smaDev, &rsi, &a.Fundamentals); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		a.CreatedAt = time.Unix(ts, 0)
		a.Period = period.String
		a.RiskFreeRate, a.Beta, a.Alpha = value(rf), value(beta), value(alpha)
		a.Summary.Symbol = a.Symbol
		a.Summary.Period = a.Period
		a.Summary.Start = time.Unix(start, 0).UTC()
		a.Summary.End = time.Unix(end, 0).UTC()
		a.Summary.LastPrice = value(last)
		a.Summary.SimpleReturn = value(simple)
		a.Summary.CumReturn = value(cum)
		a.Summary.High52w = value(high)
		a.Summary.Low52w = value(low)
		a.Summary.Position52w = value(pos)
		a.Summary.SMA200 = value(sma)
		a.Summary.SMA200Dev = value(smaDev)
		a.Summary.RSI14 = value(rsi)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

// nullable stores undefined values as NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func value(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}
