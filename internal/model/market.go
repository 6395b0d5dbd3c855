package model

import (
	"math"
	"sort"
	"time"
)

// PriceRow is one trading day of a price series.
// DailyReturn and CumReturn are NaN until derived, and stay NaN on the first row.
type PriceRow struct {
	Date        time.Time
	AdjClose    float64
	DailyReturn float64
	CumReturn   float64
}

// PriceSeries holds the daily adjusted-close history of one symbol, oldest first.
type PriceSeries struct {
	Symbol    string
	Rows      []PriceRow
	FetchedAt time.Time
}

// NewPriceSeries sorts rows chronologically and collapses rows that fall on the same
// calendar day, keeping the latest one.
func NewPriceSeries(symbol string, rows []PriceRow) *PriceSeries {
	sorted := make([]PriceRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]PriceRow, 0, len(sorted))
	for _, r := range sorted {
		r.Date = Day(r.Date)
		r.DailyReturn = math.NaN()
		r.CumReturn = math.NaN()
		if n := len(out); n > 0 && out[n-1].Date.Equal(r.Date) {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return &PriceSeries{Symbol: symbol, Rows: out, FetchedAt: time.Now()}
}

func (s *PriceSeries) Len() int { return len(s.Rows) }

// Closes returns the adjusted-close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		closes[i] = r.AdjClose
	}
	return closes
}

// Dates returns the date column.
func (s *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Rows))
	for i, r := range s.Rows {
		dates[i] = r.Date
	}
	return dates
}

// Returns maps each date to its daily return, skipping undefined returns.
func (s *PriceSeries) Returns() map[time.Time]float64 {
	m := make(map[time.Time]float64, len(s.Rows))
	for _, r := range s.Rows {
		if math.IsNaN(r.DailyReturn) || math.IsInf(r.DailyReturn, 0) {
			continue
		}
		m[r.Date] = r.DailyReturn
	}
	return m
}

// First and Last panic on an empty series; callers construct series that are never empty.
func (s *PriceSeries) First() PriceRow { return s.Rows[0] }
func (s *PriceSeries) Last() PriceRow  { return s.Rows[len(s.Rows)-1] }

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Point is a dated value.
type Point struct {
	Date  time.Time
	Value float64
}

// LabeledSeries is a single named column keyed by date.
type LabeledSeries struct {
	Label  string
	Points []Point
}

// JoinedRow holds one value per joined series, in the order the series were passed.
type JoinedRow struct {
	Date   time.Time
	Values []float64
}

// JoinOnDate inner-joins the given series on Date.
func JoinOnDate(series ...LabeledSeries) []JoinedRow {
	if len(series) == 0 {
		return nil
	}
	lookups := make([]map[time.Time]float64, len(series))
	for i, s := range series {
		lookups[i] = make(map[time.Time]float64, len(s.Points))
		for _, p := range s.Points {
			lookups[i][Day(p.Date)] = p.Value
		}
	}

	var rows []JoinedRow
	for _, p := range series[0].Points {
		d := Day(p.Date)
		vals := make([]float64, len(series))
		ok := true
		for i := range series {
			v, found := lookups[i][d]
			if !found {
				ok = false
				break
			}
			vals[i] = v
		}
		if ok {
			rows = append(rows, JoinedRow{Date: d, Values: vals})
		}
	}
	return rows
}
