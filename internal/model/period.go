package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PeriodUnit is the unit of a lookback period.
type PeriodUnit string

const (
	UnitDay   PeriodUnit = "D"
	UnitWeek  PeriodUnit = "WK"
	UnitMonth PeriodUnit = "MO"
	UnitYear  PeriodUnit = "Y"
	UnitYTD   PeriodUnit = "YTD"
	UnitMax   PeriodUnit = "MAX"
)

// Period is a lookback window such as "10Y", "6MO", "5D", "YTD" or "MAX".
type Period struct {
	Count int
	Unit  PeriodUnit
}

// ParsePeriod parses a period string. Units are case-insensitive.
func ParsePeriod(s string) (Period, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return Period{}, fmt.Errorf("empty period")
	}
	switch PeriodUnit(raw) {
	case UnitYTD, UnitMax:
		return Period{Unit: PeriodUnit(raw)}, nil
	}

	i := 0
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == 0 || i == len(raw) {
		return Period{}, fmt.Errorf("invalid period %q: want <count><D|WK|MO|Y>, YTD or MAX", s)
	}
	n, err := strconv.Atoi(raw[:i])
	if err != nil || n <= 0 {
		return Period{}, fmt.Errorf("invalid period count in %q", s)
	}

	unit := PeriodUnit(raw[i:])
	switch unit {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
	case "W":
		unit = UnitWeek
	case "M":
		unit = UnitMonth
	default:
		return Period{}, fmt.Errorf("invalid period unit in %q", s)
	}
	return Period{Count: n, Unit: unit}, nil
}

func (p Period) String() string {
	if p.Unit == UnitYTD || p.Unit == UnitMax {
		return string(p.Unit)
	}
	return strconv.Itoa(p.Count) + string(p.Unit)
}

// Start returns the first instant covered by the period when it ends at now.
// MAX returns the zero time.
func (p Period) Start(now time.Time) time.Time {
	switch p.Unit {
	case UnitDay:
		return now.AddDate(0, 0, -p.Count)
	case UnitWeek:
		return now.AddDate(0, 0, -7*p.Count)
	case UnitMonth:
		return now.AddDate(0, -p.Count, 0)
	case UnitYear:
		return now.AddDate(-p.Count, 0, 0)
	case UnitYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}
