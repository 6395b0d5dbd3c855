package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"TickerLens/internal/model"
)

// FormatAnalysisReport formats one analysis run into a Telegram message.
func FormatAnalysisReport(a *model.Analysis) string {
	var b strings.Builder
	s := a.Summary

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> vs %s | %s\n", html.EscapeString(a.Symbol), html.EscapeString(a.Benchmark), a.CreatedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Period: %s (%s ~ %s, %d days)\n\n", a.Period,
		s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Rows))

	b.WriteString(fmt.Sprintf("Last price: %s\n", num(s.LastPrice, 2)))
	b.WriteString(fmt.Sprintf("Return: %s (cumulative %s)\n", pct(s.SimpleReturn), pct(s.CumReturn)))
	b.WriteString(fmt.Sprintf("52w range: %s ~ %s (position %s)\n", num(s.Low52w, 2), num(s.High52w, 2), pct(s.Position52w)))
	b.WriteString(fmt.Sprintf("SMA(200): %s (deviation %s)\n", num(s.SMA200, 2), pct(s.SMA200Dev)))
	b.WriteString(fmt.Sprintf("RSI(14): %s\n\n", num(s.RSI14, 1)))

	b.WriteString("📈 <b>CAPM</b>\n")
	b.WriteString(fmt.Sprintf("  Beta: %.2f\n", a.Beta))
	b.WriteString(fmt.Sprintf("  Alpha: %s (rf %s)\n", pct(a.Alpha), pct(a.RiskFreeRate)))

	switch {
	case a.Beta > 1.5:
		b.WriteString("\n⚠️ High beta: moves well beyond the benchmark")
	case a.Beta < 0:
		b.WriteString("\n🔄 Negative beta: moves against the benchmark")
	}
	return b.String()
}

// FormatWatchlist summarises a watchlist run. failures maps symbol to error text.
func FormatWatchlist(results []*model.Analysis, failures map[string]string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>Watchlist</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	for _, a := range results {
		b.WriteString(fmt.Sprintf("%-6s β %5.2f  α %s  ret %s\n",
			html.EscapeString(a.Symbol), a.Beta, pct(a.Alpha), pct(a.Summary.SimpleReturn)))
	}
	if len(failures) > 0 {
		b.WriteString("\n❌ Failed:\n")
		for sym, msg := range failures {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(sym), html.EscapeString(msg)))
		}
	}
	if len(results) == 0 && len(failures) == 0 {
		b.WriteString("No symbols configured.")
	}
	return b.String()
}

// FormatHistory lists stored runs for one symbol, newest first.
func FormatHistory(symbol string, runs []model.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>History</b> | %s\n\n", html.EscapeString(symbol)))
	if len(runs) == 0 {
		b.WriteString("No recorded analyses.")
		return b.String()
	}
	for _, a := range runs {
		b.WriteString(fmt.Sprintf("%s  β %.2f  α %s  vs %s\n",
			a.CreatedAt.Format("2006-01-02 15:04"), a.Beta, pct(a.Alpha), html.EscapeString(a.Benchmark)))
	}
	return b.String()
}

func num(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", places, v)
}

func pct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", v*100)
}
