package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"TickerLens/internal/model"
)

// NewFigure creates an empty line chart with a titled layout and a visible legend.
func NewFigure(title, xTitle, yTitle string) *model.Figure {
	return &model.Figure{
		Layout: model.Layout{
			Title:      model.Text{Text: title},
			XAxis:      model.Axis{Title: model.Text{Text: xTitle}},
			YAxis:      model.Axis{Title: model.Text{Text: yTitle}},
			ShowLegend: true,
		},
	}
}

// AddLine appends a line trace. Dates are rendered at calendar-day precision.
func AddLine(fig *model.Figure, name string, dates []time.Time, ys []float64) error {
	if len(dates) != len(ys) {
		return fmt.Errorf("trace %q: %d dates but %d values", name, len(dates), len(ys))
	}
	x := make([]string, len(dates))
	for i, d := range dates {
		x[i] = d.Format("2006-01-02")
	}
	y := make(model.Values, len(ys))
	copy(y, ys)
	fig.Data = append(fig.Data, model.Trace{Type: "scatter", Mode: "lines", Name: name, X: x, Y: y})
	return nil
}

// WriteJSON encodes fig as plotly-compatible JSON.
func WriteJSON(w io.Writer, fig *model.Figure) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fig)
}

// SaveJSON writes fig to path, creating parent directories.
func SaveJSON(path string, fig *model.Figure) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := WriteJSON(f, fig); err != nil {
		f.Close()
		return fmt.Errorf("encode chart: %w", err)
	}
	return f.Close()
}
