package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// Figure is a plotly-compatible chart description. Nothing here renders pixels.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one plotted line.
type Trace struct {
	Type string   `json:"type"`
	Mode string   `json:"mode"`
	Name string   `json:"name"`
	X    []string `json:"x"`
	Y    Values   `json:"y"`
}

type Layout struct {
	Title      Text `json:"title"`
	XAxis      Axis `json:"xaxis"`
	YAxis      Axis `json:"yaxis"`
	ShowLegend bool `json:"showlegend"`
}

type Axis struct {
	Title Text `json:"title"`
}

type Text struct {
	Text string `json:"text"`
}

// Values encodes NaN and infinities as null so undefined leading averages survive JSON.
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	buf := make([]byte, 0, len(v)*8+2)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	*v = out
	return nil
}
