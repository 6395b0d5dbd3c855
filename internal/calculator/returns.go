package calculator

import (
	"errors"
	"math"
)

// PctChange returns (p[t]-p[t-1])/p[t-1]; index 0 is NaN.
func PctChange(prices []float64) []float64 {
	out := make([]float64, len(prices))
	for i := range prices {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return out
}

// CumulativeReturns compounds daily returns: cum[t] = prod(1+r[0..t]) - 1.
// NaN returns are skipped by the product but stay NaN in the output.
func CumulativeReturns(daily []float64) []float64 {
	out := make([]float64, len(daily))
	growth := 1.0
	for i, r := range daily {
		if math.IsNaN(r) {
			out[i] = math.NaN()
			continue
		}
		growth *= 1 + r
		out[i] = growth - 1
	}
	return out
}

// SimpleReturn is (last-first)/first over the whole window, uncompounded.
func SimpleReturn(prices []float64) (float64, error) {
	if len(prices) == 0 {
		return 0, errors.New("no prices provided")
	}
	start := prices[0]
	if start == 0 {
		return 0, errors.New("start price is zero")
	}
	return (prices[len(prices)-1] - start) / start, nil
}
