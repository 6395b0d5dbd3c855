package calculator

import (
	"errors"
	"fmt"
	"math"
)

// LongSMAWindow is the trend window reported next to the 52-week range.
const LongSMAWindow = 200

// CalculateSMA returns the mean of the last window prices.
func CalculateSMA(prices []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(prices) < window {
		return 0, fmt.Errorf("need %d prices for SMA, have %d", window, len(prices))
	}
	sum := 0.0
	for _, p := range prices[len(prices)-window:] {
		sum += p
	}
	return sum / float64(window), nil
}

// SMASeries computes a rolling mean over window rows. The first window-1 values are NaN,
// as is any window containing a NaN price.
func SMASeries(prices []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := make([]float64, len(prices))
	sum := 0.0
	nans := 0
	for i, p := range prices {
		if math.IsNaN(p) {
			nans++
		} else {
			sum += p
		}
		if i >= window {
			old := prices[i-window]
			if math.IsNaN(old) {
				nans--
			} else {
				sum -= old
			}
		}
		if i < window-1 || nans > 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

// EMASeries computes an exponentially weighted mean with span, without bias adjustment:
// ema[0] = p[0], ema[t] = a*p[t] + (1-a)*ema[t-1] with a = 2/(span+1).
// Leading NaN prices stay NaN; later NaN prices carry the previous average forward.
func EMASeries(prices []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(prices))
	prev := math.NaN()
	for i, p := range prices {
		switch {
		case math.IsNaN(p):
		case math.IsNaN(prev):
			prev = p
		default:
			prev = alpha*p + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out, nil
}
