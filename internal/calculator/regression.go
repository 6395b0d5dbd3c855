package calculator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrLengthMismatch = errors.New("x and y differ in length")
	ErrTooFewPoints   = errors.New("need at least two observations")
	ErrZeroVariance   = errors.New("regressor has zero variance")
)

// OLS fits y = intercept + slope*x by ordinary least squares.
func OLS(x, y []float64) (intercept, slope float64, err error) {
	if len(x) != len(y) {
		return 0, 0, ErrLengthMismatch
	}
	n := len(x)
	if n < 2 {
		return 0, 0, ErrTooFewPoints
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxx, sxy float64
	for i := range x {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}
	if sxx == 0 || math.IsNaN(sxx) {
		return 0, 0, ErrZeroVariance
	}
	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return intercept, slope, nil
}

// Round rounds v half away from zero to places decimals.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
