package inference

import (
	"gonum.org/v1/gonum/stat"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Linear is a fitted one variable least squares line
type Linear struct {
	X         string
	Y         string
	Slope     float64
	Intercept float64
	Samples   int
}

// FitLinear fits y = slope*x + intercept over the parseable values of both
// columns. The columns are filtered independently, so they must end up with the
// same, non-zero length.
func FitLinear(t table.Table, x, y string) (*Linear, error) {
	if x == "" {
		return nil, types.NewConfigError("regression", "x", types.ErrNoColumns)
	}
	if y == "" {
		return nil, types.NewConfigError("regression", "y", types.ErrNoColumns)
	}

	xs, ys := t.Floats(x), t.Floats(y)
	if len(xs) != len(ys) || len(xs) == 0 {
		return nil, types.NewConfigError("regression", "", types.ErrMismatchedData)
	}

	meanX := stat.Mean(xs, nil)
	var den float64
	for _, v := range xs {
		den += (v - meanX) * (v - meanX)
	}
	if den == 0 {
		return nil, types.NewConfigError("regression", x, types.ErrZeroVariance)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return &Linear{
		X:         x,
		Y:         y,
		Slope:     slope,
		Intercept: intercept,
		Samples:   len(xs),
	}, nil
}

// Predict evaluates the fitted line
func (l *Linear) Predict(x float64) float64 {
	return l.Slope*x + l.Intercept
}
