package transform

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Normalization strategies
const (
	NormalizeMinMax = "minmax"
	NormalizeZScore = "zscore"
)

// Normalize rescales the numeric cells of the selected columns.
// A column with no spread is left unchanged, as are non-numeric cells.
func Normalize(t table.Table, cols []string, strategy string) (table.Table, error) {
	if err := checkColumns("normalize", t, cols); err != nil {
		return nil, err
	}
	if strategy != NormalizeMinMax && strategy != NormalizeZScore {
		return nil, types.NewConfigError("normalize", "strategy", types.ErrUnknownStrategy)
	}

	out := t.Clone()
	for _, c := range cols {
		vals := t.Floats(c)
		if len(vals) == 0 {
			continue
		}

		var scale func(float64) float64
		switch strategy {
		case NormalizeMinMax:
			lo, hi := floats.Min(vals), floats.Max(vals)
			if hi == lo {
				continue
			}
			scale = func(x float64) float64 { return (x - lo) / (hi - lo) }
		case NormalizeZScore:
			mean, std := stat.PopMeanStdDev(vals, nil)
			if std == 0 {
				continue
			}
			scale = func(x float64) float64 { return (x - mean) / std }
		}

		for i := range out {
			if !out[i].Has(c) {
				continue
			}
			if x, ok := out[i].Get(c).Float(); ok {
				out[i].Set(c, table.Number(scale(x)))
			}
		}
	}
	return out, nil
}
