package transform

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Imputation strategies
const (
	ImputeMean   = "mean"
	ImputeMedian = "median"
	ImputeRemove = "remove"
)

// Impute fills or drops missing cells in the selected columns.
//
// "remove" drops every row missing in any selected column. "mean" and "median"
// substitute the per-column statistic of the valid numeric cells; a column with
// no valid numbers substitutes 0.
func Impute(t table.Table, cols []string, strategy string) (table.Table, error) {
	if err := checkColumns("impute", t, cols); err != nil {
		return nil, err
	}

	switch strategy {
	case ImputeRemove:
		out := make(table.Table, 0, len(t))
		for _, r := range t {
			if !missingAny(r, cols) {
				out = append(out, r.Clone())
			}
		}
		return out, nil
	case ImputeMean, ImputeMedian:
	default:
		return nil, types.NewConfigError("impute", "strategy", types.ErrUnknownStrategy)
	}

	fill := make(map[string]float64, len(cols))
	for _, c := range cols {
		fill[c] = columnStatistic(t, c, strategy)
	}

	out := t.Clone()
	for i := range out {
		for _, c := range cols {
			if out[i].Get(c).IsMissing() {
				out[i].Set(c, table.Number(fill[c]))
			}
		}
	}
	return out, nil
}

func missingAny(r table.Row, cols []string) bool {
	for _, c := range cols {
		if r.Get(c).IsMissing() {
			return true
		}
	}
	return false
}

func columnStatistic(t table.Table, col, strategy string) float64 {
	var vals []float64
	for _, r := range t {
		v := r.Get(col)
		if v.IsMissing() {
			continue
		}
		if f, ok := v.Float(); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	if strategy == ImputeMedian {
		return median(vals)
	}
	return stat.Mean(vals, nil)
}

// median averages the two middle values for even-length input.
func median(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
