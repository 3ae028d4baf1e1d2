package inference

import (
	"math"
	"slices"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Vote weighting for KNN
const (
	WeightUniform  = "uniform"
	WeightDistance = "distance"
)

// Epsilon keeps inverse distance weights finite for exact matches
var Epsilon = math.Nextafter(1, 2) - 1

// Neighbor is one candidate row in distance order
type Neighbor struct {
	Index    int
	Distance float64
	Label    string
}

// Neighbors returns every row with a parseable feature sorted by absolute
// distance to query; ties keep the original row order.
func Neighbors(t table.Table, feature, label string, query float64) []Neighbor {
	out := make([]Neighbor, 0, len(t))
	for i, r := range t {
		v, ok := r.Get(feature).Float()
		if !ok {
			continue
		}
		out = append(out, Neighbor{
			Index:    i,
			Distance: math.Abs(v - query),
			Label:    r.Get(label).Text(),
		})
	}
	slices.SortStableFunc(out, func(a, b Neighbor) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return out
}

// KNN votes among the k rows closest to query.
func KNN(t table.Table, feature, label string, k int, weighting string, query float64) (string, error) {
	if feature == "" {
		return "", types.NewConfigError("knn", "feature", types.ErrNoColumns)
	}
	if label == "" {
		return "", types.NewConfigError("knn", "label", types.ErrNoColumns)
	}
	if k < 1 {
		return "", types.NewConfigError("knn", "k", types.ErrInvalidK)
	}
	switch weighting {
	case "", WeightUniform, WeightDistance:
	default:
		return "", types.NewConfigError("knn", "weighting", types.ErrUnknownStrategy)
	}

	nb := Neighbors(t, feature, label, query)
	if len(nb) > k {
		nb = nb[:k]
	}

	votes := newTally()
	for _, n := range nb {
		w := 1.0
		if weighting == WeightDistance {
			w = 1 / (n.Distance + Epsilon)
		}
		votes.add(n.Label, w)
	}
	if winner, ok := votes.winner(); ok {
		return winner, nil
	}
	return types.Unknown, nil
}
