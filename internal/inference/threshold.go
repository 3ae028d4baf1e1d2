package inference

import (
	"fmt"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Threshold is a two class classifier splitting on one feature value.
// High is the class with the larger feature mean, which need not be the
// class observed first.
type Threshold struct {
	Feature   string
	Label     string
	Classes   [2]string // In order of first observation
	Means     [2]float64
	Threshold float64
	Low       string
	High      string
	Samples   int
}

// FitThreshold places the decision threshold halfway between the mean feature
// value of the two observed classes. A non-nil manual threshold replaces the
// computed one. The class with the higher mean is predicted at or above the
// threshold; with equal means the later observed class is the higher one.
func FitThreshold(t table.Table, feature, label string, manual *float64) (*Threshold, error) {
	if feature == "" {
		return nil, types.NewConfigError("threshold", "feature", types.ErrNoColumns)
	}
	if label == "" {
		return nil, types.NewConfigError("threshold", "label", types.ErrNoColumns)
	}

	var order []string
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range t {
		lv := r.Get(label)
		if lv.IsMissing() {
			continue
		}
		v, ok := r.Get(feature).Float()
		if !ok {
			continue
		}
		l := lv.Text()
		if _, seen := counts[l]; !seen {
			order = append(order, l)
		}
		sums[l] += v
		counts[l]++
	}
	if len(order) != 2 {
		return nil, types.NewConfigError("threshold", label,
			fmt.Errorf("%w: found %d", types.ErrClassCount, len(order)))
	}

	m := &Threshold{
		Feature: feature,
		Label:   label,
		Classes: [2]string{order[0], order[1]},
		Samples: counts[order[0]] + counts[order[1]],
	}
	for i, c := range order {
		m.Means[i] = sums[c] / float64(counts[c])
	}
	m.Threshold = (m.Means[0] + m.Means[1]) / 2
	if manual != nil {
		m.Threshold = *manual
	}

	m.Low, m.High = order[0], order[1]
	if m.Means[0] > m.Means[1] {
		m.Low, m.High = order[1], order[0]
	}
	return m, nil
}

// Predict returns the high class at or above the threshold, the low class below it
func (m *Threshold) Predict(x float64) string {
	if x >= m.Threshold {
		return m.High
	}
	return m.Low
}
