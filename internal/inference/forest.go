package inference

import (
	"strconv"
	"strings"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// DefaultTrees is the ensemble size when none is configured
const DefaultTrees = 5

// Forest simulates ensemble voting. A numeric query polls the trees nearest
// rows by absolute feature distance; any other query polls the rows whose
// feature matches it exactly. The most frequent label wins, ties going to the
// label met first.
func Forest(t table.Table, feature, label string, trees int, query string) (string, error) {
	if feature == "" {
		return "", types.NewConfigError("forest", "feature", types.ErrNoColumns)
	}
	if label == "" {
		return "", types.NewConfigError("forest", "label", types.ErrNoColumns)
	}
	if trees < 1 {
		return "", types.NewConfigError("forest", "trees", types.ErrInvalidK)
	}

	votes := newTally()
	if q, err := strconv.ParseFloat(strings.TrimSpace(query), 64); err == nil && q == q && hasNumeric(t, feature) {
		nb := Neighbors(t, feature, label, q)
		if len(nb) > trees {
			nb = nb[:trees]
		}
		for _, n := range nb {
			votes.add(n.Label, 1)
		}
	} else {
		for _, r := range t {
			if r.Has(feature) && r.Get(feature).Text() == query {
				votes.add(r.Get(label).Text(), 1)
			}
		}
	}

	if winner, ok := votes.winner(); ok {
		return winner, nil
	}
	return types.Unknown, nil
}

func hasNumeric(t table.Table, feature string) bool {
	for _, r := range t {
		if _, ok := r.Get(feature).Float(); ok {
			return true
		}
	}
	return false
}
