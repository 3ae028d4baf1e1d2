package inference

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// DefaultMaxDepth bounds tree growth when no depth is configured
const DefaultMaxDepth = 5

// TreeNode is either a leaf holding a label or a split on one feature.
type TreeNode struct {
	Leaf      bool
	Label     string
	Feature   string
	Threshold float64
	Impurity  float64
	Samples   int
	Left      *TreeNode // feature <= threshold
	Right     *TreeNode // feature > threshold
}

// Tree is a fitted binary split classifier
type Tree struct {
	Root     *TreeNode
	Features []string
	Label    string
	MaxDepth int
	Samples  int
	Classes  int
}

type sample struct {
	values map[string]float64
	label  string
}

// FitTree grows a classifier on the rows whose features all parse as numbers
// and whose label is present. Each path splits on a feature at most once.
func FitTree(ctx context.Context, t table.Table, features []string, label string, maxDepth int) (*Tree, error) {
	if len(features) == 0 {
		return nil, types.NewConfigError("decision_tree", "features", types.ErrNoColumns)
	}
	if label == "" {
		return nil, types.NewConfigError("decision_tree", "label", types.ErrNoColumns)
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	samples := make([]sample, 0, len(t))
	classes := newTally()
rows:
	for _, r := range t {
		lv := r.Get(label)
		if lv.IsMissing() {
			continue
		}
		s := sample{values: make(map[string]float64, len(features)), label: lv.Text()}
		for _, f := range features {
			v, ok := r.Get(f).Float()
			if !ok {
				continue rows
			}
			s.values[f] = v
		}
		classes.add(s.label, 1)
		samples = append(samples, s)
	}

	tree := &Tree{
		Features: slices.Clone(features),
		Label:    label,
		MaxDepth: maxDepth,
		Samples:  len(samples),
		Classes:  classes.distinct(),
	}
	if len(samples) == 0 {
		return tree, nil
	}

	available := slices.Clone(features)
	slices.Sort(available)
	available = slices.Compact(available)

	root, err := grow(ctx, samples, available, 0, maxDepth)
	if err != nil {
		return nil, err
	}
	tree.Root = root
	return tree, nil
}

func grow(ctx context.Context, samples []sample, available []string, depth, maxDepth int) (*TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	votes := newTally()
	for _, s := range samples {
		votes.add(s.label, 1)
	}
	majority, _ := votes.winner()
	node := &TreeNode{
		Leaf:     true,
		Label:    majority,
		Samples:  len(samples),
		Impurity: gini(samples),
	}
	if votes.distinct() == 1 || depth >= maxDepth || len(available) == 0 {
		return node, nil
	}

	bestScore := 0.0
	bestFeature := ""
	var bestThreshold float64
	for _, f := range available {
		for _, th := range midpoints(samples, f) {
			left, right := partition(samples, f, th)
			n := float64(len(samples))
			score := float64(len(left))/n*gini(left) + float64(len(right))/n*gini(right)
			if bestFeature == "" || score < bestScore {
				bestScore, bestFeature, bestThreshold = score, f, th
			}
		}
	}
	if bestFeature == "" {
		return node, nil
	}

	left, right := partition(samples, bestFeature, bestThreshold)
	rest := slices.DeleteFunc(slices.Clone(available), func(f string) bool { return f == bestFeature })

	l, err := grow(ctx, left, rest, depth+1, maxDepth)
	if err != nil {
		return nil, err
	}
	r, err := grow(ctx, right, rest, depth+1, maxDepth)
	if err != nil {
		return nil, err
	}

	node.Leaf = false
	node.Feature = bestFeature
	node.Threshold = bestThreshold
	node.Left, node.Right = l, r
	return node, nil
}

// midpoints returns the candidate thresholds between consecutive sorted unique values.
func midpoints(samples []sample, feature string) []float64 {
	vals := make([]float64, len(samples))
	for i, s := range samples {
		vals[i] = s.values[feature]
	}
	slices.Sort(vals)
	vals = slices.Compact(vals)

	out := make([]float64, 0, len(vals))
	for i := 1; i < len(vals); i++ {
		out = append(out, (vals[i-1]+vals[i])/2)
	}
	return out
}

func partition(samples []sample, feature string, threshold float64) (left, right []sample) {
	for _, s := range samples {
		if s.values[feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}

func gini(samples []sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.label]++
	}
	n := float64(len(samples))
	imp := 1.0
	for _, c := range counts {
		p := float64(c) / n
		imp -= p * p
	}
	return imp
}

// Predict classifies a query. Multiple features are given comma separated in
// the order they were configured.
func (t *Tree) Predict(input string) string {
	parts := strings.Split(input, ",")
	vals := make(map[string]float64, len(t.Features))
	for i, f := range t.Features {
		if i >= len(parts) {
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v != v {
			continue
		}
		vals[f] = v
	}
	return t.predict(vals)
}

// PredictRow classifies a table row
func (t *Tree) PredictRow(r table.Row) string {
	vals := make(map[string]float64, len(t.Features))
	for _, f := range t.Features {
		if v, ok := r.Get(f).Float(); ok {
			vals[f] = v
		}
	}
	return t.predict(vals)
}

func (t *Tree) predict(vals map[string]float64) string {
	n := t.Root
	if n == nil {
		return types.Unknown
	}
	for !n.Leaf {
		v, ok := vals[n.Feature]
		if !ok {
			return types.Unknown
		}
		if v <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Label
}

// Depth returns the number of split levels
func (t *Tree) Depth() int {
	var depth func(*TreeNode) int
	depth = func(n *TreeNode) int {
		if n == nil || n.Leaf {
			return 0
		}
		return 1 + max(depth(n.Left), depth(n.Right))
	}
	return depth(t.Root)
}

func (t *Tree) String() string {
	if t.Root == nil {
		return "<empty tree>"
	}
	var b strings.Builder
	var walk func(n *TreeNode, indent string)
	walk = func(n *TreeNode, indent string) {
		if n.Leaf {
			fmt.Fprintf(&b, "%s-> %s (n=%d)\n", indent, n.Label, n.Samples)
			return
		}
		fmt.Fprintf(&b, "%s%s <= %g (n=%d, gini=%.3f)\n", indent, n.Feature, n.Threshold, n.Samples, n.Impurity)
		walk(n.Left, indent+"  ")
		fmt.Fprintf(&b, "%s%s > %g\n", indent, n.Feature, n.Threshold)
		walk(n.Right, indent+"  ")
	}
	walk(t.Root, "")
	return b.String()
}
