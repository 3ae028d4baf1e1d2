package nodes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/avi3tal/mlcanvas/internal/inference"
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// parseQuery reads a numeric prediction input
func parseQuery(q string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
	if err != nil || v != v {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidQuery, q)
	}
	return v, nil
}

// labels counts the distinct present values of a column
func labels(t table.Table, col string) int {
	seen := make(map[string]bool)
	for _, r := range t {
		if v := r.Get(col); !v.IsMissing() {
			seen[v.Text()] = true
		}
	}
	return len(seen)
}

//------------//
// Regression //
//------------//

type regression struct{ base }

func newRegression() *regression {
	return &regression{base{
		kind:    types.KindModel,
		subtype: types.SubtypeRegression,
		schema: []Field{
			{Name: "features", Type: FieldColumn, Required: true, Help: "x column"},
			{Name: "label", Type: FieldColumn, Required: true, Help: "y column"},
			inputField,
		},
	}}
}

func (m *regression) Train(ctx context.Context, in table.Table, cfg types.Config) (Trained, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireInput("regression", in); err != nil {
		return nil, err
	}
	fit, err := inference.FitLinear(in, cfg.Feature(), cfg.Label)
	if err != nil {
		return nil, err
	}
	return &trainedLinear{fit}, nil
}

type trainedLinear struct{ *inference.Linear }

func (t *trainedLinear) Predict(q string) (types.Payload, error) {
	x, err := parseQuery(q)
	if err != nil {
		return types.Payload{}, err
	}
	return types.NumberPayload(t.Linear.Predict(x)), nil
}

func (t *trainedLinear) Summary() Summary {
	return Summary{
		Samples: t.Samples,
		Details: fmt.Sprintf("slope=%.4g intercept=%.4g", t.Slope, t.Intercept),
	}
}

//---------------//
// Decision tree //
//---------------//

type decisionTree struct{ base }

func newDecisionTree() *decisionTree {
	return &decisionTree{base{
		kind:     types.KindModel,
		subtype:  types.SubtypeDecisionTree,
		defaults: types.Config{MaxDepth: inference.DefaultMaxDepth},
		schema: []Field{
			{Name: "features", Type: FieldColumns, Required: true, Help: "feature columns"},
			labelField,
			{Name: "max_depth", Type: FieldInt, Help: "depth limit"},
			inputField,
		},
	}}
}

func (m *decisionTree) Train(ctx context.Context, in table.Table, cfg types.Config) (Trained, error) {
	if err := requireInput("decision_tree", in); err != nil {
		return nil, err
	}
	fit, err := inference.FitTree(ctx, in, cfg.Features, cfg.Label, cfg.MaxDepth)
	if err != nil {
		return nil, err
	}
	return &trainedTree{fit}, nil
}

type trainedTree struct{ *inference.Tree }

// Predict takes one value per feature, comma separated
func (t *trainedTree) Predict(q string) (types.Payload, error) {
	return types.TextPayload(t.Tree.Predict(q)), nil
}

func (t *trainedTree) Summary() Summary {
	return Summary{
		Samples:   t.Samples,
		Classes:   t.Classes,
		Details:   fmt.Sprintf("depth=%d", t.Depth()),
		Structure: t.Tree.String(),
	}
}

//---------//
// K-means //
//---------//

type kmeans struct{ base }

func newKMeans() *kmeans {
	return &kmeans{base{
		kind:     types.KindModel,
		subtype:  types.SubtypeKMeans,
		defaults: types.Config{K: 3, Init: inference.InitFirst},
		schema: []Field{
			featureField,
			{Name: "k", Type: FieldInt, Required: true, Help: "number of clusters"},
			{Name: "init", Type: FieldChoice, Options: []string{inference.InitFirst, inference.InitRandom}},
			{Name: "seed", Type: FieldInt, Help: "seed for random initialization"},
			inputField,
		},
	}}
}

func (m *kmeans) Train(ctx context.Context, in table.Table, cfg types.Config) (Trained, error) {
	if err := requireInput("kmeans", in); err != nil {
		return nil, err
	}
	fit, err := inference.FitKMeans(ctx, in, cfg.Feature(), cfg.K, cfg.Init, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return &trainedKMeans{fit}, nil
}

type trainedKMeans struct{ *inference.KMeans }

func (t *trainedKMeans) Predict(q string) (types.Payload, error) {
	x, err := parseQuery(q)
	if err != nil {
		return types.TextPayload(types.Unknown), nil
	}
	return types.TextPayload(t.Describe(x)), nil
}

func (t *trainedKMeans) Summary() Summary {
	cs := make([]string, len(t.Centroids))
	for i, c := range t.Centroids {
		cs[i] = strconv.FormatFloat(c, 'f', 2, 64)
	}
	return Summary{
		Samples: t.Samples,
		Details: fmt.Sprintf("iterations=%d inertia=%.2f centroids=[%s]", t.Iterations, t.Inertia, strings.Join(cs, " ")),
	}
}

//-----//
// KNN //
//-----//

type knn struct{ base }

func newKNN() *knn {
	return &knn{base{
		kind:     types.KindModel,
		subtype:  types.SubtypeKNN,
		defaults: types.Config{K: 3, Weighting: inference.WeightUniform},
		schema: []Field{
			featureField,
			labelField,
			{Name: "k", Type: FieldInt, Required: true, Help: "neighbours polled"},
			{Name: "weighting", Type: FieldChoice, Options: []string{inference.WeightUniform, inference.WeightDistance}},
			inputField,
		},
	}}
}

// Train only validates and keeps the rows; KNN is evaluated per query.
func (m *knn) Train(ctx context.Context, in table.Table, cfg types.Config) (Trained, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireInput("knn", in); err != nil {
		return nil, err
	}
	if _, err := inference.KNN(in, cfg.Feature(), cfg.Label, cfg.K, cfg.Weighting, 0); err != nil {
		return nil, err
	}
	return &trainedKNN{
		rows:    in,
		cfg:     cfg.Clone(),
		samples: len(inference.Neighbors(in, cfg.Feature(), cfg.Label, 0)),
		classes: labels(in, cfg.Label),
	}, nil
}

type trainedKNN struct {
	rows    table.Table
	cfg     types.Config
	samples int
	classes int
}

func (t *trainedKNN) Predict(q string) (types.Payload, error) {
	x, err := parseQuery(q)
	if err != nil {
		return types.TextPayload(types.Unknown), nil
	}
	label, err := inference.KNN(t.rows, t.cfg.Feature(), t.cfg.Label, t.cfg.K, t.cfg.Weighting, x)
	if err != nil {
		return types.Payload{}, err
	}
	return types.TextPayload(label), nil
}

func (t *trainedKNN) Summary() Summary {
	return Summary{
		Samples: t.samples,
		Classes: t.classes,
		Details: fmt.Sprintf("k=%d", t.cfg.K),
	}
}

//-----------//
// Threshold //
//-----------//

type threshold struct{ base }

func newThreshold() *threshold {
	return &threshold{base{
		kind:    types.KindModel,
		subtype: types.SubtypeThreshold,
		schema: []Field{
			featureField,
			labelField,
			{Name: "threshold", Type: FieldFloat, Help: "manual decision threshold"},
			inputField,
		},
	}}
}

func (m *threshold) Train(ctx context.Context, in table.Table, cfg types.Config) (Trained, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireInput("threshold", in); err != nil {
		return nil, err
	}
	fit, err := inference.FitThreshold(in, cfg.Feature(), cfg.Label, cfg.Threshold)
	if err != nil {
		return nil, err
	}
	return &trainedThreshold{fit}, nil
}

type trainedThreshold struct{ *inference.Threshold }

func (t *trainedThreshold) Predict(q string) (types.Payload, error) {
	x, err := parseQuery(q)
	if err != nil {
		return types.TextPayload(types.Unknown), nil
	}
	return types.TextPayload(t.Threshold.Predict(x)), nil
}

func (t *trainedThreshold) Summary() Summary {
	return Summary{
		Samples: t.Samples,
		Classes: 2,
		Details: fmt.Sprintf("threshold=%.4g low=%s high=%s", t.Threshold.Threshold, t.Low, t.High),
	}
}

//--------//
// Forest //
//--------//

type forest struct{ base }

func newForest() *forest {
	return &forest{base{
		kind:     types.KindModel,
		subtype:  types.SubtypeForest,
		defaults: types.Config{Trees: inference.DefaultTrees},
		schema: []Field{
			featureField,
			labelField,
			{Name: "trees", Type: FieldInt, Required: true, Help: "ensemble size"},
			inputField,
		},
	}}
}

// Train only validates and keeps the rows; voting happens per query.
func (m *forest) Train(ctx context.Context, in table.Table, cfg types.Config) (Trained, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireInput("forest", in); err != nil {
		return nil, err
	}
	if _, err := inference.Forest(in, cfg.Feature(), cfg.Label, cfg.Trees, ""); err != nil {
		return nil, err
	}
	return &trainedForest{rows: in, cfg: cfg.Clone(), classes: labels(in, cfg.Label)}, nil
}

type trainedForest struct {
	rows    table.Table
	cfg     types.Config
	classes int
}

func (t *trainedForest) Predict(q string) (types.Payload, error) {
	label, err := inference.Forest(t.rows, t.cfg.Feature(), t.cfg.Label, t.cfg.Trees, q)
	if err != nil {
		return types.Payload{}, err
	}
	return types.TextPayload(label), nil
}

func (t *trainedForest) Summary() Summary {
	return Summary{
		Samples: t.rows.Len(),
		Classes: t.classes,
		Details: fmt.Sprintf("trees=%d", t.cfg.Trees),
	}
}
