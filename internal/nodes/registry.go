package nodes

import (
	"fmt"
	"slices"

	"github.com/avi3tal/mlcanvas/internal/graph"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

var registry = newRegistry(
	newCSVSource(),
	newImpute(),
	newNormalize(),
	newEncode(),
	newRegression(),
	newDecisionTree(),
	newKMeans(),
	newKNN(),
	newThreshold(),
	newForest(),
	newOutputSink(),
)

func newRegistry(ops ...Operator) map[types.Subtype]Operator {
	m := make(map[types.Subtype]Operator, len(ops))
	for _, op := range ops {
		m[op.Subtype()] = op
	}
	return m
}

// Lookup returns the operator registered for a subtype
func Lookup(subtype types.Subtype) (Operator, error) {
	op, ok := registry[subtype]
	if !ok {
		return nil, fmt.Errorf("%q: %w", subtype, ErrUnknownSubtype)
	}
	return op, nil
}

// Subtypes lists every registered subtype in sorted order
func Subtypes() []types.Subtype {
	out := make([]types.Subtype, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Schema returns the configuration fields of a subtype
func Schema(subtype types.Subtype) ([]Field, error) {
	op, err := Lookup(subtype)
	if err != nil {
		return nil, err
	}
	return op.Schema(), nil
}

// NewNode creates a graph node of the given subtype with its default config.
// An empty id gets a generated one.
func NewNode(id string, subtype types.Subtype) (graph.Node, error) {
	op, err := Lookup(subtype)
	if err != nil {
		return graph.Node{}, err
	}
	return graph.NewNode(id, op.Kind(), subtype, op.Defaults()), nil
}

// PreprocessorFor returns the preprocessor behind a subtype
func PreprocessorFor(subtype types.Subtype) (Preprocessor, error) {
	op, err := Lookup(subtype)
	if err != nil {
		return nil, err
	}
	p, ok := op.(Preprocessor)
	if !ok {
		return nil, fmt.Errorf("%q is a %s: %w", subtype, op.Kind(), ErrNotPreprocessor)
	}
	return p, nil
}

// ModelFor returns the model behind a subtype
func ModelFor(subtype types.Subtype) (Model, error) {
	op, err := Lookup(subtype)
	if err != nil {
		return nil, err
	}
	m, ok := op.(Model)
	if !ok {
		return nil, fmt.Errorf("%q is a %s: %w", subtype, op.Kind(), ErrNotModel)
	}
	return m, nil
}
