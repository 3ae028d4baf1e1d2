package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

var (
	// ErrUnknownSubtype is returned when no operator is registered for a subtype
	ErrUnknownSubtype = errors.New("unknown node subtype")

	// ErrNotPreprocessor is returned when applying a node that is not a preprocessor
	ErrNotPreprocessor = errors.New("node cannot be applied")

	// ErrNotModel is returned when training a node that is not a model
	ErrNotModel = errors.New("node cannot be trained")
)

// Operator is the behaviour behind one node subtype
type Operator interface {
	Kind() types.NodeKind
	Subtype() types.Subtype
	// Defaults is the configuration a freshly dropped node starts with
	Defaults() types.Config
	// Schema lists the configuration fields the subtype reads
	Schema() []Field
}

// Preprocessor turns its input table into a derived table
type Preprocessor interface {
	Operator
	Apply(ctx context.Context, in table.Table, cfg types.Config) (Applied, error)
}

// Applied is the outcome of a preprocessor run
type Applied struct {
	Output  table.Table
	Summary string
}

// Model fits itself to its input table
type Model interface {
	Operator
	Train(ctx context.Context, in table.Table, cfg types.Config) (Trained, error)
}

// Trained is a fitted model ready to answer queries
type Trained interface {
	// Predict answers one query typed by the user
	Predict(query string) (types.Payload, error)
	// Summary describes the fit for display
	Summary() Summary
}

// Summary is the display form of a fitted model
type Summary struct {
	Samples int
	Classes int
	Details string
	// Structure is a multi-line rendering of the fitted model, when it has one
	Structure string
}

func (s Summary) String() string {
	out := fmt.Sprintf("samples=%d", s.Samples)
	if s.Classes > 0 {
		out += fmt.Sprintf(" classes=%d", s.Classes)
	}
	if s.Details != "" {
		out += " " + s.Details
	}
	return out
}

// base carries the static description shared by every operator
type base struct {
	kind     types.NodeKind
	subtype  types.Subtype
	defaults types.Config
	schema   []Field
}

func (b *base) Kind() types.NodeKind {
	return b.kind
}

func (b *base) Subtype() types.Subtype {
	return b.subtype
}

func (b *base) Defaults() types.Config {
	return b.defaults.Clone()
}

func (b *base) Schema() []Field {
	return append([]Field(nil), b.schema...)
}

// requireInput rejects an empty input table
func requireInput(op string, in table.Table) error {
	if in.Empty() {
		return types.NewConfigError(op, "input", types.ErrEmptyInput)
	}
	return nil
}
