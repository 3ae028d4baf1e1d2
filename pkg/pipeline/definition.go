package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/avi3tal/mlcanvas/internal/graph"
	"github.com/avi3tal/mlcanvas/internal/nodes"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Step actions
const (
	ActionApply   = "apply"
	ActionTrain   = "train"
	ActionPredict = "predict"
)

// Definition is a pipeline as written in YAML: the canvas plus an ordered
// list of user actions to replay on it.
type Definition struct {
	Name  string    `yaml:"name"`
	Data  string    `yaml:"data,omitempty"`
	Nodes []NodeDef `yaml:"nodes"`
	Edges []EdgeDef `yaml:"edges"`
	Steps []StepDef `yaml:"steps,omitempty"`
}

// NodeDef declares one node. Unset config fields take the subtype defaults.
type NodeDef struct {
	ID      string        `yaml:"id"`
	Subtype types.Subtype `yaml:"type"`
	Config  types.Config  `yaml:"config,omitempty"`
}

// EdgeDef connects two nodes
type EdgeDef struct {
	ID   string `yaml:"id,omitempty"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// StepDef is one action run against a node
type StepDef struct {
	Action string `yaml:"action"`
	Node   string `yaml:"node"`
	Input  string `yaml:"input,omitempty"`
}

func (s StepDef) String() string {
	if s.Input != "" {
		return fmt.Sprintf("%s %s(%s)", s.Action, s.Node, s.Input)
	}
	return fmt.Sprintf("%s %s", s.Action, s.Node)
}

// Load decodes and validates a YAML definition
func Load(r io.Reader) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile reads a definition from disk
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Marshal renders the definition as YAML
func (d *Definition) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Validate reports every problem in the definition at once
func (d *Definition) Validate() error {
	var result *multierror.Error
	kinds := make(map[string]types.NodeKind, len(d.Nodes))

	for i, n := range d.Nodes {
		if n.ID == "" {
			result = multierror.Append(result, fmt.Errorf("node #%d: missing id", i))
			continue
		}
		if _, dup := kinds[n.ID]; dup {
			result = multierror.Append(result, fmt.Errorf("node %s: %w", n.ID, graph.ErrDuplicateNode))
			continue
		}
		op, err := nodes.Lookup(n.Subtype)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("node %s: %w", n.ID, err))
			continue
		}
		kinds[n.ID] = op.Kind()
	}

	for i, e := range d.Edges {
		for _, end := range []string{e.From, e.To} {
			if _, ok := kinds[end]; !ok {
				result = multierror.Append(result, fmt.Errorf("edge #%d %s->%s: %q: %w", i, e.From, e.To, end, graph.ErrNodeNotFound))
			}
		}
	}

	for i, s := range d.Steps {
		kind, ok := kinds[s.Node]
		if !ok {
			result = multierror.Append(result, fmt.Errorf("step #%d %s: %w", i, s, graph.ErrNodeNotFound))
			continue
		}
		want := types.KindModel
		switch s.Action {
		case ActionApply:
			want = types.KindPreprocessor
		case ActionTrain, ActionPredict:
		default:
			result = multierror.Append(result, fmt.Errorf("step #%d %s: unknown action %q", i, s, s.Action))
			continue
		}
		if kind != want {
			result = multierror.Append(result, fmt.Errorf("step #%d %s: node is a %s, need a %s", i, s, kind, want))
		}
	}

	return result.ErrorOrNil()
}

// Topology converts the definition into graph nodes and edges. Node configs
// are layered over the subtype defaults.
func (d *Definition) Topology() ([]graph.Node, []graph.Edge, error) {
	ns := make([]graph.Node, 0, len(d.Nodes))
	for _, def := range d.Nodes {
		n, err := nodes.NewNode(def.ID, def.Subtype)
		if err != nil {
			return nil, nil, fmt.Errorf("node %s: %w", def.ID, err)
		}
		n.Config = overlay(n.Config, def.Config)
		ns = append(ns, n)
	}

	es := make([]graph.Edge, 0, len(d.Edges))
	for i, e := range d.Edges {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("e%d-%s-%s", i, e.From, e.To)
		}
		es = append(es, graph.Edge{ID: id, Source: e.From, Target: e.To})
	}
	return ns, es, nil
}

// overlay copies every set field of cfg over base
func overlay(base, cfg types.Config) types.Config {
	out := base.Clone()
	if len(cfg.Columns) > 0 {
		out.Columns = append([]string(nil), cfg.Columns...)
	}
	if len(cfg.Features) > 0 {
		out.Features = append([]string(nil), cfg.Features...)
	}
	if cfg.Label != "" {
		out.Label = cfg.Label
	}
	if cfg.Strategy != "" {
		out.Strategy = cfg.Strategy
	}
	if cfg.K != 0 {
		out.K = cfg.K
	}
	if cfg.Weighting != "" {
		out.Weighting = cfg.Weighting
	}
	if cfg.Threshold != nil {
		th := *cfg.Threshold
		out.Threshold = &th
	}
	if cfg.Trees != 0 {
		out.Trees = cfg.Trees
	}
	if cfg.MaxDepth != 0 {
		out.MaxDepth = cfg.MaxDepth
	}
	if cfg.Init != "" {
		out.Init = cfg.Init
	}
	if cfg.Seed != 0 {
		out.Seed = cfg.Seed
	}
	if cfg.Input != "" {
		out.Input = cfg.Input
	}
	return out
}
