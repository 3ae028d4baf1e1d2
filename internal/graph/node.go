package graph

import (
	"github.com/google/uuid"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Node is one stage of the pipeline. Kind and Subtype never change after
// creation; the remaining fields are written only through the Graph mutators.
type Node struct {
	ID      string
	Kind    types.NodeKind
	Subtype types.Subtype
	Config  types.Config

	Input         table.Table
	InputRevision uint64
	CachedOutput  table.Table
	CachedResult  *types.Payload

	Status  types.NodeStatus
	Message string
}

// NewNode creates a node with empty caches. An empty id gets a generated one.
func NewNode(id string, kind types.NodeKind, subtype types.Subtype, cfg types.Config) Node {
	if id == "" {
		id = uuid.New().String()
	}
	return Node{
		ID:      id,
		Kind:    kind,
		Subtype: subtype,
		Config:  cfg,
		Status:  types.StatusIdle,
	}
}

func (n *Node) validate() error {
	if n.ID == "" {
		return NewValidationError("AddNode", "", ErrInvalidNode)
	}
	switch n.Kind {
	case types.KindSource, types.KindPreprocessor, types.KindModel, types.KindSink:
	default:
		return NewValidationError("AddNode", n.ID, ErrInvalidNode)
	}
	return nil
}

// clone copies the node. Tables are shared: rows are never modified in place.
func (n *Node) clone() *Node {
	c := *n
	c.Config = n.Config.Clone()
	if n.CachedResult != nil {
		p := *n.CachedResult
		c.CachedResult = &p
	}
	return &c
}
