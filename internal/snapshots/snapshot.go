package snapshots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avi3tal/mlcanvas/internal/engine"
	"github.com/avi3tal/mlcanvas/internal/graph"
)

// ErrNotFound is returned when no snapshot matches a key
var ErrNotFound = errors.New("snapshot not found")

// Key identifies one recomputation pass of one graph
type Key struct {
	GraphID  string
	Revision uint64
}

// Meta describes the pass that produced a snapshot
type Meta struct {
	CreatedAt    time.Time
	Trigger      string
	InputChanged []string
	SinksReset   []string
}

// Snapshot is the graph state right after a pass
type Snapshot struct {
	Key   Key
	Meta  Meta
	Graph *graph.Graph
}

// Store persists snapshots
type Store interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context, key Key) (*Snapshot, error)
	Latest(ctx context.Context, graphID string) (*Snapshot, error)
	List(ctx context.Context, graphID string) ([]Key, error)
	Delete(ctx context.Context, key Key) error
}

// Recorder numbers passes and saves them to a Store
type Recorder struct {
	store    Store
	revision map[string]uint64
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store:    store,
		revision: make(map[string]uint64),
	}
}

// Record saves a copy of g under the next revision of its graph id.
// Callers serialize calls.
func (r *Recorder) Record(ctx context.Context, trigger string, g *graph.Graph, report engine.Report) (Key, error) {
	r.revision[g.ID()]++
	key := Key{GraphID: g.ID(), Revision: r.revision[g.ID()]}

	s := Snapshot{
		Key: key,
		Meta: Meta{
			CreatedAt:    time.Now(),
			Trigger:      trigger,
			InputChanged: report.InputChanged,
			SinksReset:   report.SinksReset,
		},
		Graph: g.Clone(),
	}

	if err := r.store.Save(ctx, s); err != nil {
		return Key{}, fmt.Errorf("failed to save snapshot %d for GraphID %s: %w", key.Revision, key.GraphID, err)
	}
	return key, nil
}
