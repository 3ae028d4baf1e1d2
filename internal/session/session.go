package session

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/avi3tal/mlcanvas/internal/engine"
	"github.com/avi3tal/mlcanvas/internal/graph"
	"github.com/avi3tal/mlcanvas/internal/logging"
	"github.com/avi3tal/mlcanvas/internal/nodes"
	"github.com/avi3tal/mlcanvas/internal/snapshots"
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// op is one unit of work for the session loop
type op struct {
	name string
	fn   func()
}

// result carries a value computed on the loop back to the waiting caller
type result[T any] struct {
	v   T
	err error
}

// task is an in-flight train or apply for one node
type task struct {
	name   string
	cancel context.CancelFunc
}

// Session owns a pipeline graph and serializes every action on it.
//
// All mutations and reads are queued and run one at a time, in order, on a
// single goroutine. Each mutation is followed by a recompute pass. Training and
// applying run on worker goroutines; their outcome is queued like any other
// action and dropped if the node changed in the meantime.
type Session struct {
	// Owned by the loop goroutine
	graph  *graph.Graph
	source table.Table
	fitted map[string]nodes.Trained
	tasks  map[string]*task

	ops     chan op
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	stopped chan struct{}
	once    sync.Once

	recorder *snapshots.Recorder
	id       string

	// Configuration
	name    string
	logger  *slog.Logger
	store   snapshots.Store
	debug   bool
	workers int
}

// New starts a session. It runs until ctx is done or Close is called.
func New(ctx context.Context, opts ...Option) *Session {
	s := &Session{
		fitted:  make(map[string]nodes.Trained),
		tasks:   make(map[string]*task),
		ops:     make(chan op),
		stopped: make(chan struct{}),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.New("session")
	}
	if s.store != nil {
		s.recorder = snapshots.NewRecorder(s.store)
	}

	s.graph = graph.NewGraph(s.name)
	s.id = s.graph.ID()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.group = &errgroup.Group{}
	s.group.SetLimit(s.workers)

	go s.loop()
	return s
}

// ID returns the id of the session graph
func (s *Session) ID() string {
	return s.id
}

// Close stops the loop, cancels running tasks and waits for them
func (s *Session) Close() error {
	s.once.Do(s.cancel)
	<-s.stopped
	return s.group.Wait()
}

func (s *Session) loop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.ctx.Done():
			for id := range s.tasks {
				s.invalidate(id)
			}
			return
		case o := <-s.ops:
			o.fn()
		}
	}
}

// call queues fn and waits for its result. The value only travels on the
// buffered reply channel; a caller that returns early gets zero values.
func call[T any](ctx context.Context, s *Session, name string, fn func() (T, error)) (T, error) {
	var zero T
	reply := make(chan result[T], 1)
	o := op{name: name, fn: func() {
		v, err := fn()
		reply <- result[T]{v: v, err: err}
	}}
	select {
	case s.ops <- o:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.stopped:
		return zero, ErrClosed
	}
	select {
	case r := <-reply:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.stopped:
		return zero, ErrClosed
	}
}

// do queues fn and waits for it to run
func (s *Session) do(ctx context.Context, name string, fn func() error) error {
	_, err := call(ctx, s, name, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// enqueue queues fn without waiting. It reports false once the loop is gone.
func (s *Session) enqueue(name string, fn func()) bool {
	select {
	case s.ops <- op{name: name, fn: fn}:
		return true
	case <-s.stopped:
		return false
	}
}

// recompute runs a full pass and drops state tied to inputs that moved
func (s *Session) recompute(trigger string) engine.Report {
	next, report := engine.Recompute(s.graph, s.source)
	s.graph = next
	for _, id := range report.InputChanged {
		s.invalidate(id)
	}

	if s.debug {
		s.logger.Debug("recompute pass",
			"trigger", trigger,
			"input_changed", report.InputChanged,
			"sinks_reset", report.SinksReset,
		)
	}
	s.record(trigger, report)
	return report
}

func (s *Session) record(trigger string, report engine.Report) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Record(s.ctx, trigger, s.graph, report); err != nil {
		s.logger.Warn("failed to record snapshot", "trigger", trigger, "error", err)
	}
}

// invalidate cancels the node's task and forgets its fitted model
func (s *Session) invalidate(id string) {
	if t, ok := s.tasks[id]; ok {
		t.cancel()
		delete(s.tasks, id)
		if s.debug {
			s.logger.Debug("task cancelled", "node", id, "task", t.name)
		}
	}
	delete(s.fitted, id)
}

// fail marks a node failed. Errors stay local to the node.
func (s *Session) fail(id string, err error) {
	_ = s.graph.SetStatus(id, types.StatusFailed, err.Error())
	level := slog.LevelError
	if types.IsConfigError(err) {
		level = slog.LevelWarn
	}
	s.logger.Log(s.ctx, level, "node failed", "node", id, "error", err)
}

func (s *Session) node(id string) (graph.Node, error) {
	n, ok := s.graph.Node(id)
	if !ok {
		return graph.Node{}, errors.Wrapf(graph.ErrNodeNotFound, "node %s", id)
	}
	return n, nil
}

//-----------------//
// Canvas boundary //
//-----------------//

// AddNode drops a node of the given subtype with its default config and
// returns its id. An empty id gets a generated one.
func (s *Session) AddNode(ctx context.Context, id string, subtype types.Subtype) (string, error) {
	n, err := nodes.NewNode(id, subtype)
	if err != nil {
		return "", errors.Wrap(err, "add node")
	}
	err = s.do(ctx, "add_node", func() error {
		if err := s.graph.AddNode(n); err != nil {
			return err
		}
		s.recompute("add_node")
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "add node")
	}
	return n.ID, nil
}

// RemoveNode deletes a node with its edges. Sinks it alone fed are reset.
func (s *Session) RemoveNode(ctx context.Context, id string) error {
	err := s.do(ctx, "remove_node", func() error {
		if _, err := s.graph.RemoveNode(id); err != nil {
			return err
		}
		s.invalidate(id)
		s.recompute("remove_node")
		return nil
	})
	return errors.Wrapf(err, "remove node %s", id)
}

// Connect adds an edge and returns its id
func (s *Session) Connect(ctx context.Context, source, target string) (string, error) {
	id, err := call(ctx, s, "connect", func() (string, error) {
		id, err := s.graph.AddEdge(source, target)
		if err != nil {
			return "", err
		}
		s.recompute("connect")
		return id, nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "connect %s to %s", source, target)
	}
	return id, nil
}

// Disconnect removes an edge by id
func (s *Session) Disconnect(ctx context.Context, edgeID string) error {
	err := s.do(ctx, "disconnect", func() error {
		if _, err := s.graph.RemoveEdge(edgeID); err != nil {
			return err
		}
		s.recompute("disconnect")
		return nil
	})
	return errors.Wrapf(err, "disconnect %s", edgeID)
}

// UpdateConfig replaces a node's configuration. Any change besides the
// prediction input discards the fitted model and cancels running work.
func (s *Session) UpdateConfig(ctx context.Context, id string, cfg types.Config) error {
	err := s.do(ctx, "update_config", func() error {
		n, err := s.node(id)
		if err != nil {
			return err
		}
		if !sameSettings(n.Config, cfg) {
			s.invalidate(id)
			status := types.StatusIdle
			if !n.Input.Empty() {
				status = types.StatusReady
			}
			_ = s.graph.SetStatus(id, status, "")
		}
		return s.graph.UpdateConfig(id, cfg)
	})
	return errors.Wrapf(err, "update config of %s", id)
}

// sameSettings compares configurations ignoring the prediction input
func sameSettings(a, b types.Config) bool {
	a.Input, b.Input = "", ""
	return reflect.DeepEqual(a, b)
}

// OnTopologyChanged replaces the whole topology. Nodes whose id, kind and
// subtype survive keep their data, results and fitted models.
func (s *Session) OnTopologyChanged(ctx context.Context, ns []graph.Node, es []graph.Edge) error {
	want := make(map[string]graph.Node, len(ns))
	for _, n := range ns {
		known, err := nodes.Lookup(n.Subtype)
		if err != nil {
			return errors.Wrapf(err, "topology node %s", n.ID)
		}
		if known.Kind() != n.Kind {
			return errors.Wrapf(graph.ErrInvalidNode, "topology node %s: %s is a %s", n.ID, n.Subtype, known.Kind())
		}
		want[n.ID] = n
	}
	for _, e := range es {
		if _, ok := want[e.Source]; !ok {
			return errors.Wrapf(graph.ErrNodeNotFound, "topology edge %s source %s", e.ID, e.Source)
		}
		if _, ok := want[e.Target]; !ok {
			return errors.Wrapf(graph.ErrNodeNotFound, "topology edge %s target %s", e.ID, e.Target)
		}
	}

	err := s.do(ctx, "topology", func() error {
		for _, cur := range s.graph.Nodes() {
			w, keep := want[cur.ID]
			if keep && w.Kind == cur.Kind && w.Subtype == cur.Subtype {
				continue
			}
			if _, err := s.graph.RemoveNode(cur.ID); err != nil {
				return err
			}
			s.invalidate(cur.ID)
		}
		for _, e := range s.graph.Edges() {
			if _, err := s.graph.RemoveEdge(e.ID); err != nil {
				return err
			}
		}

		for _, n := range ns {
			cur, exists := s.graph.Node(n.ID)
			if !exists {
				if err := s.graph.AddNode(graph.NewNode(n.ID, n.Kind, n.Subtype, n.Config)); err != nil {
					return err
				}
				continue
			}
			if !sameSettings(cur.Config, n.Config) {
				s.invalidate(n.ID)
			}
			if err := s.graph.UpdateConfig(n.ID, n.Config); err != nil {
				return err
			}
		}
		for _, e := range es {
			if err := s.graph.Connect(e); err != nil {
				return err
			}
		}
		s.recompute("topology")
		return nil
	})
	return errors.Wrap(err, "topology changed")
}

// OnSourceDataChanged replaces the external table every source supplies
func (s *Session) OnSourceDataChanged(ctx context.Context, t table.Table) error {
	err := s.do(ctx, "source_data", func() error {
		s.source = t
		s.recompute("source_data")
		return nil
	})
	return errors.Wrap(err, "source data changed")
}

// GetNodeView returns what the canvas shows for one node
func (s *Session) GetNodeView(ctx context.Context, id string) (NodeView, error) {
	return call(ctx, s, "view", func() (NodeView, error) {
		n, err := s.node(id)
		if err != nil {
			return NodeView{}, err
		}
		return viewOf(n, s.source), nil
	})
}

// Views returns every node view in creation order
func (s *Session) Views(ctx context.Context) ([]NodeView, error) {
	return call(ctx, s, "views", func() ([]NodeView, error) {
		var out []NodeView
		for _, n := range s.graph.Nodes() {
			out = append(out, viewOf(n, s.source))
		}
		return out, nil
	})
}

// Snapshot returns a copy of the current graph
func (s *Session) Snapshot(ctx context.Context) (*graph.Graph, error) {
	return call(ctx, s, "snapshot", func() (*graph.Graph, error) {
		return s.graph.Clone(), nil
	})
}

// History lists the recorded snapshots, oldest first
func (s *Session) History(ctx context.Context) ([]snapshots.Key, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx, s.ID())
}
