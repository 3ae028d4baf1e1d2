package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/avi3tal/mlcanvas/internal/engine"
	"github.com/avi3tal/mlcanvas/internal/nodes"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// startTask starts work on a worker and returns a channel carrying the final
// result. work runs off the loop and returns a commit function; commit runs on
// the loop, and only if the task is still the node's current one. Must be
// called from the loop.
func startTask[T any](s *Session, id, name string, work func(ctx context.Context) (commit func() (T, error))) (<-chan result[T], error) {
	if prev, ok := s.tasks[id]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{name: name, cancel: cancel}
	s.tasks[id] = t
	done := make(chan result[T], 1)

	started := s.group.TryGo(func() error {
		commit := work(ctx)
		queued := s.enqueue(name+"_done", func() {
			if s.tasks[id] != t {
				if s.debug {
					s.logger.Debug("stale result dropped", "node", id, "task", name)
				}
				done <- result[T]{err: ErrStaleResult}
				return
			}
			delete(s.tasks, id)
			cancel()
			v, err := commit()
			done <- result[T]{v: v, err: err}
		})
		if !queued {
			cancel()
			done <- result[T]{err: ErrClosed}
		}
		return nil
	})
	if !started {
		delete(s.tasks, id)
		cancel()
		return nil, ErrBusy
	}

	_ = s.graph.SetStatus(id, types.StatusRunning, "")
	if s.debug {
		s.logger.Debug("task started", "node", id, "task", name)
	}
	return done, nil
}

// await waits for a task started inside a queued action
func await[T any](ctx context.Context, s *Session, done <-chan result[T]) (T, error) {
	var zero T
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.stopped:
		return zero, ErrClosed
	}
}

// Train fits a model node on its current input
func (s *Session) Train(ctx context.Context, id string) (nodes.Summary, error) {
	done, err := call(ctx, s, "train", func() (<-chan result[nodes.Summary], error) {
		n, err := s.node(id)
		if err != nil {
			return nil, err
		}
		if n.Kind != types.KindModel {
			return nil, errors.Wrapf(ErrWrongKind, "%s is a %s", id, n.Kind)
		}
		m, err := nodes.ModelFor(n.Subtype)
		if err != nil {
			return nil, err
		}

		input, cfg := n.Input, n.Config
		return startTask(s, id, "train", func(ctx context.Context) func() (nodes.Summary, error) {
			fit, err := m.Train(ctx, input, cfg)
			return func() (nodes.Summary, error) {
				if err != nil {
					s.fail(id, err)
					return nodes.Summary{}, err
				}
				s.fitted[id] = fit
				summary := fit.Summary()
				_ = s.graph.SetStatus(id, types.StatusTrained, summary.String())
				s.logger.Info("model trained", "node", id, "subtype", n.Subtype, "summary", summary.String())
				return summary, nil
			}
		})
	})
	if err != nil {
		return nodes.Summary{}, errors.Wrapf(err, "train %s", id)
	}
	summary, err := await(ctx, s, done)
	return summary, errors.Wrapf(err, "train %s", id)
}

// Apply runs a preprocessor on its current input. Its output becomes the
// input of downstream nodes on the pass that follows.
func (s *Session) Apply(ctx context.Context, id string) (string, error) {
	done, err := call(ctx, s, "apply", func() (<-chan result[string], error) {
		n, err := s.node(id)
		if err != nil {
			return nil, err
		}
		if n.Kind != types.KindPreprocessor {
			return nil, errors.Wrapf(ErrWrongKind, "%s is a %s", id, n.Kind)
		}
		p, err := nodes.PreprocessorFor(n.Subtype)
		if err != nil {
			return nil, err
		}

		input, cfg := n.Input, n.Config
		return startTask(s, id, "apply", func(ctx context.Context) func() (string, error) {
			applied, err := p.Apply(ctx, input, cfg)
			return func() (string, error) {
				if err != nil {
					s.fail(id, err)
					return "", err
				}
				if _, err := engine.Deliver(s.graph, id, engine.Output(applied.Output)); err != nil {
					return "", err
				}
				_ = s.graph.SetStatus(id, types.StatusCompleted, applied.Summary)
				s.logger.Info("preprocessor applied", "node", id, "subtype", n.Subtype, "rows", applied.Output.Len())
				s.recompute("apply")
				return applied.Summary, nil
			}
		})
	})
	if err != nil {
		return "", errors.Wrapf(err, "apply %s", id)
	}
	summary, err := await(ctx, s, done)
	return summary, errors.Wrapf(err, "apply %s", id)
}

// Predict answers query with a model and publishes the answer to every sink
// the model feeds. An empty query reuses the node's stored input. An
// untrained model is trained first.
func (s *Session) Predict(ctx context.Context, id, query string) (types.Payload, error) {
	trained, err := call(ctx, s, "predict_check", func() (bool, error) {
		n, err := s.node(id)
		if err != nil {
			return false, err
		}
		if n.Kind != types.KindModel {
			return false, errors.Wrapf(ErrWrongKind, "%s is a %s", id, n.Kind)
		}
		_, ok := s.fitted[id]
		return ok, nil
	})
	if err != nil {
		return types.Payload{}, errors.Wrapf(err, "predict %s", id)
	}
	if !trained {
		if _, err := s.Train(ctx, id); err != nil {
			return types.Payload{}, errors.Wrapf(err, "predict %s", id)
		}
	}

	out, err := call(ctx, s, "predict", func() (types.Payload, error) {
		n, err := s.node(id)
		if err != nil {
			return types.Payload{}, err
		}
		fit, ok := s.fitted[id]
		if !ok {
			return types.Payload{}, ErrStaleResult
		}

		q := query
		if q == "" {
			q = n.Config.Input
		} else {
			cfg := n.Config
			cfg.Input = q
			if err := s.graph.UpdateConfig(id, cfg); err != nil {
				return types.Payload{}, err
			}
		}

		p, err := fit.Predict(q)
		if err != nil {
			s.fail(id, err)
			return types.Payload{}, err
		}
		sinks, err := engine.Deliver(s.graph, id, engine.Value(p))
		if err != nil {
			return types.Payload{}, err
		}
		s.logger.Info("prediction published", "node", id, "query", q, "result", p.String(), "sinks", sinks)
		s.record("predict", engine.Report{})
		return p, nil
	})
	return out, errors.Wrapf(err, "predict %s", id)
}
