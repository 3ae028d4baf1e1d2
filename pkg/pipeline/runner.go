package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/avi3tal/mlcanvas/internal/logging"
	"github.com/avi3tal/mlcanvas/internal/nodes"
	"github.com/avi3tal/mlcanvas/internal/session"
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// StepResult is the outcome of one replayed step
type StepResult struct {
	Step   StepDef
	Result string
	// Structure is the rendering of a freshly trained model, if any
	Structure string
	Err       error
}

// Report collects what a run did and the final state of every node
type Report struct {
	Pipeline string
	Steps    []StepResult
	Views    []session.NodeView
}

// Failed counts the steps that returned an error
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger used for step progress
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithStopOnError makes Run stop at the first failed step
func WithStopOnError() RunnerOption {
	return func(r *Runner) {
		r.stopOnError = true
	}
}

// Runner replays a Definition against a session
type Runner struct {
	session     *session.Session
	logger      *slog.Logger
	stopOnError bool
}

func NewRunner(s *session.Session, opts ...RunnerOption) *Runner {
	r := &Runner{session: s}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.New("pipeline")
	}
	return r
}

// Run loads the topology and data into the session, then runs every step in
// order. Failed steps are reported and, unless WithStopOnError is set, the
// remaining steps still run. The returned error aggregates every failure.
func (r *Runner) Run(ctx context.Context, def *Definition, data table.Table) (*Report, error) {
	ns, es, err := def.Topology()
	if err != nil {
		return nil, err
	}
	if err := r.session.OnTopologyChanged(ctx, ns, es); err != nil {
		return nil, err
	}
	if err := r.session.OnSourceDataChanged(ctx, data); err != nil {
		return nil, err
	}

	report := &Report{Pipeline: def.Name}
	var result *multierror.Error
	for i, step := range def.Steps {
		res := r.step(ctx, step)
		report.Steps = append(report.Steps, res)

		if res.Err != nil {
			r.logger.Warn("step failed", "step", i, "action", step.Action, "node", step.Node, "error", res.Err)
			result = multierror.Append(result, fmt.Errorf("step #%d %s: %w", i, step, res.Err))
			if r.stopOnError || ctx.Err() != nil {
				break
			}
			continue
		}
		r.logger.Info("step done", "step", i, "action", step.Action, "node", step.Node, "result", res.Result)
	}

	views, err := r.session.Views(ctx)
	if err != nil {
		result = multierror.Append(result, err)
	}
	report.Views = views
	return report, result.ErrorOrNil()
}

func (r *Runner) step(ctx context.Context, step StepDef) StepResult {
	res := StepResult{Step: step}
	switch step.Action {
	case ActionApply:
		res.Result, res.Err = r.session.Apply(ctx, step.Node)
	case ActionTrain:
		summary, err := r.session.Train(ctx, step.Node)
		res.Result, res.Structure, res.Err = summary.String(), summary.Structure, err
	case ActionPredict:
		p, err := r.session.Predict(ctx, step.Node, step.Input)
		res.Result, res.Err = p.String(), err
	default:
		res.Err = fmt.Errorf("unknown action %q", step.Action)
	}
	if res.Err != nil {
		res.Result = ""
	}
	return res
}

// LoadData reads the CSV a definition names. A relative path is resolved
// against dir.
func LoadData(def *Definition, dir string) (table.Table, error) {
	if def.Data == "" {
		return nil, nil
	}
	path := def.Data
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data: %w", err)
	}
	defer f.Close()

	op, err := nodes.Lookup(types.SubtypeCSV)
	if err != nil {
		return nil, err
	}
	src, ok := op.(nodes.Source)
	if !ok {
		return nil, fmt.Errorf("%s cannot load data", types.SubtypeCSV)
	}
	return src.Load(f)
}
