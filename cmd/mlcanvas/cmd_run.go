package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avi3tal/mlcanvas/internal/logging"
	"github.com/avi3tal/mlcanvas/internal/session"
	"github.com/avi3tal/mlcanvas/internal/snapshots"
	"github.com/avi3tal/mlcanvas/pkg/pipeline"
	"github.com/avi3tal/mlcanvas/pkg/table"
)

var runFlags struct {
	pipeline    string
	data        string
	graph       bool
	inspect     bool
	history     int
	workers     int
	stopOnError bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a pipeline definition against a CSV file",
	RunE:  runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.pipeline, "pipeline", "p", "", "Pipeline definition YAML (required)")
	f.StringVarP(&runFlags.data, "data", "d", "", "CSV data; overrides the file named in the pipeline")
	f.BoolVar(&runFlags.graph, "graph", false, "Print the final graph")
	f.BoolVar(&runFlags.inspect, "inspect", false, "Print the structure of trained models")
	f.IntVar(&runFlags.history, "history", 0, "Keep up to N snapshots and report how many passes ran")
	f.IntVar(&runFlags.workers, "workers", 4, "Concurrent train and apply tasks")
	f.BoolVar(&runFlags.stopOnError, "stop-on-error", false, "Stop at the first failed step")

	_ = runCmd.MarkFlagRequired("pipeline")
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	def, err := pipeline.LoadFile(runFlags.pipeline)
	if err != nil {
		return fmt.Errorf("load pipeline: %w", err)
	}
	data, err := loadData(def)
	if err != nil {
		return err
	}

	opts := []session.Option{
		session.WithName(def.Name),
		session.WithWorkers(runFlags.workers),
		session.WithLogger(logging.New("session")),
	}
	var store snapshots.Store
	if runFlags.history > 0 {
		store = snapshots.NewMemoryStore(runFlags.history)
		opts = append(opts, session.WithHistory(store))
	}
	if slog.Default().Enabled(cmd.Context(), slog.LevelDebug) {
		opts = append(opts, session.WithDebug())
	}

	ctx := cmd.Context()
	s := session.New(ctx, opts...)
	defer s.Close()

	var runOpts []pipeline.RunnerOption
	if runFlags.stopOnError {
		runOpts = append(runOpts, pipeline.WithStopOnError())
	}
	report, runErr := pipeline.NewRunner(s, runOpts...).Run(ctx, def, data)
	if report == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pipeline: %s\n", report.Pipeline)
	if len(report.Steps) > 0 {
		fmt.Fprintln(out, renderSteps(report.Steps))
	}
	fmt.Fprintln(out, renderViews(report.Views))

	if runFlags.inspect {
		for _, st := range report.Steps {
			if st.Structure != "" {
				fmt.Fprintf(out, "\n%s:\n%s", st.Step.Node, st.Structure)
			}
		}
	}

	if runFlags.graph {
		g, err := s.Snapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		g.PrintGraph(out)
	}
	if store != nil {
		keys, err := s.History(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Snapshots kept: %d\n", len(keys))
	}

	if runErr != nil {
		return fmt.Errorf("%d of %d steps failed: %w", report.Failed(), len(report.Steps), runErr)
	}
	return nil
}

// loadData prefers --data over the file the pipeline names
func loadData(def *pipeline.Definition) (table.Table, error) {
	if runFlags.data != "" {
		abs, err := filepath.Abs(runFlags.data)
		if err != nil {
			return nil, err
		}
		return pipeline.LoadData(&pipeline.Definition{Data: abs}, "")
	}
	data, err := pipeline.LoadData(def, filepath.Dir(runFlags.pipeline))
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	return data, nil
}
