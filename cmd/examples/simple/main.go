package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/avi3tal/mlcanvas/internal/logging"
	"github.com/avi3tal/mlcanvas/internal/session"
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

const data = `hours,score
1,52
2,58
3,
4,71
5,77
6,83
`

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := logging.Init(slog.LevelDebug, logging.FormatText, os.Stderr); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	s := session.New(ctx, session.WithName("study-hours"), session.WithDebug())
	defer s.Close()

	// Add nodes
	for id, subtype := range map[string]types.Subtype{
		"source": types.SubtypeCSV,
		"fill":   types.SubtypeImpute,
		"fit":    types.SubtypeRegression,
		"result": types.SubtypeOutput,
	} {
		if _, err := s.AddNode(ctx, id, subtype); err != nil {
			log.Fatalf("Failed to add %s node: %v", id, err)
		}
	}

	// Add edges
	for _, e := range [][2]string{{"source", "fill"}, {"fill", "fit"}, {"fit", "result"}} {
		if _, err := s.Connect(ctx, e[0], e[1]); err != nil {
			log.Fatalf("Failed to connect %s->%s: %v", e[0], e[1], err)
		}
	}

	// Configure
	err := s.UpdateConfig(ctx, "fill", types.Config{Columns: []string{"score"}, Strategy: "remove"})
	if err != nil {
		log.Fatalf("Failed to configure fill: %v", err)
	}
	err = s.UpdateConfig(ctx, "fit", types.Config{Features: []string{"hours"}, Label: "score"})
	if err != nil {
		log.Fatalf("Failed to configure fit: %v", err)
	}

	// Upload data
	tbl, err := table.ParseCSVString(data)
	if err != nil {
		log.Fatalf("Failed to parse data: %v", err)
	}
	if err := s.OnSourceDataChanged(ctx, tbl); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	summary, err := s.Apply(ctx, "fill")
	if err != nil {
		log.Fatalf("Failed to apply fill: %v", err)
	}
	fmt.Printf("Preprocessing: %s\n", summary)

	start := time.Now()
	prediction, err := s.Predict(ctx, "fit", "7")
	if err != nil {
		log.Fatalf("Failed to predict: %v", err)
	}
	fmt.Printf("Predicted score for 7 hours: %.1f\n", prediction.Number())
	fmt.Printf("Prediction time: %v\n", time.Since(start))

	view, err := s.GetNodeView(ctx, "result")
	if err != nil {
		log.Fatalf("Failed to read result: %v", err)
	}
	fmt.Printf("Sink %s shows %s (%s)\n", view.ID, view.Result, view.Status)

	g, err := s.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to snapshot: %v", err)
	}
	g.PrintGraph(os.Stdout)

	// Expected: the 5 complete rows fit score ~ 6.24*hours + 45.7, so 7 -> ~89.4
}
