package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/avi3tal/mlcanvas/internal/nodes"
	"github.com/avi3tal/mlcanvas/internal/session"
	"github.com/avi3tal/mlcanvas/pkg/pipeline"
)

const maxMessageWidth = 60

func newWriter() table.Writer {
	w := table.NewWriter()
	if !rootFlags.markdown {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(w table.Writer) string {
	if rootFlags.markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// renderViews draws one row per node
func renderViews(views []session.NodeView) string {
	w := newWriter()
	w.AppendHeader(table.Row{"Node", "Kind", "Subtype", "Rows", "Status", "Result", "Message"})
	for _, v := range views {
		result := ""
		if v.Result != nil {
			result = v.Result.String()
		}
		w.AppendRow(table.Row{v.ID, v.Kind, v.Subtype, v.InputRowCount, v.Status, result, v.Message})
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 7, WidthMax: maxMessageWidth},
	})
	return render(w)
}

// renderSteps draws the outcome of every replayed step
func renderSteps(steps []pipeline.StepResult) string {
	w := newWriter()
	w.AppendHeader(table.Row{"#", "Step", "Result"})
	for i, s := range steps {
		result := s.Result
		if s.Err != nil {
			result = "error: " + s.Err.Error()
		}
		w.AppendRow(table.Row{i + 1, s.Step.String(), result})
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: maxMessageWidth},
	})
	return render(w)
}

// renderSchema draws the configuration fields of one subtype
func renderSchema(fields []nodes.Field) string {
	w := newWriter()
	w.AppendHeader(table.Row{"Field", "Type", "Required", "Options", "Help"})
	for _, f := range fields {
		w.AppendRow(table.Row{f.Name, f.Type, f.Required, strings.Join(f.Options, "|"), f.Help})
	}
	return render(w)
}

// renderSubtypes lists every registered subtype with its kind and defaults
func renderSubtypes() (string, error) {
	w := newWriter()
	w.AppendHeader(table.Row{"Subtype", "Kind", "Fields"})
	for _, s := range nodes.Subtypes() {
		op, err := nodes.Lookup(s)
		if err != nil {
			return "", err
		}
		var names []string
		for _, f := range op.Schema() {
			names = append(names, f.Name)
		}
		w.AppendRow(table.Row{s, op.Kind(), strings.Join(names, ", ")})
	}
	w.AppendFooter(table.Row{"", "", fmt.Sprintf("%d subtypes", len(nodes.Subtypes()))})
	return render(w), nil
}
