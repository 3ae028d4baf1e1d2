package nodes

import (
	"io"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Source loads the external table a source node supplies
type Source interface {
	Operator
	Load(r io.Reader) (table.Table, error)
}

type csvSource struct{ base }

func newCSVSource() *csvSource {
	return &csvSource{base{
		kind:    types.KindSource,
		subtype: types.SubtypeCSV,
	}}
}

func (s *csvSource) Load(r io.Reader) (table.Table, error) {
	return table.ParseCSV(r)
}

// outputSink only displays; publishing is routed by the engine
type outputSink struct{ base }

func newOutputSink() *outputSink {
	return &outputSink{base{
		kind:    types.KindSink,
		subtype: types.SubtypeOutput,
	}}
}
