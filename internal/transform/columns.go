package transform

import (
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// checkColumns validates a column selection against the table headers.
func checkColumns(op string, t table.Table, cols []string) error {
	if len(cols) == 0 {
		return types.NewConfigError(op, "columns", types.ErrNoColumns)
	}
	if t.Empty() {
		return nil
	}
	for _, c := range cols {
		if !t.HasColumn(c) {
			return types.NewConfigError(op, c, types.ErrUnknownColumn)
		}
	}
	return nil
}
