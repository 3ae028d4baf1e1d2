package transform

import (
	"github.com/avi3tal/mlcanvas/pkg/table"
)

// Encoding is the value-to-code mapping built for each encoded column.
type Encoding map[string]ColumnCodes

// ColumnCodes maps each distinct value to its code; Order lists values by code.
type ColumnCodes struct {
	Codes map[string]int
	Order []string
}

// Encode replaces each distinct value of the selected columns with an integer
// assigned in first-seen order starting at 0. The mapping is rebuilt on every call.
func Encode(t table.Table, cols []string) (table.Table, Encoding, error) {
	if err := checkColumns("encode", t, cols); err != nil {
		return nil, nil, err
	}

	enc := make(Encoding, len(cols))
	for _, c := range cols {
		enc[c] = ColumnCodes{Codes: make(map[string]int)}
	}

	out := t.Clone()
	for i := range out {
		for _, c := range cols {
			if !out[i].Has(c) {
				continue
			}
			key := out[i].Get(c).Text()
			cc := enc[c]
			code, ok := cc.Codes[key]
			if !ok {
				code = len(cc.Order)
				cc.Codes[key] = code
				cc.Order = append(cc.Order, key)
				enc[c] = cc
			}
			out[i].Set(c, table.Number(float64(code)))
		}
	}
	return out, enc, nil
}
