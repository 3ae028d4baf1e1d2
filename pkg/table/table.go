package table

// Row maps column names to values. Column order is insertion order.
type Row struct {
	keys  []string
	cells map[string]Value
}

// NewRow zips values positionally against keys. Missing trailing values stay undefined.
func NewRow(keys []string, values []Value) Row {
	r := Row{cells: make(map[string]Value, len(keys))}
	for i, k := range keys {
		if i >= len(values) {
			break
		}
		r.Set(k, values[i])
	}
	return r
}

// RowOf builds a row from alternating key/value pairs; values may be string, float64 or int.
func RowOf(pairs ...any) Row {
	r := Row{cells: make(map[string]Value, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		k, _ := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case Value:
			r.Set(k, v)
		case string:
			r.Set(k, String(v))
		case float64:
			r.Set(k, Number(v))
		case int:
			r.Set(k, Number(float64(v)))
		default:
			r.Set(k, Null)
		}
	}
	return r
}

// Keys returns the column names in order
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the cell value or Null when the column is absent
func (r Row) Get(key string) Value {
	if r.cells == nil {
		return Null
	}
	return r.cells[key]
}

// Has reports whether the column is present on this row
func (r Row) Has(key string) bool {
	_, ok := r.cells[key]
	return ok
}

// Set writes a cell, appending the column if it is new.
func (r *Row) Set(key string, v Value) {
	if r.cells == nil {
		r.cells = make(map[string]Value)
	}
	if _, ok := r.cells[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.cells[key] = v
}

func (r Row) Len() int {
	return len(r.keys)
}

// Clone returns a deep copy of the row
func (r Row) Clone() Row {
	c := Row{
		keys:  make([]string, len(r.keys)),
		cells: make(map[string]Value, len(r.cells)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.cells {
		c.cells[k] = v
	}
	return c
}

// Table is an ordered sequence of rows.
type Table []Row

// Headers returns the canonical header set, defined by the first row.
func (t Table) Headers() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0].Keys()
}

// HasColumn reports whether the first row defines the column
func (t Table) HasColumn(name string) bool {
	if len(t) == 0 {
		return false
	}
	return t[0].Has(name)
}

func (t Table) Len() int {
	return len(t)
}

func (t Table) Empty() bool {
	return len(t) == 0
}

// Clone deep-copies every row
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, r := range t {
		out[i] = r.Clone()
	}
	return out
}

// Column returns every row's value for the column
func (t Table) Column(name string) []Value {
	out := make([]Value, len(t))
	for i, r := range t {
		out[i] = r.Get(name)
	}
	return out
}

// Floats returns the parseable numeric values of a column, skipping the rest.
func (t Table) Floats(name string) []float64 {
	out := make([]float64, 0, len(t))
	for _, r := range t {
		if f, ok := r.Get(name).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Equal compares two tables cell by cell including column order
func (t Table) Equal(o Table) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		a, b := t[i], o[i]
		if len(a.keys) != len(b.keys) {
			return false
		}
		for j, k := range a.keys {
			if b.keys[j] != k || !a.cells[k].Same(b.cells[k]) {
				return false
			}
		}
	}
	return true
}
