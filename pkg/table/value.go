package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies what a Value holds
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is a single cell. Strings are kept raw; numeric parsing happens lazily.
type Value struct {
	kind Kind
	s    string
	n    float64
}

// Null is the undefined cell value
var Null = Value{}

// String creates a raw string value
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Number creates a numeric value
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsMissing reports whether the cell counts as a missing value.
func (v Value) IsMissing() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		switch v.s {
		case "", "NA", "NaN":
			return true
		}
	}
	return false
}

// Float returns the numeric reading of the value. Only finite numbers count.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return 0, false
		}
		return v.n, true
	case KindString:
		s := strings.TrimSpace(v.s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		// "NaN" and "Inf" parse, but neither is a usable number
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Same reports whether two cells hold the same thing. Numbers compare by bit
// pattern so a NaN cell equals itself.
func (v Value) Same(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return math.Float64bits(v.n) == math.Float64bits(o.n)
	}
	return true
}

// Text renders the value the way it is compared against user input.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	}
	return ""
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.Text()
}
