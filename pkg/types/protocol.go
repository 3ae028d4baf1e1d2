package types

import (
	"encoding/json"
	"strconv"
)

// NodeKind is the role a node plays in the pipeline
type NodeKind string

const (
	KindSource       NodeKind = "source"
	KindPreprocessor NodeKind = "preprocessor"
	KindModel        NodeKind = "model"
	KindSink         NodeKind = "sink"
)

// Subtype is the concrete algorithm tag of a node
type Subtype string

const (
	SubtypeCSV Subtype = "csv"

	SubtypeImpute    Subtype = "impute"
	SubtypeNormalize Subtype = "normalize"
	SubtypeEncode    Subtype = "encode"

	SubtypeRegression   Subtype = "regression"
	SubtypeDecisionTree Subtype = "decision_tree"
	SubtypeKMeans       Subtype = "kmeans"
	SubtypeKNN          Subtype = "knn"
	SubtypeThreshold    Subtype = "threshold"
	SubtypeForest       Subtype = "forest"

	SubtypeOutput Subtype = "output"
)

// Unknown is the label reported when a classifier has nothing to vote on
const Unknown = "Unknown"

// Payload is the value a model hands to its sinks: a number or a string.
type Payload struct {
	num    float64
	text   string
	number bool
}

func NumberPayload(n float64) Payload {
	return Payload{num: n, number: true}
}

func TextPayload(s string) Payload {
	return Payload{text: s}
}

func (p Payload) IsNumber() bool {
	return p.number
}

func (p Payload) Number() float64 {
	return p.num
}

func (p Payload) String() string {
	if p.number {
		return strconv.FormatFloat(p.num, 'f', -1, 64)
	}
	return p.text
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if p.number {
		return json.Marshal(p.num)
	}
	return json.Marshal(p.text)
}
