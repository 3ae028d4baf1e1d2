package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/avi3tal/mlcanvas/internal/transform"
	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

var columnsField = Field{Name: "columns", Type: FieldColumns, Required: true, Help: "columns to transform"}

type impute struct{ base }

func newImpute() *impute {
	return &impute{base{
		kind:     types.KindPreprocessor,
		subtype:  types.SubtypeImpute,
		defaults: types.Config{Strategy: transform.ImputeMean},
		schema: []Field{
			columnsField,
			{
				Name:     "strategy",
				Type:     FieldChoice,
				Options:  []string{transform.ImputeMean, transform.ImputeMedian, transform.ImputeRemove},
				Required: true,
			},
		},
	}}
}

func (p *impute) Apply(ctx context.Context, in table.Table, cfg types.Config) (Applied, error) {
	if err := ctx.Err(); err != nil {
		return Applied{}, err
	}
	if err := requireInput("impute", in); err != nil {
		return Applied{}, err
	}
	out, err := transform.Impute(in, cfg.Columns, cfg.Strategy)
	if err != nil {
		return Applied{}, err
	}
	return Applied{
		Output:  out,
		Summary: fmt.Sprintf("%s imputation on %s: %d of %d rows kept", cfg.Strategy, strings.Join(cfg.Columns, ", "), out.Len(), in.Len()),
	}, nil
}

type normalize struct{ base }

func newNormalize() *normalize {
	return &normalize{base{
		kind:     types.KindPreprocessor,
		subtype:  types.SubtypeNormalize,
		defaults: types.Config{Strategy: transform.NormalizeMinMax},
		schema: []Field{
			columnsField,
			{
				Name:     "strategy",
				Type:     FieldChoice,
				Options:  []string{transform.NormalizeMinMax, transform.NormalizeZScore},
				Required: true,
			},
		},
	}}
}

func (p *normalize) Apply(ctx context.Context, in table.Table, cfg types.Config) (Applied, error) {
	if err := ctx.Err(); err != nil {
		return Applied{}, err
	}
	if err := requireInput("normalize", in); err != nil {
		return Applied{}, err
	}
	out, err := transform.Normalize(in, cfg.Columns, cfg.Strategy)
	if err != nil {
		return Applied{}, err
	}
	return Applied{
		Output:  out,
		Summary: fmt.Sprintf("%s normalization on %s", cfg.Strategy, strings.Join(cfg.Columns, ", ")),
	}, nil
}

type encode struct{ base }

func newEncode() *encode {
	return &encode{base{
		kind:    types.KindPreprocessor,
		subtype: types.SubtypeEncode,
		schema:  []Field{columnsField},
	}}
}

func (p *encode) Apply(ctx context.Context, in table.Table, cfg types.Config) (Applied, error) {
	if err := ctx.Err(); err != nil {
		return Applied{}, err
	}
	if err := requireInput("encode", in); err != nil {
		return Applied{}, err
	}
	out, enc, err := transform.Encode(in, cfg.Columns)
	if err != nil {
		return Applied{}, err
	}
	return Applied{Output: out, Summary: describeEncoding(cfg.Columns, enc)}, nil
}

// describeEncoding renders "col: a=0 b=1; other: x=0"
func describeEncoding(cols []string, enc transform.Encoding) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		codes := enc[c]
		pairs := make([]string, len(codes.Order))
		for i, v := range codes.Order {
			pairs[i] = fmt.Sprintf("%s=%d", v, i)
		}
		parts = append(parts, c+": "+strings.Join(pairs, " "))
	}
	return strings.Join(parts, "; ")
}
