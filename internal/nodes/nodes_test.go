package nodes

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

func mustCSV(t *testing.T, s string) table.Table {
	t.Helper()
	tbl, err := table.ParseCSVString(s)
	require.NoError(t, err)
	return tbl
}

func train(t *testing.T, subtype types.Subtype, in table.Table, cfg types.Config) Trained {
	t.Helper()
	m, err := ModelFor(subtype)
	require.NoError(t, err)
	fit, err := m.Train(context.Background(), in, cfg)
	require.NoError(t, err)
	return fit
}

func predict(t *testing.T, fit Trained, q string) types.Payload {
	t.Helper()
	p, err := fit.Predict(q)
	require.NoError(t, err)
	return p
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("EverySubtypeRegistered", func(t *testing.T) {
		t.Parallel()
		require.Len(t, Subtypes(), 11)
		for _, s := range Subtypes() {
			op, err := Lookup(s)
			require.NoError(t, err)
			require.Equal(t, s, op.Subtype())
		}
	})

	t.Run("KindDispatch", func(t *testing.T) {
		t.Parallel()
		kinds := map[types.Subtype]types.NodeKind{
			types.SubtypeCSV:          types.KindSource,
			types.SubtypeImpute:       types.KindPreprocessor,
			types.SubtypeNormalize:    types.KindPreprocessor,
			types.SubtypeEncode:       types.KindPreprocessor,
			types.SubtypeRegression:   types.KindModel,
			types.SubtypeDecisionTree: types.KindModel,
			types.SubtypeKMeans:       types.KindModel,
			types.SubtypeKNN:          types.KindModel,
			types.SubtypeThreshold:    types.KindModel,
			types.SubtypeForest:       types.KindModel,
			types.SubtypeOutput:       types.KindSink,
		}
		for s, k := range kinds {
			op, err := Lookup(s)
			require.NoError(t, err)
			require.Equal(t, k, op.Kind(), s)

			_, isPre := op.(Preprocessor)
			_, isModel := op.(Model)
			require.Equal(t, k == types.KindPreprocessor, isPre, s)
			require.Equal(t, k == types.KindModel, isModel, s)
		}
		_, ok := registry[types.SubtypeCSV].(Source)
		require.True(t, ok)
	})

	t.Run("UnknownSubtype", func(t *testing.T) {
		t.Parallel()
		_, err := Lookup("svm")
		require.ErrorIs(t, err, ErrUnknownSubtype)
		_, err = Schema("svm")
		require.ErrorIs(t, err, ErrUnknownSubtype)
		_, err = ModelFor(types.SubtypeImpute)
		require.ErrorIs(t, err, ErrNotModel)
		_, err = PreprocessorFor(types.SubtypeKNN)
		require.ErrorIs(t, err, ErrNotPreprocessor)
	})

	t.Run("NewNodeDefaults", func(t *testing.T) {
		t.Parallel()
		n, err := NewNode("km", types.SubtypeKMeans)
		require.NoError(t, err)
		require.Equal(t, types.KindModel, n.Kind)
		require.Equal(t, 3, n.Config.K)
		require.Equal(t, types.StatusIdle, n.Status)
		require.Nil(t, n.CachedResult)

		n, err = NewNode("", types.SubtypeForest)
		require.NoError(t, err)
		require.NotEmpty(t, n.ID)
		require.Equal(t, 5, n.Config.Trees)
	})

	t.Run("DefaultsAreCopies", func(t *testing.T) {
		t.Parallel()
		op, _ := Lookup(types.SubtypeImpute)
		cfg := op.Defaults()
		cfg.Strategy = "median"
		require.Equal(t, "mean", op.Defaults().Strategy)
	})

	t.Run("Schema", func(t *testing.T) {
		t.Parallel()
		fields, err := Schema(types.SubtypeKNN)
		require.NoError(t, err)
		var names []string
		for _, f := range fields {
			names = append(names, f.Name)
		}
		require.Equal(t, []string{"features", "label", "k", "weighting", "input"}, names)

		fields, err = Schema(types.SubtypeOutput)
		require.NoError(t, err)
		require.Empty(t, fields)
	})
}

func TestSource(t *testing.T) {
	t.Parallel()
	op, _ := Lookup(types.SubtypeCSV)
	tbl, err := op.(Source).Load(strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, tbl.Headers())
}

func TestPreprocessors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	in := mustCSV(t, "a,c\n1,red\n,blue\n3,red\n")

	t.Run("Impute", func(t *testing.T) {
		t.Parallel()
		p, err := PreprocessorFor(types.SubtypeImpute)
		require.NoError(t, err)
		out, err := p.Apply(ctx, in, types.Config{Columns: []string{"a"}, Strategy: "remove"})
		require.NoError(t, err)
		require.Equal(t, 2, out.Output.Len())
		require.Contains(t, out.Summary, "2 of 3 rows kept")
		require.Equal(t, 3, in.Len(), "input untouched")
	})

	t.Run("Normalize", func(t *testing.T) {
		t.Parallel()
		p, err := PreprocessorFor(types.SubtypeNormalize)
		require.NoError(t, err)
		out, err := p.Apply(ctx, in, types.Config{Columns: []string{"a"}, Strategy: "minmax"})
		require.NoError(t, err)
		require.Equal(t, []float64{0, 1}, out.Output.Floats("a"))
	})

	t.Run("Encode", func(t *testing.T) {
		t.Parallel()
		p, err := PreprocessorFor(types.SubtypeEncode)
		require.NoError(t, err)
		out, err := p.Apply(ctx, in, types.Config{Columns: []string{"c"}})
		require.NoError(t, err)
		require.Equal(t, []float64{0, 1, 0}, out.Output.Floats("c"))
		require.Equal(t, "c: red=0 blue=1", out.Summary)
	})

	t.Run("ConfigErrors", func(t *testing.T) {
		t.Parallel()
		p, _ := PreprocessorFor(types.SubtypeImpute)
		_, err := p.Apply(ctx, in, types.Config{Strategy: "mean"})
		require.ErrorIs(t, err, types.ErrNoColumns)
		require.True(t, types.IsConfigError(err))

		_, err = p.Apply(ctx, nil, types.Config{Columns: []string{"a"}, Strategy: "mean"})
		require.ErrorIs(t, err, types.ErrEmptyInput)
	})

	t.Run("Cancelled", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p, _ := PreprocessorFor(types.SubtypeEncode)
		_, err := p.Apply(cctx, in, types.Config{Columns: []string{"c"}})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestModels(t *testing.T) {
	t.Parallel()

	t.Run("Regression", func(t *testing.T) {
		t.Parallel()
		fit := train(t, types.SubtypeRegression, mustCSV(t, "x,y\n1,2\n2,4\n3,6\n"),
			types.Config{Features: []string{"x"}, Label: "y"})
		require.Equal(t, 8.0, predict(t, fit, "4").Number())
		require.Equal(t, "samples=3 slope=2 intercept=0", fit.Summary().String())

		_, err := fit.Predict("abc")
		require.ErrorIs(t, err, types.ErrInvalidQuery)
	})

	t.Run("DecisionTree", func(t *testing.T) {
		t.Parallel()
		fit := train(t, types.SubtypeDecisionTree, mustCSV(t, "f,l\n1,a\n2,a\n8,b\n9,b\n"),
			types.Config{Features: []string{"f"}, Label: "l"})
		require.Equal(t, "a", predict(t, fit, "1.5").String())
		require.Equal(t, "b", predict(t, fit, "10").String())
		require.Equal(t, types.Unknown, predict(t, fit, "").String())
		require.Equal(t, 2, fit.Summary().Classes)
		require.Equal(t, 4, fit.Summary().Samples)
	})

	t.Run("KMeans", func(t *testing.T) {
		t.Parallel()
		fit := train(t, types.SubtypeKMeans, mustCSV(t, "v\n1\n10\n20\n2\n11\n21\n3\n12\n22\n"),
			types.Config{Features: []string{"v"}, K: 3, Init: "first"})
		require.Equal(t, "Cluster 2 (centroid: 11.00)", predict(t, fit, "10").String())
		require.Equal(t, types.Unknown, predict(t, fit, "x").String())
		require.Contains(t, fit.Summary().Details, "centroids=[2.00 11.00 21.00]")
	})

	t.Run("KNN", func(t *testing.T) {
		t.Parallel()
		fit := train(t, types.SubtypeKNN, mustCSV(t, "f,l\n1,a\n2,a\n3,b\n10,b\n"),
			types.Config{Features: []string{"f"}, Label: "l", K: 1, Weighting: "uniform"})
		require.Equal(t, "b", predict(t, fit, "9").String())
		require.Equal(t, "a", predict(t, fit, "1.4").String())
		require.Equal(t, Summary{Samples: 4, Classes: 2, Details: "k=1"}, fit.Summary())

		m, _ := ModelFor(types.SubtypeKNN)
		_, err := m.Train(context.Background(), mustCSV(t, "f,l\n1,a\n"),
			types.Config{Features: []string{"f"}, Label: "l", K: 0})
		require.ErrorIs(t, err, types.ErrInvalidK)
	})

	t.Run("Threshold", func(t *testing.T) {
		t.Parallel()
		in := mustCSV(t, "f,l\n1,neg\n3,neg\n7,pos\n9,pos\n")
		fit := train(t, types.SubtypeThreshold, in, types.Config{Features: []string{"f"}, Label: "l"})
		require.Equal(t, "pos", predict(t, fit, "5").String())
		require.Equal(t, "neg", predict(t, fit, "4.9").String())

		manual := 8.0
		fit = train(t, types.SubtypeThreshold, in, types.Config{Features: []string{"f"}, Label: "l", Threshold: &manual})
		require.Equal(t, "neg", predict(t, fit, "7").String())

		m, _ := ModelFor(types.SubtypeThreshold)
		_, err := m.Train(context.Background(), mustCSV(t, "f,l\n1,a\n2,b\n3,c\n"),
			types.Config{Features: []string{"f"}, Label: "l"})
		require.ErrorIs(t, err, types.ErrClassCount)
	})

	t.Run("Forest", func(t *testing.T) {
		t.Parallel()
		fit := train(t, types.SubtypeForest, mustCSV(t, "f,l\n1,a\n2,a\n3,b\n20,b\n21,b\n"),
			types.Config{Features: []string{"f"}, Label: "l", Trees: 3})
		require.Equal(t, "a", predict(t, fit, "1").String())
		require.Equal(t, "b", predict(t, fit, "19").String())

		words := train(t, types.SubtypeForest, mustCSV(t, "f,l\nsun,hot\nsun,hot\nrain,cold\n"),
			types.Config{Features: []string{"f"}, Label: "l", Trees: 3})
		require.Equal(t, "hot", predict(t, words, "sun").String())
		require.Equal(t, types.Unknown, predict(t, words, "snow").String())
	})

	t.Run("EmptyInput", func(t *testing.T) {
		t.Parallel()
		for _, s := range []types.Subtype{
			types.SubtypeRegression, types.SubtypeDecisionTree, types.SubtypeKMeans,
			types.SubtypeKNN, types.SubtypeThreshold, types.SubtypeForest,
		} {
			m, err := ModelFor(s)
			require.NoError(t, err)
			_, err = m.Train(context.Background(), nil, m.Defaults())
			require.ErrorIs(t, err, types.ErrEmptyInput, s)
			require.True(t, types.IsConfigError(err), s)
		}
	})
}
