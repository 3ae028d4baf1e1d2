package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

func csv(t *testing.T, s string) table.Table {
	t.Helper()
	tbl, err := table.ParseCSVString(s)
	require.NoError(t, err)
	return tbl
}

func TestLinearRegression(t *testing.T) {
	t.Parallel()

	t.Run("Scenario", func(t *testing.T) {
		t.Parallel()
		tbl := table.Table{
			table.RowOf("x", 1, "y", 2),
			table.RowOf("x", 2, "y", 4),
			table.RowOf("x", 3, "y", 6),
		}
		m, err := FitLinear(tbl, "x", "y")
		require.NoError(t, err)
		require.InDelta(t, 2.0, m.Slope, 1e-12)
		require.InDelta(t, 0.0, m.Intercept, 1e-12)
		require.InDelta(t, 8.0, m.Predict(4), 1e-12)
		require.Equal(t, 3, m.Samples)
	})

	t.Run("PredictionsLieOnFittedLine", func(t *testing.T) {
		t.Parallel()
		m, err := FitLinear(csv(t, "x,y\n1,3\n2,2\n4,7\n7,8\n"), "x", "y")
		require.NoError(t, err)
		x1, x2 := -3.0, 11.5
		require.InDelta(t, m.Slope, (m.Predict(x2)-m.Predict(x1))/(x2-x1), 1e-9)
	})

	t.Run("Failures", func(t *testing.T) {
		t.Parallel()
		_, err := FitLinear(csv(t, "x,y\n1,2\n1,3\n"), "x", "y")
		require.ErrorIs(t, err, types.ErrZeroVariance)
		require.True(t, types.IsConfigError(err))

		_, err = FitLinear(csv(t, "x,y\na,b\n"), "x", "y")
		require.ErrorIs(t, err, types.ErrMismatchedData)

		// The unparseable x leaves x shorter than y
		_, err = FitLinear(csv(t, "x,y\n1,3\n2,2\nbad,1\n"), "x", "y")
		require.ErrorIs(t, err, types.ErrMismatchedData)

		_, err = FitLinear(csv(t, "x,y\n1,2\n"), "", "y")
		require.ErrorIs(t, err, types.ErrNoColumns)
	})
}

func TestDecisionTree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("SingleLabelAlwaysWins", func(t *testing.T) {
		t.Parallel()
		tree, err := FitTree(ctx, csv(t, "f,l\n1,yes\n5,yes\n9,yes\n"), []string{"f"}, "l", 0)
		require.NoError(t, err)
		require.True(t, tree.Root.Leaf)
		for _, in := range []string{"-100", "5", "1e9"} {
			require.Equal(t, "yes", tree.Predict(in))
		}
	})

	t.Run("SplitsAtBestMidpoint", func(t *testing.T) {
		t.Parallel()
		tree, err := FitTree(ctx, csv(t, "f,l\n1,a\n2,a\n3,a\n10,b\n11,b\n"), []string{"f"}, "l", 0)
		require.NoError(t, err)
		require.False(t, tree.Root.Leaf)
		require.Equal(t, "f", tree.Root.Feature)
		require.Equal(t, 6.5, tree.Root.Threshold)
		require.Equal(t, "a", tree.Predict("6.5"))
		require.Equal(t, "b", tree.Predict("7"))
		require.Equal(t, 2, tree.Classes)
		require.Equal(t, 1, tree.Depth())
		require.Contains(t, tree.String(), "f <= 6.5")
	})

	t.Run("FeatureExcludedBelowSplit", func(t *testing.T) {
		t.Parallel()
		data := "f,g,l\n1,1,a\n2,9,b\n3,1,a\n10,9,b\n11,1,a\n12,9,b\n"
		tree, err := FitTree(ctx, csv(t, data), []string{"f", "g"}, "l", 0)
		require.NoError(t, err)
		require.Equal(t, "g", tree.Root.Feature)
		require.Equal(t, 5.0, tree.Root.Threshold)
		require.True(t, tree.Root.Left.Leaf)
		require.Equal(t, "a", tree.Predict("2,1"))
		require.Equal(t, "b", tree.Predict("2,9"))
	})

	t.Run("UnparseableQueryIsUnknown", func(t *testing.T) {
		t.Parallel()
		tree, err := FitTree(ctx, csv(t, "f,l\n1,a\n10,b\n"), []string{"f"}, "l", 0)
		require.NoError(t, err)
		require.Equal(t, types.Unknown, tree.Predict("abc"))
		require.Equal(t, types.Unknown, tree.Predict(""))
	})

	t.Run("NoUsableRows", func(t *testing.T) {
		t.Parallel()
		tree, err := FitTree(ctx, csv(t, "f,l\nx,a\n"), []string{"f"}, "l", 0)
		require.NoError(t, err)
		require.Equal(t, types.Unknown, tree.Predict("1"))
	})

	t.Run("Cancelled", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := FitTree(cctx, csv(t, "f,l\n1,a\n10,b\n"), []string{"f"}, "l", 0)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestKMeans(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	data := csv(t, "v\n1\n10\n20\n2\n11\n21\n3\n12\n22\n")

	t.Run("FirstPointsInit", func(t *testing.T) {
		t.Parallel()
		m, err := FitKMeans(ctx, data, "v", 3, InitFirst, 0)
		require.NoError(t, err)
		require.Len(t, m.Centroids, 3)
		require.InDelta(t, 2.0, m.Centroids[0], 1e-9)
		require.InDelta(t, 11.0, m.Centroids[1], 1e-9)
		require.InDelta(t, 21.0, m.Centroids[2], 1e-9)
		require.InDelta(t, 6.0, m.Inertia, 1e-9)
		require.LessOrEqual(t, m.Iterations, KMeansMaxIterations)

		c, centroid := m.Assign(10.4)
		require.Equal(t, 2, c)
		require.InDelta(t, 11.0, centroid, 1e-9)
		require.Equal(t, "Cluster 2 (centroid: 11.00)", m.Describe(10.4))
	})

	t.Run("ConvergedCentroidsAreFixedPoint", func(t *testing.T) {
		t.Parallel()
		m, err := FitKMeans(ctx, data, "v", 3, InitRandom, 42)
		require.NoError(t, err)
		before := make([]int, 0, 9)
		for _, p := range data.Floats("v") {
			before = append(before, nearest(m.Centroids, p))
		}
		// One more update round leaves every assignment unchanged
		sums := make([]float64, 3)
		counts := make([]int, 3)
		for i, p := range data.Floats("v") {
			sums[before[i]] += p
			counts[before[i]]++
		}
		next := append([]float64(nil), m.Centroids...)
		for c := range next {
			if counts[c] > 0 {
				next[c] = sums[c] / float64(counts[c])
			}
		}
		for i, p := range data.Floats("v") {
			require.Equal(t, before[i], nearest(next, p))
		}
	})

	t.Run("SeededInitIsDeterministic", func(t *testing.T) {
		t.Parallel()
		a, err := FitKMeans(ctx, data, "v", 2, InitRandom, 7)
		require.NoError(t, err)
		b, err := FitKMeans(ctx, data, "v", 2, InitRandom, 7)
		require.NoError(t, err)
		require.Equal(t, a.Centroids, b.Centroids)
	})

	t.Run("TieGoesToLowerIndex", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, 0, nearest([]float64{0, 2}, 1))
	})

	t.Run("ConfigErrors", func(t *testing.T) {
		t.Parallel()
		_, err := FitKMeans(ctx, data, "v", 0, InitFirst, 0)
		require.ErrorIs(t, err, types.ErrInvalidK)
		_, err = FitKMeans(ctx, data, "v", 10, InitFirst, 0)
		require.ErrorIs(t, err, types.ErrNotEnoughPoints)
		_, err = FitKMeans(ctx, data, "", 2, InitFirst, 0)
		require.ErrorIs(t, err, types.ErrNoColumns)
	})
}

func TestKNN(t *testing.T) {
	t.Parallel()
	data := csv(t, "f,l\n1,a\n3,b\n5,c\n5,d\nx,e\n9,c\n")

	t.Run("KOneReturnsClosest", func(t *testing.T) {
		t.Parallel()
		got, err := KNN(data, "f", "l", 1, WeightUniform, 2.9)
		require.NoError(t, err)
		require.Equal(t, "b", got)
	})

	t.Run("KOneTieReturnsLowestIndex", func(t *testing.T) {
		t.Parallel()
		got, err := KNN(data, "f", "l", 1, WeightUniform, 5)
		require.NoError(t, err)
		require.Equal(t, "c", got)

		got, err = KNN(data, "f", "l", 1, WeightUniform, 2)
		require.NoError(t, err)
		require.Equal(t, "a", got)
	})

	t.Run("MajorityVote", func(t *testing.T) {
		t.Parallel()
		got, err := KNN(data, "f", "l", 4, WeightUniform, 6)
		require.NoError(t, err)
		// neighbours: 5/c, 5/d, 3/b, 9/c
		require.Equal(t, "c", got)
	})

	t.Run("DistanceWeighting", func(t *testing.T) {
		t.Parallel()
		tbl := csv(t, "f,l\n0,near\n10,far\n11,far\n")
		got, err := KNN(tbl, "f", "l", 3, WeightUniform, 1)
		require.NoError(t, err)
		require.Equal(t, "far", got)
		got, err = KNN(tbl, "f", "l", 3, WeightDistance, 1)
		require.NoError(t, err)
		require.Equal(t, "near", got)
	})

	t.Run("EmptyIsUnknown", func(t *testing.T) {
		t.Parallel()
		got, err := KNN(csv(t, "f,l\nx,a\n"), "f", "l", 3, "", 1)
		require.NoError(t, err)
		require.Equal(t, types.Unknown, got)
	})

	t.Run("InvalidK", func(t *testing.T) {
		t.Parallel()
		_, err := KNN(data, "f", "l", 0, "", 1)
		require.ErrorIs(t, err, types.ErrInvalidK)
	})
}

func TestThreshold(t *testing.T) {
	t.Parallel()

	t.Run("MidpointOfClassMeans", func(t *testing.T) {
		t.Parallel()
		m, err := FitThreshold(csv(t, "f,l\n1,lo\n3,lo\n9,hi\n11,hi\n"), "f", "l", nil)
		require.NoError(t, err)
		require.Equal(t, [2]string{"lo", "hi"}, m.Classes)
		require.Equal(t, 6.0, m.Threshold)
		require.Equal(t, "hi", m.Predict(6))
		require.Equal(t, "lo", m.Predict(5.9))
	})

	t.Run("HigherMeanClassObservedFirst", func(t *testing.T) {
		t.Parallel()
		m, err := FitThreshold(csv(t, "f,l\n10,big\n0,small\n"), "f", "l", nil)
		require.NoError(t, err)
		require.Equal(t, "big", m.Predict(7))
		require.Equal(t, "small", m.Predict(2))
		require.Equal(t, [2]string{"big", "small"}, m.Classes)
		require.Equal(t, "big", m.High)
		require.Equal(t, "small", m.Low)
	})

	t.Run("ManualThreshold", func(t *testing.T) {
		t.Parallel()
		th := 2.0
		m, err := FitThreshold(csv(t, "f,l\n1,lo\n3,lo\n9,hi\n11,hi\n"), "f", "l", &th)
		require.NoError(t, err)
		require.Equal(t, "hi", m.Predict(2.5))
	})

	t.Run("RequiresExactlyTwoClasses", func(t *testing.T) {
		t.Parallel()
		_, err := FitThreshold(csv(t, "f,l\n1,a\n2,b\n3,c\n"), "f", "l", nil)
		require.ErrorIs(t, err, types.ErrClassCount)
		require.True(t, types.IsConfigError(err))

		_, err = FitThreshold(csv(t, "f,l\n1,a\n2,a\n"), "f", "l", nil)
		require.ErrorIs(t, err, types.ErrClassCount)
	})
}

func TestForest(t *testing.T) {
	t.Parallel()

	t.Run("NumericNearestRows", func(t *testing.T) {
		t.Parallel()
		tbl := csv(t, "f,l\n1,a\n2,a\n3,b\n50,b\n51,b\n")
		got, err := Forest(tbl, "f", "l", 3, "2")
		require.NoError(t, err)
		require.Equal(t, "a", got)

		got, err = Forest(tbl, "f", "l", 5, "2")
		require.NoError(t, err)
		require.Equal(t, "b", got)
	})

	t.Run("StringExactMatch", func(t *testing.T) {
		t.Parallel()
		tbl := csv(t, "color,l\nred,x\nblue,y\nred,z\nred,z\n")
		got, err := Forest(tbl, "color", "l", 3, "red")
		require.NoError(t, err)
		require.Equal(t, "z", got)
	})

	t.Run("TieGoesToFirstEncountered", func(t *testing.T) {
		t.Parallel()
		tbl := csv(t, "color,l\nred,x\nred,y\n")
		got, err := Forest(tbl, "color", "l", 3, "red")
		require.NoError(t, err)
		require.Equal(t, "x", got)
	})

	t.Run("NoCandidatesIsUnknown", func(t *testing.T) {
		t.Parallel()
		got, err := Forest(csv(t, "color,l\nred,x\n"), "color", "l", 3, "green")
		require.NoError(t, err)
		require.Equal(t, types.Unknown, got)
	})
}
