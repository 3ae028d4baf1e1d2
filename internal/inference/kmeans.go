package inference

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/avi3tal/mlcanvas/pkg/table"
	"github.com/avi3tal/mlcanvas/pkg/types"
)

// Centroid initializations
const (
	InitFirst  = "first"
	InitRandom = "random"
)

const (
	KMeansMaxIterations = 100
	KMeansTolerance     = 1e-4
)

// KMeans is a fitted one dimensional clustering
type KMeans struct {
	Feature    string
	Centroids  []float64
	Iterations int
	Inertia    float64
	Samples    int
}

// FitKMeans clusters the parseable values of one column into k groups.
func FitKMeans(ctx context.Context, t table.Table, feature string, k int, init string, seed uint64) (*KMeans, error) {
	if feature == "" {
		return nil, types.NewConfigError("kmeans", "feature", types.ErrNoColumns)
	}
	if k < 1 {
		return nil, types.NewConfigError("kmeans", "k", types.ErrInvalidK)
	}

	points := t.Floats(feature)
	if len(points) < k {
		return nil, types.NewConfigError("kmeans", "k",
			fmt.Errorf("%w: need at least %d, have %d", types.ErrNotEnoughPoints, k, len(points)))
	}

	var centroids []float64
	switch init {
	case "", InitFirst:
		centroids = append([]float64(nil), points[:k]...)
	case InitRandom:
		lo, hi := floats.Min(points), floats.Max(points)
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		centroids = make([]float64, k)
		for i := range centroids {
			centroids[i] = lo + rng.Float64()*(hi-lo)
		}
	default:
		return nil, types.NewConfigError("kmeans", "init", types.ErrUnknownStrategy)
	}

	assign := make([]int, len(points))
	iterations := 0
	for iterations < KMeansMaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations++

		for i, p := range points {
			assign[i] = nearest(centroids, p)
		}

		sums := make([]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			sums[assign[i]] += p
			counts[assign[i]]++
		}

		converged := true
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			next := sums[c] / float64(counts[c])
			if math.Abs(next-centroids[c]) >= KMeansTolerance {
				converged = false
			}
			centroids[c] = next
		}
		if converged {
			break
		}
	}

	var inertia float64
	for _, p := range points {
		d := p - centroids[nearest(centroids, p)]
		inertia += d * d
	}

	return &KMeans{
		Feature:    feature,
		Centroids:  centroids,
		Iterations: iterations,
		Inertia:    inertia,
		Samples:    len(points),
	}, nil
}

// nearest returns the index of the closest centroid; ties go to the lower index.
func nearest(centroids []float64, p float64) int {
	best := 0
	for i := 1; i < len(centroids); i++ {
		if math.Abs(p-centroids[i]) < math.Abs(p-centroids[best]) {
			best = i
		}
	}
	return best
}

// Assign returns the 1-based cluster of x and its centroid
func (m *KMeans) Assign(x float64) (int, float64) {
	i := nearest(m.Centroids, x)
	return i + 1, m.Centroids[i]
}

// Describe renders an assignment the way it is shown on a sink
func (m *KMeans) Describe(x float64) string {
	c, centroid := m.Assign(x)
	return fmt.Sprintf("Cluster %d (centroid: %.2f)", c, centroid)
}
