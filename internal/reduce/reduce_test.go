package reduce

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/drakos74/digits-embed/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// clusters creates n points around each of the given centers.
func clusters(n, dim int, seed int64, centers ...float64) (*mat.Dense, []float64) {
	rnd := rand.New(rand.NewSource(seed))
	data := make([]float64, 0, n*len(centers)*dim)
	labels := make([]float64, 0, n*len(centers))
	for c, center := range centers {
		for i := 0; i < n; i++ {
			for d := 0; d < dim; d++ {
				data = append(data, center+rnd.NormFloat64()*0.1)
			}
			labels = append(labels, float64(c))
		}
	}
	return mat.NewDense(n*len(centers), dim, data), labels
}

// separation counts the points of two clusters that are closer to the centroid of their own cluster.
func separation(e *mat.Dense, labels []float64) int {
	r, c := e.Dims()
	centroids := make([][]float64, 2)
	counts := make([]float64, 2)
	for i := range centroids {
		centroids[i] = make([]float64, c)
	}
	for i := 0; i < r; i++ {
		l := int(labels[i])
		floats.Add(centroids[l], mat.Row(nil, i, e))
		counts[l]++
	}
	for l := range centroids {
		floats.Scale(1/counts[l], centroids[l])
	}
	var separated int
	for i := 0; i < r; i++ {
		l := int(labels[i])
		row := mat.Row(nil, i, e)
		own := floats.Distance(row, centroids[l], 2)
		other := floats.Distance(row, centroids[1-l], 2)
		if own < other {
			separated++
		}
	}
	return separated
}

func TestNew(t *testing.T) {

	type test struct {
		params model.Params
		name   string
		err    error
	}

	tests := map[string]test{
		"pca": {
			params: model.Params{Method: model.PCA, Components: 2},
			name:   "pca",
		},
		"tsne": {
			params: model.Params{Method: model.TSNE, Components: 2},
			name:   "tsne",
		},
		"umap": {
			params: model.Params{Method: model.UMAP, Components: 2, Neighbors: 15},
			name:   "umap",
		},
		"unknown": {
			params: model.Params{Method: "mds", Components: 2},
			err:    model.ErrInvalidParams,
		},
		"no-components": {
			params: model.Params{Method: model.PCA},
			err:    model.ErrInvalidParams,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := New(tt.params)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, r.Name())
		})
	}
}

func TestSweep(t *testing.T) {
	base := model.Params{Method: model.UMAP, Components: 2, Seed: 1}
	neighbors := []int{2, 5, 10, 15, 20, 50, 100, 200, 500}
	pp := Sweep(base, neighbors)
	require.Equal(t, len(neighbors), len(pp))
	for i, p := range pp {
		assert.Equal(t, neighbors[i], p.Neighbors)
		assert.Equal(t, base.Method, p.Method)
		assert.Equal(t, base.Components, p.Components)
	}
	// changing the base afterwards does not affect the sweep
	base.Components = 3
	assert.Equal(t, 2, pp[0].Components)
}

func TestFuncOf(t *testing.T) {
	data, _ := clusters(10, 3, 1, 0, 5)
	p := model.Params{Method: model.PCA, Components: 2}
	f := FuncOf(p)
	// mutating the params after binding must not leak into the function
	p.Components = 3
	e, err := f(context.Background(), data)
	require.NoError(t, err)
	_, c := e.Dims()
	assert.Equal(t, 2, c)
}

func TestPCA(t *testing.T) {
	// points on a tilted plane in 3d
	rnd := rand.New(rand.NewSource(2))
	n := 50
	data := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		u := rnd.Float64() * 10
		v := rnd.Float64()
		data.Set(i, 0, u+v)
		data.Set(i, 1, u-v)
		data.Set(i, 2, 2*v)
	}

	e, err := Embed(context.Background(), model.Params{Method: model.PCA, Components: 2}, data)
	require.NoError(t, err)
	r, c := e.Data.Dims()
	assert.Equal(t, n, r)
	assert.Equal(t, 2, c)

	// a rank 2 set keeps all pairwise distances
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			original := floats.Distance(mat.Row(nil, i, data), mat.Row(nil, j, data), 2)
			projected := floats.Distance(mat.Row(nil, i, e.Data), mat.Row(nil, j, e.Data), 2)
			assert.InDelta(t, original, projected, 1e-6)
		}
	}
}

func TestPCA_TooManyComponents(t *testing.T) {
	data, _ := clusters(5, 2, 1, 0)
	_, err := NewPCA(model.Params{Components: 3}).Embed(context.Background(), data)
	assert.True(t, errors.Is(err, model.ErrInvalidParams))
}

func TestTSNE(t *testing.T) {
	data, labels := clusters(20, 4, 3, 0, 10)
	e, err := Embed(context.Background(), model.Params{Method: model.TSNE, Components: 2, Iterations: 300, Seed: 1}, data)
	require.NoError(t, err)
	r, c := e.Data.Dims()
	require.Equal(t, 40, r)
	require.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		assert.False(t, math.IsNaN(e.Data.At(i, 0)))
		assert.False(t, math.IsNaN(e.Data.At(i, 1)))
	}

	separated := separation(e.Data, labels)
	assert.True(t, separated >= 36, "only %d of %d points are separated", separated, r)
}

func TestTSNE_Cancelled(t *testing.T) {
	data, _ := clusters(10, 4, 3, 0, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTSNE(model.Params{Iterations: 10}).Embed(ctx, data)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUMAP_Separates(t *testing.T) {
	data, labels := clusters(30, 5, 4, 0, 20)
	p := model.Params{Method: model.UMAP, Components: 2, Neighbors: 10, Epochs: 200, Seed: 7}
	e, err := Embed(context.Background(), p, data)
	require.NoError(t, err)

	r, c := e.Data.Dims()
	require.Equal(t, 60, r)
	require.Equal(t, 2, c)

	separated := separation(e.Data, labels)
	assert.True(t, separated >= 54, "only %d of %d points are separated", separated, r)
}

func TestUMAP_Deterministic(t *testing.T) {
	data, _ := clusters(10, 3, 5, 0, 5)
	p := model.Params{Method: model.UMAP, Components: 2, Neighbors: 5, Epochs: 50, Seed: 3}
	first, err := NewUMAP(p).Embed(context.Background(), data)
	require.NoError(t, err)
	second, err := NewUMAP(p).Embed(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, mat.Equal(first, second))
}

func TestUMAP_ClampsNeighbors(t *testing.T) {
	data, _ := clusters(3, 3, 5, 0)
	e, err := NewUMAP(model.Params{Components: 2, Neighbors: 500, Epochs: 10}).Embed(context.Background(), data)
	require.NoError(t, err)
	r, _ := e.Dims()
	assert.Equal(t, 3, r)

	_, err = NewUMAP(model.Params{Components: 2, Neighbors: 5}).Embed(context.Background(), mat.NewDense(1, 3, nil))
	assert.Error(t, err)
}

func TestNearestNeighbors(t *testing.T) {
	data := mat.NewDense(4, 1, []float64{0, 1, 3, 10})
	indices, distances := nearestNeighbors(data, 2)
	assert.Equal(t, [][]int{{1, 2}, {0, 2}, {1, 0}, {2, 1}}, indices)
	assert.Equal(t, [][]float64{{1, 3}, {1, 2}, {2, 3}, {7, 9}}, distances)
}

func TestSmoothDistances(t *testing.T) {
	distances := [][]float64{{1, 2, 3, 4}, {0.5, 0.6, 2, 8}}
	rhos, sigmas := smoothDistances(distances)
	for i, dd := range distances {
		assert.Equal(t, dd[0], rhos[i])
		var psum float64
		for _, d := range dd {
			psum += math.Exp(-math.Max(0, d-rhos[i]) / sigmas[i])
		}
		assert.InDelta(t, math.Log2(4), psum, 1e-3)
	}
}

func TestFuzzyGraph(t *testing.T) {
	data := mat.NewDense(4, 1, []float64{0, 1, 3, 10})
	indices, distances := nearestNeighbors(data, 2)
	edges := fuzzyGraph(indices, distances, 100)
	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.True(t, e.head < e.tail)
		assert.True(t, e.weight > 0 && e.weight <= 1)
	}
}

func TestFitCurve(t *testing.T) {
	a, b, err := fitCurve(1, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 1.58, a, 0.1)
	assert.InDelta(t, 0.9, b, 0.05)
}
