package reduce

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/drakos74/digits-embed/internal/model"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	defaultMinDist      = 0.1
	defaultSpread       = 1.0
	defaultLearningRate = 1.0

	negativeSampleRate = 5
	smoothKIterations  = 64
	smoothKTolerance   = 1e-5
	minScaleDistance   = 1e-3
	gradientClip       = 4.0
	initRange          = 10.0
)

// UMAP embeds the data with uniform manifold approximation and projection.
type UMAP struct {
	neighbors    int
	components   int
	minDist      float64
	spread       float64
	epochs       int
	learningRate float64
	seed         int64
}

// NewUMAP creates a new UMAP reducer.
func NewUMAP(p model.Params) *UMAP {
	u := &UMAP{
		neighbors:    p.Neighbors,
		components:   p.Components,
		minDist:      p.MinDist,
		spread:       p.Spread,
		epochs:       p.Epochs,
		learningRate: p.LearningRate,
		seed:         p.Seed,
	}
	if u.spread <= 0 {
		u.spread = defaultSpread
	}
	if u.minDist <= 0 {
		u.minDist = defaultMinDist
	}
	if u.learningRate <= 0 {
		u.learningRate = defaultLearningRate
	}
	return u
}

func (u *UMAP) Name() string {
	return string(model.UMAP)
}

// edge is a weighted edge of the fuzzy neighbour graph.
type edge struct {
	head, tail int
	weight     float64
}

func (u *UMAP) Embed(ctx context.Context, data *mat.Dense) (*mat.Dense, error) {
	n, _ := data.Dims()
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 samples but got %d", n)
	}

	k := u.neighbors
	if k > n-1 {
		log.Warn().
			Int("neighbors", k).
			Int("samples", n).
			Msg("too few samples for neighbours, clamping")
		k = n - 1
	}

	epochs := u.epochs
	if epochs <= 0 {
		epochs = 500
		if n > 10000 {
			epochs = 200
		}
	}

	indices, distances := nearestNeighbors(data, k)
	edges := fuzzyGraph(indices, distances, epochs)
	a, b, err := fitCurve(u.spread, u.minDist)
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewSource(u.seed))
	embedding := make([][]float64, n)
	for i := range embedding {
		embedding[i] = make([]float64, u.components)
		for d := range embedding[i] {
			embedding[i][d] = (2*rnd.Float64() - 1) * initRange
		}
	}

	if err := u.optimize(ctx, embedding, edges, a, b, epochs, rnd); err != nil {
		return nil, err
	}

	log.Debug().
		Int("neighbors", k).
		Int("edges", len(edges)).
		Float64("a", a).
		Float64("b", b).
		Int("epochs", epochs).
		Msg("umap layout complete")

	return model.FromPoints(embedding)
}

// nearestNeighbors returns for every row the indices and distances of its k nearest rows, closest first.
func nearestNeighbors(data *mat.Dense, k int) ([][]int, [][]float64) {
	n, _ := data.Dims()
	rows := model.Points(data)
	indices := make([][]int, n)
	distances := make([][]float64, n)

	candidates := make([]int, 0, n-1)
	dist := make([]float64, n)
	for i := 0; i < n; i++ {
		candidates = candidates[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dist[j] = floats.Distance(rows[i], rows[j], 2)
			candidates = append(candidates, j)
		}
		sort.SliceStable(candidates, func(x, y int) bool {
			return dist[candidates[x]] < dist[candidates[y]]
		})
		indices[i] = make([]int, k)
		distances[i] = make([]float64, k)
		for m := 0; m < k; m++ {
			indices[i][m] = candidates[m]
			distances[i][m] = dist[candidates[m]]
		}
	}
	return indices, distances
}

// smoothDistances finds for every point the distance to its closest neighbour (rho)
// and the scale (sigma) for which the membership strengths sum up to log2(k).
func smoothDistances(distances [][]float64) ([]float64, []float64) {
	n := len(distances)
	rhos := make([]float64, n)
	sigmas := make([]float64, n)

	var mean float64
	var count int
	for _, dd := range distances {
		for _, d := range dd {
			mean += d
			count++
		}
	}
	if count > 0 {
		mean /= float64(count)
	}

	for i, dd := range distances {
		if len(dd) == 0 {
			continue
		}
		target := math.Log2(float64(len(dd)))
		for _, d := range dd {
			if d > 0 {
				rhos[i] = d
				break
			}
		}

		lo, hi, mid := 0.0, math.Inf(1), 1.0
		for it := 0; it < smoothKIterations; it++ {
			var psum float64
			for _, d := range dd {
				psum += math.Exp(-math.Max(0, d-rhos[i]) / mid)
			}
			if math.Abs(psum-target) < smoothKTolerance {
				break
			}
			if psum > target {
				hi = mid
				mid = (lo + hi) / 2
			} else {
				lo = mid
				if math.IsInf(hi, 1) {
					mid *= 2
				} else {
					mid = (lo + hi) / 2
				}
			}
		}

		var local float64
		for _, d := range dd {
			local += d
		}
		local /= float64(len(dd))
		if rhos[i] > 0 {
			mid = math.Max(mid, minScaleDistance*local)
		} else {
			mid = math.Max(mid, minScaleDistance*mean)
		}
		sigmas[i] = mid
	}
	return rhos, sigmas
}

// fuzzyGraph builds the symmetric fuzzy union of the local neighbour graphs.
// Edges too weak to be sampled within the given epochs are dropped.
func fuzzyGraph(indices [][]int, distances [][]float64, epochs int) []edge {
	rhos, sigmas := smoothDistances(distances)

	directed := make(map[[2]int]float64)
	for i := range indices {
		for m, j := range indices[i] {
			w := 1.0
			if d := distances[i][m] - rhos[i]; d > 0 && sigmas[i] > 0 {
				w = math.Exp(-d / sigmas[i])
			}
			directed[[2]int{i, j}] = w
		}
	}

	weights := make(map[[2]int]float64)
	for key := range directed {
		i, j := key[0], key[1]
		if i > j {
			i, j = j, i
		}
		if _, ok := weights[[2]int{i, j}]; ok {
			continue
		}
		a := directed[[2]int{i, j}]
		b := directed[[2]int{j, i}]
		weights[[2]int{i, j}] = a + b - a*b
	}

	var strongest float64
	for _, w := range weights {
		strongest = math.Max(strongest, w)
	}

	edges := make([]edge, 0, len(weights))
	for key, w := range weights {
		if w < strongest/float64(epochs) {
			continue
		}
		edges = append(edges, edge{head: key[0], tail: key[1], weight: w})
	}
	// deterministic order for a given seed
	sort.Slice(edges, func(x, y int) bool {
		if edges[x].head == edges[y].head {
			return edges[x].tail < edges[y].tail
		}
		return edges[x].head < edges[y].head
	})
	return edges
}

// fitCurve fits a and b of 1 / (1 + a*x^(2b)) to the target membership curve
// defined by spread and minDist.
func fitCurve(spread, minDist float64) (float64, float64, error) {
	const samples = 300
	xs := make([]float64, samples)
	ys := make([]float64, samples)
	floats.Span(xs, 0, 3*spread)
	for i, x := range xs {
		if x < minDist {
			ys[i] = 1
		} else {
			ys[i] = math.Exp(-(x - minDist) / spread)
		}
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			a, b := p[0], p[1]
			if a <= 0 || b <= 0 {
				return math.Inf(1)
			}
			var loss float64
			for i, x := range xs {
				d := 1/(1+a*math.Pow(x, 2*b)) - ys[i]
				loss += d * d
			}
			return loss
		},
	}
	result, err := optimize.Minimize(problem, []float64{1.5, 0.9}, nil, &optimize.NelderMead{})
	if result == nil || len(result.X) != 2 {
		return 0, 0, fmt.Errorf("could not fit membership curve: %w", err)
	}
	if err != nil {
		log.Warn().Err(err).Msg("membership curve fit did not converge")
	}
	return result.X[0], result.X[1], nil
}

// optimize lays out the embedding with stochastic gradient descent,
// attracting the ends of every edge and repelling random pairs.
func (u *UMAP) optimize(ctx context.Context, embedding [][]float64, edges []edge, a, b float64, epochs int, rnd *rand.Rand) error {
	if len(edges) == 0 {
		return nil
	}
	n := len(embedding)
	dim := u.components

	var strongest float64
	for _, e := range edges {
		strongest = math.Max(strongest, e.weight)
	}
	epochsPerSample := make([]float64, len(edges))
	nextSample := make([]float64, len(edges))
	epochsPerNegative := make([]float64, len(edges))
	nextNegative := make([]float64, len(edges))
	for i, e := range edges {
		epochsPerSample[i] = strongest / e.weight
		nextSample[i] = epochsPerSample[i]
		epochsPerNegative[i] = epochsPerSample[i] / negativeSampleRate
		nextNegative[i] = epochsPerNegative[i]
	}

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("umap interrupted at epoch %d: %w", epoch, err)
		}
		alpha := u.learningRate * (1 - float64(epoch)/float64(epochs))
		current := float64(epoch)
		for i, e := range edges {
			if nextSample[i] > current {
				continue
			}
			head := embedding[e.head]
			tail := embedding[e.tail]

			dist2 := squared(head, tail)
			if dist2 > 0 {
				coeff := -2 * a * b * math.Pow(dist2, b-1) / (a*math.Pow(dist2, b) + 1)
				for d := 0; d < dim; d++ {
					grad := clip(coeff * (head[d] - tail[d]))
					head[d] += grad * alpha
					tail[d] -= grad * alpha
				}
			}
			nextSample[i] += epochsPerSample[i]

			negatives := int((current - nextNegative[i]) / epochsPerNegative[i])
			if negatives < 0 {
				negatives = 0
			}
			for s := 0; s < negatives; s++ {
				other := rnd.Intn(n)
				if other == e.head {
					continue
				}
				negative := embedding[other]
				dist2 := squared(head, negative)
				for d := 0; d < dim; d++ {
					grad := gradientClip
					if dist2 > 0 {
						coeff := 2 * b / ((0.001 + dist2) * (a*math.Pow(dist2, b) + 1))
						grad = clip(coeff * (head[d] - negative[d]))
					}
					head[d] += grad * alpha
				}
			}
			nextNegative[i] += float64(negatives) * epochsPerNegative[i]
		}
	}
	return nil
}

func squared(x, y []float64) float64 {
	var s float64
	for i := range x {
		d := x[i] - y[i]
		s += d * d
	}
	return s
}

func clip(v float64) float64 {
	if v > gradientClip {
		return gradientClip
	}
	if v < -gradientClip {
		return -gradientClip
	}
	return v
}
