package reduce

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/drakos74/digits-embed/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/sacado/tsne4go"
	"gonum.org/v1/gonum/mat"
)

const defaultIterations = 500

// TSNE embeds the data in 2 dimensions with t-SNE.
type TSNE struct {
	iterations int
	seed       int64
}

// NewTSNE creates a new t-SNE reducer.
func NewTSNE(p model.Params) *TSNE {
	iterations := p.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}
	return &TSNE{
		iterations: iterations,
		seed:       p.Seed,
	}
}

func (t *TSNE) Name() string {
	return string(model.TSNE)
}

func (t *TSNE) Embed(ctx context.Context, data *mat.Dense) (*mat.Dense, error) {
	r, _ := data.Dims()
	if r < 2 {
		return nil, fmt.Errorf("need at least 2 samples but got %d", r)
	}

	// tsne4go draws its initial solution from the global source
	rand.Seed(t.seed)

	tsne := tsne4go.New(tsne4go.VectorDistancer(model.Points(data)), nil)
	var cost float64
	for i := 0; i < t.iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("t-sne interrupted at step %d: %w", i, err)
		}
		cost = tsne.Step()
	}
	log.Debug().
		Int("iterations", t.iterations).
		Float64("cost", cost).
		Msg("t-sne converged")

	out := mat.NewDense(r, 2, nil)
	for i, p := range tsne.Solution {
		out.Set(i, 0, p[0])
		out.Set(i, 1, p[1])
	}
	return out, nil
}
