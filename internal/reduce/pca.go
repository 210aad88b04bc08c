package reduce

import (
	"context"
	"fmt"

	"github.com/drakos74/digits-embed/internal/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects the data onto its principal components.
type PCA struct {
	components int
}

// NewPCA creates a new PCA reducer.
func NewPCA(p model.Params) *PCA {
	return &PCA{components: p.Components}
}

func (p *PCA) Name() string {
	return string(model.PCA)
}

func (p *PCA) Embed(_ context.Context, data *mat.Dense) (*mat.Dense, error) {
	r, c := data.Dims()
	if r < 2 {
		return nil, fmt.Errorf("need at least 2 samples but got %d", r)
	}
	if p.components > c || p.components > r {
		return nil, fmt.Errorf("cannot extract %d components from %dx%d: %w", p.components, r, c, model.ErrInvalidParams)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("could not decompose data")
	}
	var vectors mat.Dense
	pc.VectorsTo(&vectors)

	means := make([]float64, c)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, data), nil)
	}
	var centered mat.Dense
	centered.Apply(func(_, j int, v float64) float64 {
		return v - means[j]
	}, data)

	var proj mat.Dense
	proj.Mul(&centered, vectors.Slice(0, c, 0, p.components))
	return &proj, nil
}
