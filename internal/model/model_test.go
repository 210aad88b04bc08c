package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDataset_Validate(t *testing.T) {

	type test struct {
		dataset Dataset
		err     error
	}

	tests := map[string]test{
		"aligned": {
			dataset: Dataset{
				Samples: mat.NewDense(2, 2, []float64{0, 1, 1, 0}),
				Labels:  []float64{0, 1},
			},
		},
		"missing-label": {
			dataset: Dataset{
				Samples: mat.NewDense(2, 2, []float64{0, 1, 1, 0}),
				Labels:  []float64{0},
			},
			err: ErrMisaligned,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.dataset.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.err))
			}
		})
	}
}

func TestDataset_Rows(t *testing.T) {
	d := Dataset{
		Samples: mat.NewDense(2, 4, []float64{0, 1, 2, 3, 4, 5, 6, 7}),
		Width:   2,
		Height:  2,
	}
	assert.True(t, d.IsImage())
	rows := d.Rows()
	assert.Equal(t, [][]float64{{0, 1, 2, 3}, {4, 5, 6, 7}}, rows)
	rows[0][0] = 100
	assert.Equal(t, 0.0, d.Samples.At(0, 0))
}

func TestPoints(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	pp := Points(m)
	back, err := FromPoints(pp)
	assert.NoError(t, err)
	assert.True(t, mat.Equal(m, back))

	_, err = FromPoints([][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrMisaligned))
}

func TestParams(t *testing.T) {
	a := Params{Method: UMAP, Components: 2, Neighbors: 5}
	b := a
	b.Neighbors = 10
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Equal(t, a.Hash(), Params{Method: UMAP, Components: 2, Neighbors: 5}.Hash())
	assert.Equal(t, "umap n_neighbors=10", b.Label())

	assert.NoError(t, a.Validate())
	assert.True(t, errors.Is(Params{Method: TSNE, Components: 3}.Validate(), ErrInvalidParams))
	assert.True(t, errors.Is(Params{Method: "lda", Components: 2}.Validate(), ErrInvalidParams))
	assert.True(t, errors.Is(Params{Method: UMAP, Components: 2}.Validate(), ErrInvalidParams))
}

func TestDataset_Fingerprint(t *testing.T) {
	d := Dataset{
		Samples: mat.NewDense(2, 2, []float64{0, 1, 1, 0}),
		Labels:  []float64{0, 1},
	}
	same := Dataset{
		Name:    "other",
		Samples: mat.NewDense(2, 2, []float64{0, 1, 1, 0}),
		Labels:  []float64{0, 1},
	}
	relabeled := Dataset{
		Samples: mat.NewDense(2, 2, []float64{0, 1, 1, 0}),
		Labels:  []float64{1, 0},
	}
	reshaped := Dataset{
		Samples: mat.NewDense(1, 4, []float64{0, 1, 1, 0}),
		Labels:  []float64{0, 1},
	}

	assert.Equal(t, d.Fingerprint(), same.Fingerprint())
	assert.NotEqual(t, d.Fingerprint(), relabeled.Fingerprint())
	assert.NotEqual(t, d.Fingerprint(), reshaped.Fingerprint())
	assert.True(t, d.Fingerprint() >= 0)
}
