// Package reduce computes low dimensional embeddings of a sample matrix.
package reduce

import (
	"context"
	"fmt"
	"time"

	"github.com/drakos74/digits-embed/internal/metrics"
	"github.com/drakos74/digits-embed/internal/model"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Reducer embeds every row of a matrix into a low dimensional space.
// The output has one row per input row, in the same order.
type Reducer interface {
	Name() string
	Embed(ctx context.Context, data *mat.Dense) (*mat.Dense, error)
}

// Func is an embedding function.
type Func func(ctx context.Context, data *mat.Dense) (*mat.Dense, error)

// New creates the reducer for the given params.
func New(p model.Params) (Reducer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Method {
	case model.PCA:
		return NewPCA(p), nil
	case model.TSNE:
		return NewTSNE(p), nil
	case model.UMAP:
		return NewUMAP(p), nil
	}
	return nil, fmt.Errorf("unknown method '%s': %w", p.Method, model.ErrInvalidParams)
}

// Embed runs the reducer for the given params and times it.
func Embed(ctx context.Context, p model.Params, data *mat.Dense) (model.Embedding, error) {
	r, err := New(p)
	if err != nil {
		return model.Embedding{}, err
	}
	start := time.Now()
	e, err := r.Embed(ctx, data)
	if err != nil {
		return model.Embedding{}, fmt.Errorf("could not embed with %s: %w", p.Label(), err)
	}
	rows, _ := data.Dims()
	if er, ec := e.Dims(); er != rows || ec != p.Components {
		return model.Embedding{}, fmt.Errorf("%s produced %dx%d for %d rows: %w", p.Label(), er, ec, rows, model.ErrMisaligned)
	}
	d := time.Since(start)
	metrics.Observer.Embedding(string(p.Method), d)
	log.Info().
		Str("method", r.Name()).
		Str("params", p.Label()).
		Int("rows", rows).
		Float64("duration", d.Seconds()).
		Msg("computed embedding")
	return model.Embedding{
		Params:   p,
		Data:     e,
		Duration: d,
	}, nil
}

// FuncOf binds the params into an embedding function.
// The params are copied, so later changes to p do not affect the function.
func FuncOf(p model.Params) Func {
	params := p
	return func(ctx context.Context, data *mat.Dense) (*mat.Dense, error) {
		e, err := Embed(ctx, params, data)
		if err != nil {
			return nil, err
		}
		return e.Data, nil
	}
}

// Sweep creates one params entry per neighbour value, all other fields taken from base.
func Sweep(base model.Params, neighbors []int) []model.Params {
	pp := make([]model.Params, len(neighbors))
	for i, n := range neighbors {
		p := base
		p.Neighbors = n
		pp[i] = p
	}
	return pp
}
