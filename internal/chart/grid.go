package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drakos74/digits-embed/internal/model"
	"github.com/drakos74/digits-embed/internal/reduce"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const (
	GridHTML = "grid.html"
	GridPNG  = "grid.png"
)

// Embedder is a titled embedding function.
type Embedder struct {
	Title string
	Func  reduce.Func
}

// Embedders creates one embedder per params entry.
func Embedders(pp []model.Params) []Embedder {
	ee := make([]Embedder, len(pp))
	for i, p := range pp {
		ee[i] = Embedder{
			Title: p.Label(),
			Func:  reduce.FuncOf(p),
		}
	}
	return ee
}

// Grid applies every embedder to the same data and builds one scatter per embedder.
// The embedders run one after the other, the first error aborts the grid.
func Grid(ctx context.Context, embedders []Embedder, data *mat.Dense, labels []float64, imgs []string) ([]*Scatter, error) {
	if data == nil {
		return nil, fmt.Errorf("no data for grid")
	}
	n, _ := data.Dims()
	if err := model.Aligned(n, len(labels)); err != nil {
		return nil, fmt.Errorf("labels do not match data: %w", err)
	}
	if imgs != nil {
		if err := model.Aligned(n, len(imgs)); err != nil {
			return nil, fmt.Errorf("images do not match data: %w", err)
		}
	}

	scatters := make([]*Scatter, 0, len(embedders))
	for i, em := range embedders {
		e, err := em.Func(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("could not compute plot %d '%s': %w", i, em.Title, err)
		}
		s, err := NewScatter(em.Title, e, labels, imgs)
		if err != nil {
			return nil, fmt.Errorf("could not build plot %d '%s': %w", i, em.Title, err)
		}
		scatters = append(scatters, s)
	}
	return scatters, nil
}

// RenderGrid writes the scatters as one row into the given directory,
// as an interactive page and as a static image.
func RenderGrid(dir, title string, scatters []*Scatter) ([]string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not create output dir '%s': %w", dir, err)
	}
	page := filepath.Join(dir, GridHTML)
	if err := SaveHTML(page, title, scatters); err != nil {
		return nil, err
	}
	img := filepath.Join(dir, GridPNG)
	if err := SaveGridPNG(img, scatters); err != nil {
		return nil, err
	}
	log.Info().
		Str("dir", dir).
		Int("plots", len(scatters)).
		Msg("rendered grid")
	return []string{page, img}, nil
}
