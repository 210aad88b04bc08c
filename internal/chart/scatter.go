// Package chart builds scatter plots of embeddings.
package chart

import (
	"fmt"
	"strconv"

	"github.com/drakos74/digits-embed/internal/buffer"
	"github.com/drakos74/digits-embed/internal/color"
	"github.com/drakos74/digits-embed/internal/model"
	"gonum.org/v1/gonum/mat"
)

// Point is a single sample of a scatter plot.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label float64 `json:"value"`
	Color string  `json:"fill_color"`
	Image string  `json:"img,omitempty"`
}

// Value returns the label formatted for display.
func (p Point) Value() string {
	return strconv.FormatFloat(p.Label, 'f', -1, 64)
}

// Scatter is a 2d scatter plot with one point per sample.
type Scatter struct {
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// NewScatter creates the scatter plot of an Nx2 embedding.
// labels must have N entries, imgs must either be nil or have N entries.
// The point colors are derived from the labels.
func NewScatter(title string, e *mat.Dense, labels []float64, imgs []string) (*Scatter, error) {
	if e == nil {
		return nil, fmt.Errorf("no embedding for '%s'", title)
	}
	n, c := e.Dims()
	if c != 2 {
		return nil, fmt.Errorf("can only plot 2 dimensions but got %d", c)
	}
	if err := model.Aligned(n, len(labels)); err != nil {
		return nil, fmt.Errorf("labels do not match embedding: %w", err)
	}
	if imgs != nil {
		if err := model.Aligned(n, len(imgs)); err != nil {
			return nil, fmt.Errorf("images do not match embedding: %w", err)
		}
	}

	colors, err := color.Labels(labels)
	if err != nil {
		return nil, fmt.Errorf("could not color labels: %w", err)
	}

	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{
			X:     e.At(i, 0),
			Y:     e.At(i, 1),
			Label: labels[i],
			Color: colors[i],
		}
		if imgs != nil {
			points[i].Image = imgs[i]
		}
	}
	return &Scatter{
		Title:  title,
		Points: points,
	}, nil
}

// WithColors overrides the point colors.
func (s *Scatter) WithColors(colors []string) error {
	if err := model.Aligned(len(s.Points), len(colors)); err != nil {
		return fmt.Errorf("colors do not match points: %w", err)
	}
	for i := range s.Points {
		s.Points[i].Color = colors[i]
	}
	return nil
}

// Bounds returns the stats of the x and y coordinates.
func (s *Scatter) Bounds() (x, y *buffer.Stats) {
	sc := buffer.NewStatsCollector(2)
	for _, p := range s.Points {
		sc.Push(p.X, p.Y)
	}
	stats := sc.Stats()
	return stats[0], stats[1]
}
