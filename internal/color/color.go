// Package color maps numeric values to hex color strings.
package color

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/drakos74/digits-embed/internal/buffer"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidLabel is returned for labels that cannot be placed on the ramp.
var ErrInvalidLabel = errors.New("invalid label")

// Neutral is the color of every label when all labels are equal.
// It is the midpoint of the blue-green-red ramp.
const Neutral = "#00ff00"

// Labels maps every label to a color on a blue-green-red ramp,
// with the smallest label blue and the largest red.
func Labels(labels []float64) ([]string, error) {
	colors := make([]string, len(labels))
	if len(labels) == 0 {
		return colors, nil
	}

	for i, l := range labels {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return nil, fmt.Errorf("label %d is %v: %w", i, l, ErrInvalidLabel)
		}
	}

	stats := buffer.Of(labels)
	lMin := stats.Min()
	lMax := stats.Max()

	if stats.Range() == 0 {
		log.Warn().
			Float64("label", lMin).
			Int("labels", len(labels)).
			Str("color", Neutral).
			Msg("all labels are equal")
		for i := range colors {
			colors[i] = Neutral
		}
		return colors, nil
	}

	// halves keep the span finite for labels at the float64 limits
	span := lMax/2 - lMin/2
	for i, l := range labels {
		colors[i] = Hex(Ramp(2 * (l/2 - lMin/2) / span))
	}
	return colors, nil
}

// Ramp returns the color for the given ratio in [0,2].
// 0 is pure blue, 1 pure green and 2 pure red.
func Ramp(ratio float64) color.RGBA {
	b := int(math.Max(0, 255*(1-ratio)))
	r := int(math.Max(0, 255*(ratio-1)))
	g := 255 - b - r
	return color.RGBA{
		R: clamp(r),
		G: clamp(g),
		B: clamp(b),
		A: 255,
	}
}

// Coordinates colors every row of a 3 column matrix with values in [0,1]
// as the rgb color of its coordinates.
func Coordinates(m *mat.Dense) ([]string, error) {
	r, c := m.Dims()
	if c != 3 {
		return nil, fmt.Errorf("need 3 columns to derive rgb colors but got %d", c)
	}
	colors := make([]string, r)
	for i := 0; i < r; i++ {
		colors[i] = Hex(color.RGBA{
			R: clamp(int(255 * m.At(i, 0))),
			G: clamp(int(255 * m.At(i, 1))),
			B: clamp(int(255 * m.At(i, 2))),
			A: 255,
		})
	}
	return colors, nil
}

// Hex formats the color as '#rrggbb'.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses a '#rrggbb' string.
func ParseHex(s string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid hex color '%s'", s)
	}
	_, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	if err != nil {
		return c, fmt.Errorf("invalid hex color '%s': %w", s, err)
	}
	return c, nil
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
