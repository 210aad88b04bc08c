package color

import (
	"errors"
	"image/color"
	"math"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var hexPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestLabels(t *testing.T) {

	type test struct {
		labels []float64
		colors []string
	}

	tests := map[string]test{
		"digits": {
			labels: []float64{0, 9, 4.5},
			colors: []string{"#0000ff", "#ff0000", "#00ff00"},
		},
		"order": {
			labels: []float64{3, 1, 2},
			colors: []string{"#ff0000", "#0000ff", "#00ff00"},
		},
		"quarter": {
			labels: []float64{0, 1, 4},
			// ratio = 0.5 -> b = 127 , r = 0 , g = 128
			colors: []string{"#0000ff", "#00807f", "#ff0000"},
		},
		"negative": {
			labels: []float64{-10, 10},
			colors: []string{"#0000ff", "#ff0000"},
		},
		"float-limits": {
			labels: []float64{-math.MaxFloat64, 0, math.MaxFloat64},
			colors: []string{"#0000ff", "#00ff00", "#ff0000"},
		},
		"constant": {
			labels: []float64{7, 7, 7},
			colors: []string{Neutral, Neutral, Neutral},
		},
		"empty": {
			labels: []float64{},
			colors: []string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			colors, err := Labels(tt.labels)
			assert.NoError(t, err)
			assert.Equal(t, tt.colors, colors)
		})
	}
}

func TestLabels_Random(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		labels := make([]float64, 2+rnd.Intn(50))
		for j := range labels {
			labels[j] = float64(rnd.Intn(10))
		}
		// make sure there are at least two distinct values
		labels[0] = -1
		labels[1] = 10
		colors, err := Labels(labels)
		assert.NoError(t, err)
		assert.Equal(t, len(labels), len(colors))
		for j, c := range colors {
			assert.Regexp(t, hexPattern, c)
			rgb, err := ParseHex(c)
			assert.NoError(t, err)
			assert.Equal(t, 255, int(rgb.R)+int(rgb.G)+int(rgb.B), "label %v", labels[j])
		}
		assert.Equal(t, "#0000ff", colors[0])
		assert.Equal(t, "#ff0000", colors[1])
	}
}

func TestLabels_Invalid(t *testing.T) {
	_, err := Labels([]float64{0, math.NaN()})
	assert.True(t, errors.Is(err, ErrInvalidLabel))
	_, err = Labels([]float64{0, math.Inf(1)})
	assert.True(t, errors.Is(err, ErrInvalidLabel))
}

func TestHex(t *testing.T) {
	c := color.RGBA{R: 0x12, G: 0xab, B: 0x0f, A: 255}
	s := Hex(c)
	assert.Equal(t, "#12ab0f", s)
	p, err := ParseHex(s)
	assert.NoError(t, err)
	assert.Equal(t, c, p)

	_, err = ParseHex("12ab0f")
	assert.Error(t, err)
	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}

func TestCoordinates(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{0, 0, 0, 1, 0.5, 1})
	colors, err := Coordinates(m)
	assert.NoError(t, err)
	assert.Equal(t, []string{"#000000", "#ff7fff"}, colors)

	_, err = Coordinates(mat.NewDense(1, 2, nil))
	assert.Error(t, err)
}
