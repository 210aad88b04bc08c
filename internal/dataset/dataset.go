// Package dataset loads the samples to embed.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/drakos74/digits-embed/internal/model"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const (
	// Digits is the name of the 8x8 handwritten digits dataset.
	Digits = "digits"
	// Random is the name of the random point cloud.
	Random = "random"

	digitsSize = 8
	// digitsMax is the maximum pixel value of the optdigits data
	digitsMax = 16.0
)

// LoadDigits loads the optdigits csv file.
// Every line holds 64 pixel values in [0,16] followed by the digit.
func LoadDigits(file string) (model.Dataset, error) {
	f, err := os.Open(file)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not open digits file '%s': %w", file, err)
	}
	defer f.Close()

	d, err := ReadDigits(f)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not read digits file '%s': %w", file, err)
	}
	log.Info().
		Str("file", file).
		Int("samples", d.Len()).
		Msg("loaded digits")
	return d, nil
}

// ReadDigits parses digits from the given reader.
func ReadDigits(r io.Reader) (model.Dataset, error) {
	features := digitsSize * digitsSize
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = features + 1
	reader.TrimLeadingSpace = true

	data := make([]float64, 0, features*1024)
	labels := make([]float64, 0, 1024)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Dataset{}, fmt.Errorf("could not parse record: %w", err)
		}
		line++
		for i, item := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
			if err != nil {
				return model.Dataset{}, fmt.Errorf("could not parse value %d on line %d: %w", i, line, err)
			}
			if i == features {
				labels = append(labels, v)
				continue
			}
			if v < 0 || v > digitsMax {
				return model.Dataset{}, fmt.Errorf("pixel %d on line %d is out of range: %v", i, line, v)
			}
			data = append(data, v/digitsMax)
		}
	}

	if line == 0 {
		return model.Dataset{}, fmt.Errorf("no samples found")
	}

	return model.Dataset{
		Name:    Digits,
		Samples: mat.NewDense(line, features, data),
		Labels:  labels,
		Width:   digitsSize,
		Height:  digitsSize,
	}, nil
}

// NewRandom creates a cloud of n uniformly distributed points in the unit cube.
// The label of each point is its first coordinate.
func NewRandom(n int, seed int64) (model.Dataset, error) {
	if n < 2 {
		return model.Dataset{}, fmt.Errorf("need at least 2 samples but got %d", n)
	}
	rnd := rand.New(rand.NewSource(seed))
	data := make([]float64, n*3)
	for i := range data {
		data[i] = rnd.Float64()
	}
	samples := mat.NewDense(n, 3, data)
	return model.Dataset{
		Name:    Random,
		Samples: samples,
		Labels:  mat.Col(nil, 0, samples),
	}, nil
}
