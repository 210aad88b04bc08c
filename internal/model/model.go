package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMisaligned is returned when per-sample sequences do not share the same length.
	ErrMisaligned = errors.New("misaligned samples")
	// ErrInvalidParams is returned for an unusable embedding configuration.
	ErrInvalidParams = errors.New("invalid params")
)

// Dataset is a set of samples with one label per sample.
type Dataset struct {
	Name    string
	Samples *mat.Dense
	Labels  []float64
	// Width and Height describe the image shape of a sample, zero if the samples are no images.
	Width  int
	Height int
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	if d.Samples == nil {
		return 0
	}
	r, _ := d.Samples.Dims()
	return r
}

// Features returns the number of features of each sample.
func (d Dataset) Features() int {
	if d.Samples == nil {
		return 0
	}
	_, c := d.Samples.Dims()
	return c
}

// IsImage returns true if every sample can be interpreted as an image.
func (d Dataset) IsImage() bool {
	return d.Width > 0 && d.Height > 0 && d.Width*d.Height == d.Features()
}

// Rows returns the samples as a slice of rows.
// The rows are copies, so mutating them does not affect the dataset.
func (d Dataset) Rows() [][]float64 {
	n := d.Len()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = mat.Row(nil, i, d.Samples)
	}
	return rows
}

// Validate checks that labels are aligned with the samples.
func (d Dataset) Validate() error {
	if d.Samples == nil {
		return fmt.Errorf("no samples for dataset '%s'", d.Name)
	}
	return Aligned(d.Len(), len(d.Labels))
}

// Fingerprint returns a hash of the samples and labels.
func (d Dataset) Fingerprint() int64 {
	h := fnv.New64a()
	b := make([]byte, 8)
	write := func(v float64) {
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		_, _ = h.Write(b)
	}
	r, c := 0, 0
	if d.Samples != nil {
		r, c = d.Samples.Dims()
	}
	write(float64(r))
	write(float64(c))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			write(d.Samples.At(i, j))
		}
	}
	for _, l := range d.Labels {
		write(l)
	}
	return int64(h.Sum64() >> 1)
}

// Aligned checks that all given lengths equal n.
func Aligned(n int, lengths ...int) error {
	for i, l := range lengths {
		if l != n {
			return fmt.Errorf("sequence %d has length %d instead of %d: %w", i, l, n, ErrMisaligned)
		}
	}
	return nil
}

// Embedding is the low-dimensional representation of a dataset.
type Embedding struct {
	Params   Params
	Data     *mat.Dense
	Duration time.Duration
}

// Points converts the embedding matrix into a serializable form.
func Points(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	pp := make([][]float64, r)
	for i := 0; i < r; i++ {
		pp[i] = mat.Row(nil, i, m)
	}
	return pp
}

// FromPoints converts serialized points back into a matrix.
func FromPoints(pp [][]float64) (*mat.Dense, error) {
	if len(pp) == 0 {
		return nil, fmt.Errorf("no points")
	}
	c := len(pp[0])
	data := make([]float64, 0, len(pp)*c)
	for i, p := range pp {
		if len(p) != c {
			return nil, fmt.Errorf("point %d has %d dimensions instead of %d: %w", i, len(p), c, ErrMisaligned)
		}
		data = append(data, p...)
	}
	return mat.NewDense(len(pp), c, data), nil
}
