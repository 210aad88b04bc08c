package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digitsLine(pixel, label string) string {
	pp := make([]string, 64)
	for i := range pp {
		pp[i] = pixel
	}
	return strings.Join(append(pp, label), ",")
}

func TestReadDigits(t *testing.T) {
	input := strings.Join([]string{
		digitsLine("0", "0"),
		digitsLine("16", "7"),
		digitsLine("8", "3"),
	}, "\n")

	d, err := ReadDigits(strings.NewReader(input))
	require.NoError(t, err)
	assert.NoError(t, d.Validate())
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 64, d.Features())
	assert.True(t, d.IsImage())
	assert.Equal(t, []float64{0, 7, 3}, d.Labels)
	assert.Equal(t, 0.0, d.Samples.At(0, 10))
	assert.Equal(t, 1.0, d.Samples.At(1, 10))
	assert.Equal(t, 0.5, d.Samples.At(2, 63))
}

func TestReadDigits_Invalid(t *testing.T) {

	tests := map[string]string{
		"empty":        "",
		"short":        "1,2,3",
		"not-a-number": digitsLine("x", "1"),
		"out-of-range": digitsLine("17", "1"),
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadDigits(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestLoadDigits(t *testing.T) {
	p := filepath.Join(t.TempDir(), "optdigits.csv")
	require.NoError(t, os.WriteFile(p, []byte(digitsLine("4", "1")+"\n"), 0600))
	d, err := LoadDigits(p)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, Digits, d.Name)

	_, err = LoadDigits(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNewRandom(t *testing.T) {
	d, err := NewRandom(100, 1)
	require.NoError(t, err)
	assert.NoError(t, d.Validate())
	assert.Equal(t, 100, d.Len())
	assert.Equal(t, 3, d.Features())
	assert.False(t, d.IsImage())
	for i := 0; i < d.Len(); i++ {
		assert.Equal(t, d.Samples.At(i, 0), d.Labels[i])
		for j := 0; j < 3; j++ {
			v := d.Samples.At(i, j)
			assert.True(t, v >= 0 && v < 1)
		}
	}

	same, err := NewRandom(100, 1)
	require.NoError(t, err)
	assert.Equal(t, d.Labels, same.Labels)

	_, err = NewRandom(1, 1)
	assert.Error(t, err)
}
