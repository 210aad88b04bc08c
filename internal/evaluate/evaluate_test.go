package evaluate

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/drakos74/digits-embed/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func blobs(n int, centers ...[2]float64) (*mat.Dense, []float64) {
	rnd := rand.New(rand.NewSource(1))
	data := make([]float64, 0, 2*n*len(centers))
	labels := make([]float64, 0, n*len(centers))
	for c, center := range centers {
		for i := 0; i < n; i++ {
			data = append(data, center[0]+rnd.NormFloat64()*0.1, center[1]+rnd.NormFloat64()*0.1)
			labels = append(labels, float64(c))
		}
	}
	return mat.NewDense(n*len(centers), 2, data), labels
}

func TestInstances(t *testing.T) {
	e, labels := blobs(5, [2]float64{0, 0}, [2]float64{1, 1})
	inst, err := Instances(e, labels)
	require.NoError(t, err)
	cols, rows := inst.Size()
	assert.Equal(t, 3, cols)
	assert.Equal(t, 10, rows)
	assert.Equal(t, 1, len(inst.AllClassAttributes()))

	_, err = Instances(e, labels[1:])
	assert.True(t, errors.Is(err, model.ErrMisaligned))
}

func TestKNNAccuracy(t *testing.T) {
	e, labels := blobs(30, [2]float64{0, 0}, [2]float64{10, 10}, [2]float64{-10, 10})
	accuracy, err := KNNAccuracy(e, labels)
	require.NoError(t, err)
	assert.True(t, accuracy > 0.9, "accuracy was %v", accuracy)
}

func TestKNNAccuracy_TooFew(t *testing.T) {
	e, labels := blobs(2, [2]float64{0, 0}, [2]float64{10, 10})
	_, err := KNNAccuracy(e, labels)
	assert.Error(t, err)
}

func TestPurity(t *testing.T) {
	e, labels := blobs(30, [2]float64{0, 0}, [2]float64{10, 10})
	purity, err := Purity(e, labels)
	require.NoError(t, err)
	assert.True(t, purity > 0.9, "purity was %v", purity)
	assert.True(t, purity <= 1)

	_, err = Purity(e, labels[1:])
	assert.True(t, errors.Is(err, model.ErrMisaligned))
}

func TestEvaluate(t *testing.T) {
	e, labels := blobs(20, [2]float64{0, 0}, [2]float64{10, 10})
	score := Evaluate(e, labels)
	assert.True(t, score.KNNAccuracy > 0.9)
	assert.True(t, score.Purity > 0.9)
}
