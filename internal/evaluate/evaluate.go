// Package evaluate scores how well an embedding keeps the labels apart.
package evaluate

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/cdipaolo/goml/cluster"
	"github.com/drakos74/digits-embed/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/knn"
	"gonum.org/v1/gonum/mat"
)

const (
	neighbours = 5
	trainSplit = 0.5
	iterations = 30
	seed       = 44111342
)

// Score is the quality of an embedding.
type Score struct {
	// KNNAccuracy is the accuracy of a k-nearest-neighbour classifier on the embedding.
	KNNAccuracy float64 `json:"knn_accuracy"`
	// Purity is the fraction of samples whose k-means cluster majority label matches their own.
	Purity float64 `json:"purity"`
}

// Evaluate computes all scores for the embedding.
// A failing score is logged and left at zero.
func Evaluate(e *mat.Dense, labels []float64) Score {
	var score Score
	accuracy, err := KNNAccuracy(e, labels)
	if err != nil {
		log.Error().Err(err).Msg("could not compute knn accuracy")
	} else {
		score.KNNAccuracy = accuracy
	}
	purity, err := Purity(e, labels)
	if err != nil {
		log.Error().Err(err).Msg("could not compute cluster purity")
	} else {
		score.Purity = purity
	}
	return score
}

// Instances converts the embedding and the labels into golearn instances,
// with the label as categorical class attribute.
func Instances(e *mat.Dense, labels []float64) (*base.DenseInstances, error) {
	rows, cols := e.Dims()
	if err := model.Aligned(rows, len(labels)); err != nil {
		return nil, err
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, cols)
	for c := 0; c < cols; c++ {
		specs[c] = inst.AddAttribute(base.NewFloatAttribute(fmt.Sprintf("x%d", c)))
	}
	class := base.NewCategoricalAttribute()
	class.SetName("label")
	classSpec := inst.AddAttribute(class)
	if err := inst.AddClassAttribute(class); err != nil {
		return nil, fmt.Errorf("could not add class attribute: %w", err)
	}
	if err := inst.Extend(rows); err != nil {
		return nil, fmt.Errorf("could not allocate %d rows: %w", rows, err)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			inst.Set(specs[c], r, base.PackFloatToBytes(e.At(r, c)))
		}
		inst.Set(classSpec, r, class.GetSysValFromString(strconv.FormatFloat(labels[r], 'f', -1, 64)))
	}
	return inst, nil
}

// KNNAccuracy trains a knn classifier on half of the embedding and returns its accuracy on the other half.
func KNNAccuracy(e *mat.Dense, labels []float64) (float64, error) {
	inst, err := Instances(e, labels)
	if err != nil {
		return 0, err
	}

	rand.Seed(seed)
	trainData, testData := base.InstancesTrainTestSplit(inst, trainSplit)
	_, trainRows := trainData.Size()
	_, testRows := testData.Size()
	if trainRows <= neighbours || testRows == 0 {
		return 0, fmt.Errorf("too few samples for knn: %d train, %d test", trainRows, testRows)
	}

	cls := knn.NewKnnClassifier("euclidean", "linear", neighbours)
	cls.AllowOptimisations = false
	if err := cls.Fit(trainData); err != nil {
		return 0, fmt.Errorf("could not train knn model: %w", err)
	}
	predictions, err := cls.Predict(testData)
	if err != nil {
		return 0, fmt.Errorf("could not predict on knn model: %w", err)
	}
	cm, err := evaluation.GetConfusionMatrix(testData, predictions)
	if err != nil {
		return 0, fmt.Errorf("could not get confusion matrix: %w", err)
	}
	return evaluation.GetAccuracy(cm), nil
}

// Purity clusters the embedding with k-means, k being the number of distinct labels,
// and returns the fraction of samples that carry the majority label of their cluster.
func Purity(e *mat.Dense, labels []float64) (float64, error) {
	rows, _ := e.Dims()
	if err := model.Aligned(rows, len(labels)); err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, fmt.Errorf("empty embedding")
	}

	distinct := make(map[float64]struct{})
	for _, l := range labels {
		distinct[l] = struct{}{}
	}

	kmeans := cluster.NewKMeans(len(distinct), iterations, model.Points(e))
	kmeans.Output = log.With().Str("component", "k-means").Logger()
	if err := kmeans.Learn(); err != nil {
		return 0, fmt.Errorf("could not train k-means: %w", err)
	}
	guesses := kmeans.Guesses()
	if err := model.Aligned(rows, len(guesses)); err != nil {
		return 0, fmt.Errorf("could not align clusters with labels: %w", err)
	}

	counts := make(map[int]map[float64]int)
	for i, g := range guesses {
		if _, ok := counts[g]; !ok {
			counts[g] = make(map[float64]int)
		}
		counts[g][labels[i]]++
	}
	var majority int
	for _, cc := range counts {
		var top int
		for _, c := range cc {
			if c > top {
				top = c
			}
		}
		majority += top
	}
	return float64(majority) / float64(rows), nil
}
