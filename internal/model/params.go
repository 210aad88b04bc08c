package model

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// Method is the name of a dimensionality reduction algorithm.
type Method string

const (
	UMAP Method = "umap"
	PCA  Method = "pca"
	TSNE Method = "tsne"
)

// Params is the configuration of a single embedding run.
// It is passed by value, so every sweep entry owns its own copy.
type Params struct {
	Method       Method  `json:"method"`
	Components   int     `json:"components"`
	Neighbors    int     `json:"neighbors,omitempty"`
	MinDist      float64 `json:"min_dist,omitempty"`
	Spread       float64 `json:"spread,omitempty"`
	Epochs       int     `json:"epochs,omitempty"`
	Iterations   int     `json:"iterations,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Seed         int64   `json:"seed"`
}

// Label is a short human readable description of the params.
func (p Params) Label() string {
	switch p.Method {
	case UMAP:
		return fmt.Sprintf("%s n_neighbors=%d", p.Method, p.Neighbors)
	case TSNE:
		return fmt.Sprintf("%s iterations=%d", p.Method, p.Iterations)
	}
	return string(p.Method)
}

// Hash returns a stable hash of the params.
func (p Params) Hash() int64 {
	b, _ := json.Marshal(p)
	h := fnv.New64a()
	_, _ = h.Write(b)
	return int64(h.Sum64() >> 1)
}

// Validate checks the params for obviously wrong values.
func (p Params) Validate() error {
	if p.Components < 1 {
		return fmt.Errorf("components must be positive but was %d: %w", p.Components, ErrInvalidParams)
	}
	switch p.Method {
	case UMAP:
		if p.Neighbors < 1 {
			return fmt.Errorf("neighbors must be positive but was %d: %w", p.Neighbors, ErrInvalidParams)
		}
		if p.MinDist < 0 || p.Spread < 0 {
			return fmt.Errorf("negative min_dist or spread: %w", ErrInvalidParams)
		}
	case TSNE:
		if p.Components != 2 {
			return fmt.Errorf("t-sne supports only 2 components: %w", ErrInvalidParams)
		}
	case PCA:
	default:
		return fmt.Errorf("unknown method '%s': %w", p.Method, ErrInvalidParams)
	}
	return nil
}
