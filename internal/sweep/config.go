package sweep

import (
	"fmt"

	"github.com/drakos74/digits-embed/internal/dataset"
	"github.com/drakos74/digits-embed/internal/imgs"
	"github.com/drakos74/digits-embed/internal/model"
	"github.com/drakos74/digits-embed/internal/reduce"
	"github.com/drakos74/digits-embed/internal/storage"
)

// Images configures the image materialization.
type Images struct {
	Dir    string `json:"dir"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Scale  int    `json:"scale"`
}

// Config is the configuration of a sweep.
type Config struct {
	Dataset string `json:"dataset"`
	// Data is the path of the digits csv file.
	Data string `json:"data"`
	// Samples is the size of the random point cloud.
	Samples int    `json:"samples"`
	Seed    int64  `json:"seed"`
	Images  Images `json:"images"`
	Output  string `json:"output"`
	Storage string `json:"storage"`
	// Base is combined with every entry of Neighbors.
	Base      model.Params   `json:"base"`
	Neighbors []int          `json:"neighbors"`
	Methods   []model.Params `json:"methods"`
	Evaluate  bool           `json:"evaluate"`
}

// Params returns the params of every plot, the neighbour sweep first.
func (c Config) Params() []model.Params {
	pp := reduce.Sweep(c.Base, c.Neighbors)
	return append(pp, c.Methods...)
}

// Materializer creates the image materializer for the config.
func (c Config) Materializer() *imgs.Materializer {
	dir := c.Images.Dir
	if dir == "" {
		dir = imgs.DefaultDir
	}
	m := imgs.New(dir, c.Images.Width, c.Images.Height)
	if c.Images.Scale > 1 {
		m.Scale = c.Images.Scale
	}
	return m
}

// Validate checks the config before any work starts.
func (c Config) Validate() error {
	switch c.Dataset {
	case dataset.Digits:
		if c.Data == "" {
			return fmt.Errorf("no data file for dataset '%s'", c.Dataset)
		}
	case dataset.Random:
		if c.Samples < 2 {
			return fmt.Errorf("random dataset needs at least 2 samples but got %d", c.Samples)
		}
	default:
		return fmt.Errorf("unknown dataset '%s'", c.Dataset)
	}
	if c.Output == "" {
		return fmt.Errorf("no output dir")
	}
	pp := c.Params()
	if len(pp) == 0 {
		return fmt.Errorf("nothing to plot: %w", model.ErrInvalidParams)
	}
	for i, p := range pp {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid params for plot %d: %w", i, err)
		}
	}
	return nil
}

// StorageDir returns the root directory of the embedding cache.
func (c Config) StorageDir() string {
	if c.Storage == "" {
		return storage.DefaultDir
	}
	return c.Storage
}

// Load loads the dataset described by the config.
func (c Config) Load() (model.Dataset, error) {
	switch c.Dataset {
	case dataset.Digits:
		return dataset.LoadDigits(c.Data)
	case dataset.Random:
		return dataset.NewRandom(c.Samples, c.Seed)
	}
	return model.Dataset{}, fmt.Errorf("unknown dataset '%s'", c.Dataset)
}
