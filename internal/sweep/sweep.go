// Package sweep runs a set of embeddings on one dataset and renders the results.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/drakos74/digits-embed/internal/chart"
	"github.com/drakos74/digits-embed/internal/color"
	"github.com/drakos74/digits-embed/internal/dataset"
	"github.com/drakos74/digits-embed/internal/evaluate"
	"github.com/drakos74/digits-embed/internal/metrics"
	"github.com/drakos74/digits-embed/internal/model"
	"github.com/drakos74/digits-embed/internal/reduce"
	"github.com/drakos74/digits-embed/internal/storage"
	"github.com/drakos74/digits-embed/internal/storage/file/json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// ReportFile is the name of the run report in the output dir.
const ReportFile = "report.json"

// cached is the stored form of an embedding.
type cached struct {
	Params   model.Params `json:"params"`
	Points   [][]float64  `json:"points"`
	Duration float64      `json:"duration"`
}

// Runner runs the sweep of a config.
type Runner struct {
	config  Config
	store   storage.Persistence
	history *json.Registry
}

// New creates a new runner.
// A nil store disables the embedding cache.
func New(config Config, store storage.Persistence) *Runner {
	if store == nil {
		store = storage.NewNoCache(config.Dataset)
	}
	return &Runner{
		config: config,
		store:  store,
	}
}

// WithHistory appends a summary of every run to the registry.
func (r *Runner) WithHistory(registry *json.Registry) *Runner {
	r.history = registry
	return r
}

// Run computes and renders every configured embedding of the dataset.
func (r *Runner) Run(ctx context.Context, ds model.Dataset) (Report, error) {
	start := time.Now()
	report := Report{
		ID:      uuid.New().String(),
		Dataset: ds.Name,
		Samples: ds.Len(),
		Time:    start,
	}

	if err := ds.Validate(); err != nil {
		return report, fmt.Errorf("invalid dataset '%s': %w", ds.Name, err)
	}

	out := r.config.Output
	if err := os.MkdirAll(out, os.ModePerm); err != nil {
		return report, fmt.Errorf("could not create output dir '%s': %w", out, err)
	}

	paths, err := r.images(ds)
	if err != nil {
		return report, err
	}

	var colors []string
	if ds.Name == dataset.Random {
		colors, err = color.Coordinates(ds.Samples)
		if err != nil {
			return report, fmt.Errorf("could not color coordinates: %w", err)
		}
	}

	pp := r.config.Params()
	report.Plots = make([]Plot, len(pp))
	embeddings := make([]*mat.Dense, len(pp))
	embedders := make([]chart.Embedder, len(pp))
	fingerprint := ds.Fingerprint()
	for i, p := range pp {
		report.Plots[i] = Plot{
			Title:  p.Label(),
			Params: p,
		}
		embedders[i] = chart.Embedder{
			Title: p.Label(),
			Func:  r.embed(i, p, ds.Name, fingerprint, &report.Plots[i], embeddings),
		}
	}

	scatters, err := chart.Grid(ctx, embedders, ds.Samples, ds.Labels, paths)
	if err != nil {
		return report, fmt.Errorf("could not build grid: %w", err)
	}

	for i, s := range scatters {
		if colors != nil {
			if err := s.WithColors(colors); err != nil {
				return report, err
			}
		}
		files, err := render(out, fmt.Sprintf("%s_%d", pp[i].Method, i), s)
		if err != nil {
			return report, err
		}
		report.Plots[i].Files = files
		report.Plots[i].describe(s)
		if r.config.Evaluate {
			score := evaluate.Evaluate(embeddings[i], ds.Labels)
			report.Plots[i].Score = &score
		}
	}

	report.Grid, err = chart.RenderGrid(out, fmt.Sprintf("%s embeddings", ds.Name), scatters)
	if err != nil {
		return report, err
	}

	report.Duration = time.Since(start).Seconds()
	if err := json.Capture(report, filepath.Join(out, ReportFile)); err != nil {
		return report, fmt.Errorf("could not write report: %w", err)
	}
	if r.history != nil {
		if err := r.history.Add(HistoryGroup, report.Summary(out)); err != nil {
			log.Warn().Err(err).Str("id", report.ID).Msg("could not add run to history")
		}
	}

	log.Info().
		Str("id", report.ID).
		Str("dataset", ds.Name).
		Int("plots", len(report.Plots)).
		Float64("duration", report.Duration).
		Str("output", out).
		Msg("sweep complete")
	return report, nil
}

// images materializes the samples of an image dataset.
// The returned paths are relative to the output dir, so that the pages can be opened from anywhere.
func (r *Runner) images(ds model.Dataset) ([]string, error) {
	if !ds.IsImage() {
		return nil, nil
	}
	m := r.config.Materializer()
	if m.Width == 0 || m.Height == 0 {
		m.Width, m.Height = ds.Width, ds.Height
	}
	paths, err := m.Write(ds.Rows())
	if err != nil {
		return nil, fmt.Errorf("could not materialize images: %w", err)
	}
	for i, p := range paths {
		paths[i] = Reference(r.config.Output, p)
	}
	return paths, nil
}

// embed creates the embedding function of the plot at index i.
// Embeddings are looked up in the store first and stored after a miss.
func (r *Runner) embed(i int, p model.Params, name string, fingerprint int64, plot *Plot, embeddings []*mat.Dense) reduce.Func {
	key := storage.Key{
		Hash:  p.Hash() ^ fingerprint,
		Group: string(p.Method),
		Label: name,
	}
	return func(ctx context.Context, data *mat.Dense) (*mat.Dense, error) {
		var c cached
		err := r.store.Load(key, &c)
		if err == nil {
			e, err := model.FromPoints(c.Points)
			if err == nil {
				metrics.Observer.Cache(string(p.Method), true)
				log.Debug().Str("key", key.Path()).Msg("loaded cached embedding")
				plot.Cached = true
				plot.Duration = c.Duration
				embeddings[i] = e
				return e, nil
			}
			log.Warn().Err(err).Str("key", key.Path()).Msg("ignoring broken cached embedding")
		} else if !errors.Is(err, storage.NotFoundErr) {
			log.Warn().Err(err).Str("key", key.Path()).Msg("could not load cached embedding")
		}
		metrics.Observer.Cache(string(p.Method), false)

		e, err := reduce.Embed(ctx, p, data)
		if err != nil {
			return nil, err
		}
		plot.Duration = e.Duration.Seconds()
		embeddings[i] = e.Data

		if err := r.store.Store(key, cached{
			Params:   p,
			Points:   model.Points(e.Data),
			Duration: plot.Duration,
		}); err != nil {
			log.Warn().Err(err).Str("key", key.Path()).Msg("could not cache embedding")
		}
		return e.Data, nil
	}
}

// render writes the page and the image of a single scatter.
func render(dir, name string, s *chart.Scatter) ([]string, error) {
	page := filepath.Join(dir, name+".html")
	if err := chart.SaveHTML(page, s.Title, []*chart.Scatter{s}); err != nil {
		return nil, err
	}
	img := filepath.Join(dir, name+".png")
	if err := s.SavePNG(img); err != nil {
		return nil, err
	}
	return []string{page, img}, nil
}

// Reference returns the path of the file relative to the dir,
// or the absolute path if no relative one exists.
func Reference(dir, file string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return file
	}
	absFile, err := filepath.Abs(file)
	if err != nil {
		return file
	}
	rel, err := filepath.Rel(absDir, absFile)
	if err != nil {
		return filepath.ToSlash(absFile)
	}
	return filepath.ToSlash(rel)
}
