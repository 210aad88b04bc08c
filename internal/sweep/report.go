package sweep

import (
	"time"

	"github.com/drakos74/digits-embed/internal/buffer"
	"github.com/drakos74/digits-embed/internal/chart"
	"github.com/drakos74/digits-embed/internal/evaluate"
	"github.com/drakos74/digits-embed/internal/model"
)

// Report summarizes a sweep run.
type Report struct {
	ID       string    `json:"id"`
	Dataset  string    `json:"dataset"`
	Samples  int       `json:"samples"`
	Time     time.Time `json:"time"`
	Duration float64   `json:"duration"`
	Grid     []string  `json:"grid"`
	Plots    []Plot    `json:"plots"`
}

// Plot is the outcome of a single embedding.
type Plot struct {
	Title  string       `json:"title"`
	Params model.Params `json:"params"`
	// Cached is true if the embedding was loaded from the store.
	Cached   bool            `json:"cached"`
	Duration float64         `json:"duration"`
	Score    *evaluate.Score `json:"score,omitempty"`
	Files    []string        `json:"files"`
	Points   int             `json:"points"`
	X        Axis            `json:"x"`
	Y        Axis            `json:"y"`
}

// Axis describes the embedded coordinates along one axis.
type Axis struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	StDev float64 `json:"stdev"`
}

func axis(s *buffer.Stats) Axis {
	return Axis{
		Min:   s.Min(),
		Max:   s.Max(),
		Mean:  s.Avg(),
		StDev: s.StDev(),
	}
}

// describe adds the coordinate stats of the scatter to the plot.
func (p *Plot) describe(s *chart.Scatter) {
	x, y := s.Bounds()
	p.Points = x.Count()
	p.X = axis(x)
	p.Y = axis(y)
}

// HistoryGroup is the event group of the run history.
const HistoryGroup = "runs"

// Run is the entry of a report in the run history.
type Run struct {
	ID       string    `json:"id"`
	Dataset  string    `json:"dataset"`
	Time     time.Time `json:"time"`
	Duration float64   `json:"duration"`
	Plots    int       `json:"plots"`
	Cached   int       `json:"cached"`
	Output   string    `json:"output"`
}

// Summary creates the history entry of the report.
func (r Report) Summary(output string) Run {
	var cached int
	for _, p := range r.Plots {
		if p.Cached {
			cached++
		}
	}
	return Run{
		ID:       r.ID,
		Dataset:  r.Dataset,
		Time:     r.Time,
		Duration: r.Duration,
		Plots:    len(r.Plots),
		Cached:   cached,
		Output:   output,
	}
}
