package buffer

import (
	"fmt"
	"math"
)

// Stats is a set of statistical properties of a set of numbers.
type Stats struct {
	count          int
	min, max       float64
	mean, dSquared float64
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another element to the set.
func (s *Stats) Push(v float64) {
	s.count++
	diff := (v - s.mean) / float64(s.count)
	mean := s.mean + diff
	squaredDiff := (v - mean) * (v - s.mean)
	s.dSquared += squaredDiff
	s.mean = mean

	if s.min > v {
		s.min = v
	}

	if s.max < v {
		s.max = v
	}
}

// Avg returns the average value of the set.
func (s Stats) Avg() float64 {
	return s.mean
}

// Count returns the number of elements.
func (s Stats) Count() int {
	return s.count
}

// Min returns the smallest value pushed so far.
func (s Stats) Min() float64 {
	return s.min
}

// Max returns the largest value pushed so far.
func (s Stats) Max() float64 {
	return s.max
}

// Range returns the difference of max and min.
// NOTE : it is 0 for an empty set.
func (s Stats) Range() float64 {
	if s.count == 0 {
		return 0
	}
	return s.max - s.min
}

// Variance is the mathematical variance of the set.
// NOTE : it is 0 for an empty set.
func (s Stats) Variance() float64 {
	if s.count == 0 {
		return 0
	}
	return s.dSquared / float64(s.count)
}

// StDev is the standard deviation of the set.
func (s Stats) StDev() float64 {
	return math.Sqrt(s.Variance())
}

// Of creates the stats for the given values.
func Of(vv []float64) *Stats {
	s := NewStats()
	for _, v := range vv {
		s.Push(v)
	}
	return s
}

// StatsCollector is a collection of Stats variables.
// This enabled multi-dimensional tracking.
type StatsCollector struct {
	dim   int
	stats []*Stats
}

// NewStatsCollector creates a new Stats collector.
func NewStatsCollector(dim int) *StatsCollector {
	stats := make([]*Stats, dim)
	for i := 0; i < dim; i++ {
		stats[i] = NewStats()
	}
	return &StatsCollector{
		dim:   dim,
		stats: stats,
	}
}

// Push pushes each value to the corresponding dimension.
func (sc *StatsCollector) Push(v ...float64) {
	if len(v) != sc.dim {
		panic(fmt.Sprintf("inconsistent dimensions %d vs %d", len(v), sc.dim))
	}
	for i := 0; i < len(sc.stats); i++ {
		sc.stats[i].Push(v[i])
	}
}

// Stats returns the stats of every dimension.
func (sc StatsCollector) Stats() []*Stats {
	return sc.stats
}
