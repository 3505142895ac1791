package percentile

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary mirrors the headline metrics of a FastQC-style table, computed from
// the histogram alone
type Summary struct {
	Reads          int64 // deepest position coverage
	Positions      int
	EmptyPositions int
	Bases          int64
	MeanQuality    float64
	StdDevQuality  float64
	Q20Percent     float64
	Q30Percent     float64
}

// Summarize aggregates a validated histogram over all positions.
// Quality statistics are count weighted; they are zero when there are no bases.
func Summarize(h Histogram) Summary {
	s := Summary{Positions: len(h)}
	if len(h) == 0 {
		return s
	}

	width := len(h[0])
	scores := make([]float64, width)
	weights := make([]float64, width)
	for q := range scores {
		scores[q] = float64(q)
	}

	for _, row := range h {
		var depth int64
		for q, count := range row {
			depth += count
			weights[q] += float64(count)
		}
		if depth == 0 {
			s.EmptyPositions++
		}
		if depth > s.Reads {
			s.Reads = depth
		}
		s.Bases += depth
	}
	if s.Bases == 0 {
		return s
	}

	s.MeanQuality = stat.Mean(scores, weights)
	if s.Bases > 1 {
		s.StdDevQuality = stat.StdDev(scores, weights)
	}
	total := floats.Sum(weights)
	s.Q20Percent = tailPercent(weights, 20, total)
	s.Q30Percent = tailPercent(weights, 30, total)
	return s
}

func tailPercent(weights []float64, from int, total float64) float64 {
	if from >= len(weights) || total == 0 {
		return 0
	}
	return floats.Sum(weights[from:]) / total * 100
}
