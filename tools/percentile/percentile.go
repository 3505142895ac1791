// Package percentile turns per-base quality histograms into percentile curves.
//
// A histogram row holds, for one base position, the number of reads observed at
// each PHRED score (column index = score). For every requested percentile p the
// extractor returns one quality value per position: the score of the
// floor(total*p)'th read when that position's reads are ranked by ascending quality.
package percentile

import (
	"fmt"
	"math"
	"sort"
)

// Histogram is indexed [basePosition][qualityScore]
type Histogram [][]int64

// Spec is an ordered list of percentile fractions in [0,1]
type Spec []float64

// DefaultSpec is the 5/25/50/75/95 set drawn by the per-base quality chart
var DefaultSpec = Spec{0.05, 0.25, 0.5, 0.75, 0.95}

// Curve holds the quality value at percentile P for every base position.
// Positions without any reads hold NaN (see IsMissing).
type Curve struct {
	P      float64
	Values []float64
}

// Curves keeps the curves in the order the percentiles were requested
type Curves []Curve

// Get returns the curve for percentile p
func (c Curves) Get(p float64) ([]float64, bool) {
	for _, curve := range c {
		if curve.P == p {
			return curve.Values, true
		}
	}
	return nil, false
}

// IsMissing reports whether v marks a position with zero reads
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Validate checks the list is non-empty and every fraction lies in [0,1]
func (s Spec) Validate() error {
	if len(s) == 0 {
		return ErrNoPercentiles
	}
	for i, p := range s {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return &PercentileError{Index: i, Value: p}
		}
	}
	return nil
}

// Validate checks h is non-empty, rectangular and free of negative counts
func Validate(h Histogram) error {
	if len(h) == 0 {
		return &HistogramError{Row: -1, Col: -1, Reason: "no base positions"}
	}
	width := len(h[0])
	if width == 0 {
		return &HistogramError{Row: 0, Col: -1, Reason: "no quality columns"}
	}
	for i, row := range h {
		if len(row) != width {
			return &HistogramError{
				Row:    i,
				Col:    -1,
				Reason: fmt.Sprintf("row has %d columns, expected %d", len(row), width),
			}
		}
		for q, count := range row {
			if count < 0 {
				return &HistogramError{Row: i, Col: q, Reason: fmt.Sprintf("negative count %d", count)}
			}
		}
	}
	return nil
}

// Extract computes one curve per requested percentile.
//
// A position whose row sums to zero yields NaN on every curve; the chart and the
// interactive descriptor both treat NaN as a gap. p == 1 selects the highest
// observed quality rather than running off the end of the row.
func Extract(h Histogram, spec Spec) (Curves, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := Validate(h); err != nil {
		return nil, err
	}

	curves := make(Curves, len(spec))
	for k, p := range spec {
		curves[k] = Curve{P: p, Values: make([]float64, len(h))}
	}

	cumulative := make([]int64, len(h[0]))
	for i, row := range h {
		// Running count of reads with quality <= q
		var upTo int64
		for q, count := range row {
			upTo += count
			cumulative[q] = upTo
		}
		total := upTo

		for k, p := range spec {
			if total == 0 {
				curves[k].Values[i] = math.NaN()
				continue
			}
			curves[k].Values[i] = float64(rankQuality(cumulative, rank(total, p)))
		}
	}
	return curves, nil
}

// rank is the zero-based index of the read at percentile p among total reads
func rank(total int64, p float64) int64 {
	idx := int64(math.Floor(float64(total) * p))
	if idx >= total {
		idx = total - 1
	}
	return idx
}

// rankQuality finds the first quality whose cumulative count exceeds idx
func rankQuality(cumulative []int64, idx int64) int {
	return sort.Search(len(cumulative), func(q int) bool {
		return idx < cumulative[q]
	})
}
