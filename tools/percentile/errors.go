package percentile

import (
	"errors"
	"fmt"
)

// ErrNoPercentiles is returned when extraction is asked for zero percentiles
var ErrNoPercentiles = errors.New("percentile spec is empty")

// HistogramError reports a malformed quality histogram.
// Col is -1 when the problem concerns a whole row.
type HistogramError struct {
	Row    int
	Col    int
	Reason string
}

func (e *HistogramError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("invalid histogram: %s", e.Reason)
	}
	if e.Col < 0 {
		return fmt.Sprintf("invalid histogram at position %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("invalid histogram at position %d, quality %d: %s", e.Row, e.Col, e.Reason)
}

// PercentileError reports a requested percentile outside [0,1]
type PercentileError struct {
	Index int
	Value float64
}

func (e *PercentileError) Error() string {
	return fmt.Sprintf("percentile #%d (%v) is outside [0,1]", e.Index, e.Value)
}
