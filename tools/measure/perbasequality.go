// Package measure builds the per-base quality histograms that `render` draws.
// Output is the results-file format: a list of {PerBaseQuality: {name, parameters, output}}.
package measure

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPhredOffset = 33
	// Histogram rows are at least this wide, matching PHRED 0-49
	minColumns = 50
)

// PerBaseQuality counts, for every read position, how many bases had each quality score
type PerBaseQuality struct {
	phredOffset int
	numReads    int64
	paired      bool
	r1          [][]int64
	r2          [][]int64
}

func NewPerBaseQuality(phredOffset int) *PerBaseQuality {
	return &PerBaseQuality{phredOffset: phredOffset}
}

// Add records the quality string of a single-end read
func (p *PerBaseQuality) Add(qual []byte) error {
	if err := p.count(&p.r1, qual); err != nil {
		return err
	}
	p.numReads++
	return nil
}

// AddPair records both mates of a read pair
func (p *PerBaseQuality) AddPair(qual1, qual2 []byte) error {
	if err := p.count(&p.r1, qual1); err != nil {
		return fmt.Errorf("R1: %w", err)
	}
	if err := p.count(&p.r2, qual2); err != nil {
		return fmt.Errorf("R2: %w", err)
	}
	p.paired = true
	p.numReads += 2
	return nil
}

// NumReads is the number of reads seen; a pair counts as two
func (p *PerBaseQuality) NumReads() int64 {
	return p.numReads
}

func (p *PerBaseQuality) count(hist *[][]int64, qual []byte) error {
	for i, c := range qual {
		q := int(c) - p.phredOffset
		if q < 0 {
			return fmt.Errorf("quality character %q at position %d is below phred offset %d", c, i+1, p.phredOffset)
		}
		for len(*hist) <= i {
			*hist = append(*hist, make([]int64, minColumns))
		}
		row := (*hist)[i]
		if q >= len(row) {
			grown := make([]int64, q+1)
			copy(grown, row)
			row = grown
			(*hist)[i] = row
		}
		row[q]++
	}
	return nil
}

// Report is one entry of the results file
type Report struct {
	Name       string         `yaml:"name"`
	Parameters map[string]any `yaml:"parameters"`
	Output     Output         `yaml:"output"`
}

type Output struct {
	NumReads int64     `yaml:"num_reads"`
	R1       []flowRow `yaml:"r1_phred_scores"`
	R2       []flowRow `yaml:"r2_phred_scores"`
}

// flowRow keeps each histogram row on one line: [0, 0, 12, ...]
type flowRow []int64

func (r flowRow) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range r {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: fmt.Sprintf("%d", v),
		})
	}
	return node, nil
}

// Report pads every row of both reads to one common width and wraps the
// histograms with their name and parameters
func (p *PerBaseQuality) Report(name string) Report {
	width := minColumns
	for _, hist := range [][][]int64{p.r1, p.r2} {
		for _, row := range hist {
			if len(row) > width {
				width = len(row)
			}
		}
	}

	out := Output{NumReads: p.numReads, R1: padRows(p.r1, width), R2: []flowRow{}}
	if p.paired {
		out.R2 = padRows(p.r2, width)
	}
	return Report{
		Name:       name,
		Parameters: map[string]any{"phred_offset": p.phredOffset},
		Output:     out,
	}
}

func padRows(hist [][]int64, width int) []flowRow {
	rows := make([]flowRow, len(hist))
	for i, row := range hist {
		padded := make(flowRow, width)
		copy(padded, row)
		rows[i] = padded
	}
	return rows
}
