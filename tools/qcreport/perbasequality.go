package qcreport

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"qc_buddy_go/tools/percentile"
)

// perBaseQualityOutput is the "output" mapping written by `measure`.
// Histograms stay as nodes until decodeHistogram has checked every count.
type perBaseQualityOutput struct {
	NumReads *int64    `yaml:"num_reads"`
	R1       yaml.Node `yaml:"r1_phred_scores"`
	R2       yaml.Node `yaml:"r2_phred_scores"`
}

// decodeHistogram converts a list of rows into a Histogram, accepting only
// integer counts. A missing or null node decodes to nil.
func decodeHistogram(n *yaml.Node) (percentile.Histogram, error) {
	if n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null") {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, &percentile.HistogramError{Row: -1, Col: -1, Reason: "expected a list of rows"}
	}
	h := make(percentile.Histogram, len(n.Content))
	for i, row := range n.Content {
		if row.Kind != yaml.SequenceNode {
			return nil, &percentile.HistogramError{Row: i, Col: -1, Reason: "row is not a list of counts"}
		}
		h[i] = make([]int64, len(row.Content))
		for j, cell := range row.Content {
			if cell.Kind != yaml.ScalarNode || cell.ShortTag() != "!!int" {
				return nil, &percentile.HistogramError{Row: i, Col: j, Reason: fmt.Sprintf("non-integer count %q", cell.Value)}
			}
			if err := cell.Decode(&h[i][j]); err != nil {
				return nil, &percentile.HistogramError{Row: i, Col: j, Reason: fmt.Sprintf("count %q out of range", cell.Value)}
			}
		}
	}
	return h, nil
}

// readChart is everything the template shows for one read of a pair
type readChart struct {
	Label      string
	Title      string
	ChartID    string
	Image      chartImage
	Descriptor template.JS
	Summary    percentile.Summary
}

type perBaseQualityView struct {
	Anchor     string
	Name       string
	Parameters []Param
	Paired     bool
	NumReads   *int64
	Reads      []readChart
}

type perBaseQuality struct{}

func (perBaseQuality) Render(env *Environment, rec Record) (template.HTML, error) {
	if rec.Output.Kind == 0 {
		return "", errors.New("report has no output")
	}
	var out perBaseQualityOutput
	if err := rec.Output.Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode output: %w", err)
	}
	hist1, err := decodeHistogram(&out.R1)
	if err != nil {
		return "", fmt.Errorf("r1: %w", err)
	}
	if len(hist1) == 0 {
		return "", errors.New("output has no r1_phred_scores")
	}
	hist2, err := decodeHistogram(&out.R2)
	if err != nil {
		return "", fmt.Errorf("r2: %w", err)
	}

	// Paired-end runs fill r2_phred_scores; single-end runs leave it empty
	paired := len(hist2) > 0
	view := perBaseQualityView{
		Anchor:     anchor(rec),
		Name:       rec.Name,
		Parameters: NiceParams(rec.Parameters),
		Paired:     paired,
		NumReads:   out.NumReads,
	}

	r1Title := rec.Name
	if paired {
		r1Title += " (R1)"
	}
	r1, err := renderRead(env, view.Anchor+"-r1", "R1", r1Title, hist1)
	if err != nil {
		return "", fmt.Errorf("r1: %w", err)
	}
	view.Reads = append(view.Reads, r1)

	if paired {
		r2, err := renderRead(env, view.Anchor+"-r2", "R2", rec.Name+" (R2)", hist2)
		if err != nil {
			return "", fmt.Errorf("r2: %w", err)
		}
		view.Reads = append(view.Reads, r2)
	}

	var buf bytes.Buffer
	if err := env.templates.ExecuteTemplate(&buf, "perbasequality.html", view); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func renderRead(env *Environment, id, label, title string, h percentile.Histogram) (readChart, error) {
	curves, err := percentile.Extract(h, percentile.Spec(env.Config.Percentiles))
	if err != nil {
		return readChart{}, err
	}
	bands, err := newQualityBands(curves)
	if err != nil {
		return readChart{}, err
	}

	summary := percentile.Summarize(h)
	if summary.EmptyPositions > 0 {
		env.Logger.Warn("positions without reads are left as gaps",
			zap.String("chart", title),
			zap.Int("positions", summary.EmptyPositions))
	}

	p, err := newQualityPlot(title, bands, env.Config)
	if err != nil {
		return readChart{}, fmt.Errorf("failed to build plot: %w", err)
	}
	img, err := encodeChart(p, env.Config)
	if err != nil {
		return readChart{}, fmt.Errorf("failed to draw plot: %w", err)
	}
	desc, err := newChartDescriptor(id, title, bands, env.Config).script()
	if err != nil {
		return readChart{}, fmt.Errorf("failed to encode chart descriptor: %w", err)
	}

	env.Logger.Debug("rendered chart",
		zap.String("chart", title),
		zap.Int("positions", summary.Positions),
		zap.Int64("reads", summary.Reads))

	return readChart{
		Label:      label,
		Title:      title,
		ChartID:    id,
		Image:      img,
		Descriptor: desc,
		Summary:    summary,
	}, nil
}

func anchor(rec Record) string {
	return fmt.Sprintf("report-%d", rec.Index)
}
