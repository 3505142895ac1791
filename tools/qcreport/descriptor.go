package qcreport

import (
	"encoding/json"
	"html/template"
	"strconv"

	"qc_buddy_go/config"
	"qc_buddy_go/tools/percentile"
)

// chartDescriptor is the JSON handed to assets/qcchart.js for the interactive view
type chartDescriptor struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	XLabel    string            `json:"x_label"`
	YLabel    string            `json:"y_label"`
	XMax      float64           `json:"x_max"`
	YMax      float64           `json:"y_max"`
	Positions []int             `json:"positions"`
	Curves    []descriptorCurve `json:"curves"`
	Median    int               `json:"median"`
	Bands     []descriptorBand  `json:"bands"`
}

type descriptorCurve struct {
	Percentile float64        `json:"percentile"`
	Values     nullableFloats `json:"values"`
}

// Lower and Upper index into Curves
type descriptorBand struct {
	Label   string  `json:"label"`
	Lower   int     `json:"lower"`
	Upper   int     `json:"upper"`
	Fill    string  `json:"fill"`
	Opacity float64 `json:"opacity"`
}

// nullableFloats encodes missing (NaN) positions as null
type nullableFloats []float64

func (v nullableFloats) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(v)*4+2)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		if percentile.IsMissing(f) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

func newChartDescriptor(id, title string, b qualityBands, cfg config.Config) chartDescriptor {
	xMax, yMax := b.axisLimits(cfg)
	// Positions past the x limit are clipped, as on the static image
	n := len(b.median.Values)
	if limit := int(xMax); limit < n {
		n = limit
	}
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i + 1
	}

	curves := make([]descriptorCurve, 0, 5)
	for _, c := range []percentile.Curve{b.lowerP, b.lowerQ, b.median, b.upperQ, b.upperP} {
		curves = append(curves, descriptorCurve{Percentile: c.P, Values: nullableFloats(c.Values[:n])})
	}

	return chartDescriptor{
		ID:        id,
		Title:     "Per-base PHRED Qualities: " + title,
		XLabel:    "Read Position",
		YLabel:    "PHRED score",
		XMax:      xMax,
		YMax:      yMax,
		Positions: positions,
		Curves:    curves,
		Median:    2,
		Bands: []descriptorBand{
			{Label: b.outerLabel(), Lower: 0, Upper: 4, Fill: "blue", Opacity: 0.1},
			{Label: b.innerLabel(), Lower: 1, Upper: 3, Fill: "lightgreen", Opacity: 0.7},
		},
	}
}

// script returns the descriptor ready for a <script type="application/json"> block.
// encoding/json escapes <, > and &, so the payload cannot close the element.
func (d chartDescriptor) script() (template.JS, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return template.JS(data), nil
}
