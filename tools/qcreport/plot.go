package qcreport

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"qc_buddy_go/config"
	"qc_buddy_go/tools/percentile"
)

var (
	outerFill = color.NRGBA{R: 0, G: 0, B: 255, A: 26}
	innerFill = color.NRGBA{R: 144, G: 238, B: 144, A: 179}
)

// qualityBands are the five curves of a per-base quality chart, outermost first
type qualityBands struct {
	lowerP, lowerQ, median, upperQ, upperP percentile.Curve
}

func newQualityBands(curves percentile.Curves) (qualityBands, error) {
	if len(curves) != 5 {
		return qualityBands{}, fmt.Errorf("per-base quality chart needs 5 percentile curves, got %d", len(curves))
	}
	return qualityBands{curves[0], curves[1], curves[2], curves[3], curves[4]}, nil
}

func (b qualityBands) outerLabel() string { return rangeLabel(b.lowerP.P, b.upperP.P) }
func (b qualityBands) innerLabel() string { return rangeLabel(b.lowerQ.P, b.upperQ.P) }

func rangeLabel(lo, hi float64) string {
	return fmt.Sprintf("%.0f%%-ile range", math.Round((hi-lo)*100))
}

// axisLimits returns the x upper bound and y upper bound shared by the image and
// the interactive chart
func (b qualityBands) axisLimits(cfg config.Config) (xMax, yMax float64) {
	xMax = float64(len(b.median.Values))
	if cfg.XLimit > 0 {
		xMax = float64(cfg.XLimit)
	}
	if xMax < 2 {
		xMax = 2
	}
	return xMax, maxPresent(b.upperP.Values) + 3
}

// maxPresent is the largest non-missing value, or 0
func maxPresent(values []float64) float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !percentile.IsMissing(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0
	}
	return floats.Max(present)
}

// presentSpans splits positions into [start, end) runs with data.
// Zero-coverage positions are missing on every curve, so the median decides.
func presentSpans(values []float64) [][2]int {
	var spans [][2]int
	start := -1
	for i, v := range values {
		if percentile.IsMissing(v) {
			if start >= 0 {
				spans = append(spans, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(values)})
	}
	return spans
}

// Read positions are 1-based on the chart
func spanXYs(values []float64, span [2]int) plotter.XYs {
	pts := make(plotter.XYs, 0, span[1]-span[0])
	for i := span[0]; i < span[1]; i++ {
		pts = append(pts, plotter.XY{X: float64(i + 1), Y: values[i]})
	}
	return pts
}

// bandPolygon fills the area between lower and upper over one span
func bandPolygon(lower, upper []float64, span [2]int, fill color.Color) (*plotter.Polygon, error) {
	pts := spanXYs(lower, span)
	top := spanXYs(upper, span)
	for i := len(top) - 1; i >= 0; i-- {
		pts = append(pts, top[i])
	}
	poly, err := plotter.NewPolygon(pts)
	if err != nil {
		return nil, err
	}
	poly.Color = fill
	poly.LineStyle.Color = color.Black
	poly.LineStyle.Width = vg.Points(0.5)
	return poly, nil
}

func newQualityPlot(title string, b qualityBands, cfg config.Config) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Per-base PHRED Qualities: " + title
	p.X.Label.Text = "Read Position"
	p.Y.Label.Text = "PHRED score"
	p.X.Tick.Marker = stepTicks{}
	p.Y.Tick.Marker = stepTicks{}

	var medianThumb, innerThumb, outerThumb plot.Thumbnailer
	for _, span := range presentSpans(b.median.Values) {
		outer, err := bandPolygon(b.lowerP.Values, b.upperP.Values, span, outerFill)
		if err != nil {
			return nil, err
		}
		inner, err := bandPolygon(b.lowerQ.Values, b.upperQ.Values, span, innerFill)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(spanXYs(b.median.Values, span))
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = color.Black
		line.LineStyle.Width = vg.Points(1.5)

		p.Add(outer, inner, line)
		if medianThumb == nil {
			medianThumb, innerThumb, outerThumb = line, inner, outer
		}
	}
	if medianThumb != nil {
		p.Legend.Add("median", medianThumb)
		p.Legend.Add(b.innerLabel(), innerThumb)
		p.Legend.Add(b.outerLabel(), outerThumb)
	}
	p.Legend.Left = true
	p.Legend.Top = false

	// Fixed after Add, which widens the axes to fit the data
	xMax, yMax := b.axisLimits(cfg)
	p.X.Min, p.X.Max = 1, xMax
	p.Y.Min, p.Y.Max = 0, yMax
	return p, nil
}

// chartImage is either a data: URL (png) or inline markup (svg)
type chartImage struct {
	URL template.URL
	SVG template.HTML
}

func encodeChart(p *plot.Plot, cfg config.Config) (chartImage, error) {
	w := vg.Length(cfg.WidthInches) * vg.Inch
	h := vg.Length(cfg.HeightInches) * vg.Inch

	var buf bytes.Buffer
	switch cfg.ImageFormat {
	case config.FormatSVG:
		writer, err := p.WriterTo(w, h, "svg")
		if err != nil {
			return chartImage{}, err
		}
		if _, err := writer.WriteTo(&buf); err != nil {
			return chartImage{}, err
		}
		svg := buf.String()
		if i := strings.Index(svg, "<svg"); i > 0 {
			svg = svg[i:]
		}
		return chartImage{SVG: template.HTML(svg)}, nil
	default:
		c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(cfg.DPI))
		p.Draw(draw.New(c))
		if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
			return chartImage{}, err
		}
		url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		return chartImage{URL: template.URL(url)}, nil
	}
}

// stepTicks labels whole numbers at a readable interval, with unlabelled
// minor ticks in between
type stepTicks struct{}

func (stepTicks) Ticks(min, max float64) []plot.Tick {
	step := niceStep((max - min) / 10)
	minor := step / 5
	var ticks []plot.Tick
	for i := int(math.Ceil(min)); i <= int(math.Floor(max)); i++ {
		switch {
		case i%step == 0:
			ticks = append(ticks, plot.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
		case minor > 0 && i%minor == 0:
			ticks = append(ticks, plot.Tick{Value: float64(i)})
		}
	}
	return ticks
}

// niceStep rounds x up to 1, 2 or 5 times a power of ten
func niceStep(x float64) int {
	if x <= 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(x)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= x {
			return int(m * mag)
		}
	}
	return int(10 * mag)
}
