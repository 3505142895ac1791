package qcreport

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"qc_buddy_go/config"
	"qc_buddy_go/tools/percentile"
)

func newTestEnv(t *testing.T, mutate func(*config.Config)) *Environment {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	env, err := NewEnvironment(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}
	return env
}

func decode(t *testing.T, doc string) []Record {
	t.Helper()
	records, err := DecodeReports(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeReports() error = %v", err)
	}
	return records
}

func TestNewEnvironmentRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Percentiles = nil
	if _, err := NewEnvironment(cfg, nil); !errors.Is(err, percentile.ErrNoPercentiles) {
		t.Errorf("NewEnvironment() error = %v, want ErrNoPercentiles", err)
	}
}

func TestEnvironmentRenderer(t *testing.T) {
	env := newTestEnv(t, nil)

	if _, err := env.Renderer(ProcessorPerBaseQuality); err != nil {
		t.Errorf("Renderer(%s) error = %v", ProcessorPerBaseQuality, err)
	}

	_, err := env.Renderer("AdaptorContent")
	var unknown *UnknownProcessorError
	if !errors.As(err, &unknown) {
		t.Fatalf("Renderer(unknown) error = %v, want *UnknownProcessorError", err)
	}
	if !strings.Contains(err.Error(), "no renderer for type AdaptorContent") {
		t.Errorf("error = %q", err)
	}
}

func TestRenderAllSingleEnd(t *testing.T) {
	env := newTestEnv(t, nil)

	html, err := RenderAll(env, decode(t, singleEndYAML))
	if err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`id="report-0"`,
		`href="#report-0"`,
		"lane1",
		"Phred Offset",
		"Single-end",
		"4 reads",
		"data:image/png;base64,",
		`data-qc-chart="report-0-r1"`,
		"script[data-qc-chart]",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(html, "(R2)") || strings.Contains(html, "report-0-r2") {
		t.Error("single-end report rendered an R2 chart")
	}
}

func TestRenderAllPaired(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.ImageFormat = config.FormatSVG })

	html, err := RenderAll(env, decode(t, pairedJSON))
	if err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}
	for _, want := range []string{"lane2 (R1)", "lane2 (R2)", "Paired-end", "<svg", "Trim Length"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(html, "data:image/png") {
		t.Error("svg output still embeds a png")
	}
}

func TestRenderAllKeepsInputOrder(t *testing.T) {
	var doc strings.Builder
	for i := 0; i < 7; i++ {
		fmt.Fprintf(&doc, "- PerBaseQuality:\n    name: sample_%02d\n    output:\n      r1_phred_scores: [[1, 2, 3], [3, 2, 1]]\n", i)
	}
	env := newTestEnv(t, func(c *config.Config) { c.Workers = 3 })

	html, err := RenderAll(env, decode(t, doc.String()))
	if err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}
	last := -1
	for i := 0; i < 7; i++ {
		pos := strings.Index(html, fmt.Sprintf(`<section class="qc-report" id="report-%d">`, i))
		if pos < 0 {
			t.Fatalf("report %d missing", i)
		}
		if pos < last {
			t.Errorf("report %d rendered out of order", i)
		}
		last = pos
	}
}

func TestRenderAllErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown processor",
			doc:  "- PerBaseQuality:\n    name: ok\n    output: {r1_phred_scores: [[1]]}\n- KmerCount:\n    name: other\n",
			check: func(t *testing.T, err error) {
				var unknown *UnknownProcessorError
				if !errors.As(err, &unknown) || unknown.Processor != "KmerCount" {
					t.Errorf("error = %v, want UnknownProcessorError for KmerCount", err)
				}
				var recErr *RecordError
				if !errors.As(err, &recErr) || recErr.Index != 1 {
					t.Errorf("error = %v, want RecordError at index 1", err)
				}
			},
		},
		{
			name: "ragged histogram",
			doc:  "- PerBaseQuality:\n    name: bad\n    output: {r1_phred_scores: [[1, 2], [1]]}\n",
			check: func(t *testing.T, err error) {
				var herr *percentile.HistogramError
				if !errors.As(err, &herr) || herr.Row != 1 {
					t.Errorf("error = %v, want HistogramError at row 1", err)
				}
			},
		},
		{
			name: "negative count in r2",
			doc:  "- PerBaseQuality:\n    name: bad\n    output: {r1_phred_scores: [[1]], r2_phred_scores: [[-1]]}\n",
			check: func(t *testing.T, err error) {
				var herr *percentile.HistogramError
				if !errors.As(err, &herr) || !strings.Contains(err.Error(), "r2") {
					t.Errorf("error = %v, want r2 HistogramError", err)
				}
			},
		},
		{
			name: "negative fractional count",
			doc:  "- PerBaseQuality:\n    name: bad\n    output: {r1_phred_scores: [[1, 2], [-0.5, 3]]}\n",
			check: func(t *testing.T, err error) {
				var herr *percentile.HistogramError
				if !errors.As(err, &herr) || herr.Row != 1 || herr.Col != 0 {
					t.Errorf("error = %v, want HistogramError at row 1, col 0", err)
				}
				if !strings.Contains(err.Error(), "non-integer") {
					t.Errorf("error = %v, want non-integer count", err)
				}
			},
		},
		{
			name: "fractional count in r2",
			doc:  "- PerBaseQuality:\n    name: bad\n    output: {r1_phred_scores: [[1]], r2_phred_scores: [[1.5, 2.7]]}\n",
			check: func(t *testing.T, err error) {
				var herr *percentile.HistogramError
				if !errors.As(err, &herr) || herr.Row != 0 || herr.Col != 0 || !strings.Contains(err.Error(), "r2") {
					t.Errorf("error = %v, want r2 HistogramError at row 0, col 0", err)
				}
			},
		},
		{
			name: "row is not a list",
			doc:  "- PerBaseQuality:\n    name: bad\n    output: {r1_phred_scores: [[1], 4]}\n",
			check: func(t *testing.T, err error) {
				var herr *percentile.HistogramError
				if !errors.As(err, &herr) || herr.Row != 1 || herr.Col != -1 {
					t.Errorf("error = %v, want HistogramError for row 1", err)
				}
			},
		},
		{
			name: "missing output",
			doc:  "- PerBaseQuality:\n    name: empty\n",
			check: func(t *testing.T, err error) {
				if !strings.Contains(err.Error(), "no output") {
					t.Errorf("error = %v", err)
				}
			},
		},
		{
			name: "missing r1",
			doc:  "- PerBaseQuality:\n    name: empty\n    output: {num_reads: 0}\n",
			check: func(t *testing.T, err error) {
				if !strings.Contains(err.Error(), "r1_phred_scores") {
					t.Errorf("error = %v", err)
				}
			},
		},
	}

	env := newTestEnv(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderAll(env, decode(t, tt.doc))
			if err == nil {
				t.Fatal("RenderAll() error = nil, want error")
			}
			tt.check(t, err)
		})
	}
}

func TestRenderAllWithGap(t *testing.T) {
	doc := "- PerBaseQuality:\n    name: sparse\n    output: {r1_phred_scores: [[0, 4], [0, 0], [2, 2]]}\n"
	env := newTestEnv(t, nil)

	html, err := RenderAll(env, decode(t, doc))
	if err != nil {
		t.Fatalf("RenderAll() error = %v", err)
	}
	if !strings.Contains(html, "[1,null,0]") && !strings.Contains(html, "[1,null,1]") {
		t.Error("descriptor does not carry the gap as null")
	}
	if !strings.Contains(html, "Positions Without Reads") {
		t.Error("summary does not report empty positions")
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "results.yml")
	out := filepath.Join(dir, "report.html")
	if err := os.WriteFile(in, []byte(singleEndYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RenderFile(newTestEnv(t, nil), in, out); err != nil {
		t.Fatalf("RenderFile() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "lane1") {
		t.Error("written report is missing the record")
	}
}

func TestChartDescriptor(t *testing.T) {
	curves, err := percentile.Extract(
		percentile.Histogram{{0, 4, 0}, {0, 0, 0}, {1, 1, 2}},
		percentile.DefaultSpec,
	)
	if err != nil {
		t.Fatal(err)
	}
	bands, err := newQualityBands(curves)
	if err != nil {
		t.Fatal(err)
	}
	js, err := newChartDescriptor("c1", "demo", bands, config.Default()).script()
	if err != nil {
		t.Fatalf("script() error = %v", err)
	}

	var got struct {
		Positions []int   `json:"positions"`
		YMax      float64 `json:"y_max"`
		Curves    []struct {
			Percentile float64    `json:"percentile"`
			Values     []*float64 `json:"values"`
		} `json:"curves"`
		Bands []struct {
			Label string `json:"label"`
		} `json:"bands"`
	}
	if err := json.Unmarshal([]byte(js), &got); err != nil {
		t.Fatalf("descriptor is not valid JSON: %v\n%s", err, js)
	}
	if len(got.Positions) != 3 || got.Positions[0] != 1 {
		t.Errorf("positions = %v", got.Positions)
	}
	if len(got.Curves) != 5 {
		t.Fatalf("curves = %d, want 5", len(got.Curves))
	}
	for _, c := range got.Curves {
		if c.Values[1] != nil {
			t.Errorf("curve %v position 2 = %v, want null", c.Percentile, *c.Values[1])
		}
	}
	if *got.Curves[2].Values[0] != 1 {
		t.Errorf("median at position 1 = %v, want 1", *got.Curves[2].Values[0])
	}
	if got.YMax != 5 {
		t.Errorf("y_max = %v, want 5", got.YMax)
	}
	if got.Bands[0].Label != "90%-ile range" || got.Bands[1].Label != "50%-ile range" {
		t.Errorf("bands = %+v", got.Bands)
	}
}

func TestPresentSpans(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		in   []float64
		want [][2]int
	}{
		{[]float64{1, 2, 3}, [][2]int{{0, 3}}},
		{[]float64{nan, 2, nan, nan, 5, 6}, [][2]int{{1, 2}, {4, 6}}},
		{[]float64{nan, nan}, nil},
	}
	for _, tt := range tests {
		got := presentSpans(tt.in)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("presentSpans(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStepTicks(t *testing.T) {
	tests := []struct {
		x    float64
		want int
	}{
		{0.5, 1}, {1, 1}, {1.5, 2}, {3, 5}, {7, 10}, {10, 10}, {14.9, 20},
	}
	for _, tt := range tests {
		if got := niceStep(tt.x); got != tt.want {
			t.Errorf("niceStep(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}

	var labels []string
	for _, tick := range (stepTicks{}).Ticks(1, 101) {
		if tick.Label != "" {
			labels = append(labels, tick.Label)
		}
	}
	if labels[0] != "10" || labels[len(labels)-1] != "100" || len(labels) != 10 {
		t.Errorf("major tick labels = %v", labels)
	}
}

func TestChartDescriptorClipsToXLimit(t *testing.T) {
	curves, err := percentile.Extract(
		percentile.Histogram{{0, 4}, {1, 3}, {2, 2}, {3, 1}, {4, 0}},
		percentile.DefaultSpec,
	)
	if err != nil {
		t.Fatal(err)
	}
	bands, err := newQualityBands(curves)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.XLimit = 3
	js, err := newChartDescriptor("c1", "clipped", bands, cfg).script()
	if err != nil {
		t.Fatalf("script() error = %v", err)
	}

	var got struct {
		XMax      float64 `json:"x_max"`
		Positions []int   `json:"positions"`
		Curves    []struct {
			Values []*float64 `json:"values"`
		} `json:"curves"`
	}
	if err := json.Unmarshal([]byte(js), &got); err != nil {
		t.Fatalf("descriptor is not valid JSON: %v\n%s", err, js)
	}
	if got.XMax != 3 {
		t.Errorf("x_max = %v, want 3", got.XMax)
	}
	if !reflect.DeepEqual(got.Positions, []int{1, 2, 3}) {
		t.Errorf("positions = %v, want [1 2 3]", got.Positions)
	}
	for i, c := range got.Curves {
		if len(c.Values) != 3 {
			t.Errorf("curve %d has %d values, want 3", i, len(c.Values))
		}
	}
}
