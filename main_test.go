package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fastq = `@r1
ACGTACGT
+
IIIII555
@r2
ACGTAC
+
555+++
`

func TestMeasureThenRender(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "reads.fq")
	results := filepath.Join(dir, "results.yml")
	report := filepath.Join(dir, "report.html")
	if err := os.WriteFile(in, []byte(fastq), 0o644); err != nil {
		t.Fatal(err)
	}

	measureCmd := MeasureCommand()
	measureCmd.SetArgs([]string{"-1", in, "-o", results, "-n", "demo"})
	if err := measureCmd.Execute(); err != nil {
		t.Fatalf("measure: %v", err)
	}

	renderCmd := RenderCommand()
	renderCmd.SetArgs([]string{"-i", results, "-o", report, "-f", "svg", "--set", "title=Demo run"})
	if err := renderCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{"<title>Demo run</title>", "demo", "<svg"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderRejectsBadOverride(t *testing.T) {
	cmd := RenderCommand()
	cmd.SetArgs([]string{"-i", "unused.yml", "--set", "dpi=high"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "dpi") {
		t.Errorf("Execute() error = %v, want dpi error", err)
	}
}
