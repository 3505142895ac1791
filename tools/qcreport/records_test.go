package qcreport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const singleEndYAML = `
- PerBaseQuality:
    name: lane1
    parameters:
      phred_offset: 33
    output:
      num_reads: 4
      r1_phred_scores:
        - [0, 0, 2, 1, 1]
        - [0, 1, 1, 1, 1]
      r2_phred_scores: []
`

const pairedJSON = `[
  {"PerBaseQuality": {
    "name": "lane2",
    "parameters": {"phred_offset": 64, "trim_length": 10},
    "output": {
      "num_reads": 6,
      "r1_phred_scores": [[0, 3, 0], [0, 0, 3]],
      "r2_phred_scores": [[3, 0, 0], [1, 1, 1]]
    }
  }}
]`

func TestDecodeReportsYAML(t *testing.T) {
	records, err := DecodeReports(strings.NewReader(singleEndYAML))
	if err != nil {
		t.Fatalf("DecodeReports() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Processor != "PerBaseQuality" || rec.Name != "lane1" || rec.Index != 0 {
		t.Errorf("record = %+v", rec)
	}
	if rec.Parameters["phred_offset"] != 33 {
		t.Errorf("phred_offset = %v (%T)", rec.Parameters["phred_offset"], rec.Parameters["phred_offset"])
	}

	var out perBaseQualityOutput
	if err := rec.Output.Decode(&out); err != nil {
		t.Fatalf("Decode(output) error = %v", err)
	}
	if len(out.R1.Content) != 2 || len(out.R1.Content[0].Content) != 5 || len(out.R2.Content) != 0 {
		t.Errorf("output = %+v", out)
	}
	if out.NumReads == nil || *out.NumReads != 4 {
		t.Errorf("num_reads = %v", out.NumReads)
	}
}

func TestDecodeReportsJSON(t *testing.T) {
	records, err := DecodeReports(strings.NewReader(pairedJSON))
	if err != nil {
		t.Fatalf("DecodeReports() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "lane2" {
		t.Fatalf("records = %+v", records)
	}
	var out perBaseQualityOutput
	if err := records[0].Output.Decode(&out); err != nil {
		t.Fatalf("Decode(output) error = %v", err)
	}
	if len(out.R2.Content) != 2 {
		t.Errorf("r2 rows = %d, want 2", len(out.R2.Content))
	}
}

func TestDecodeReportsErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "no reports"},
		{name: "empty list", in: "[]", want: "no reports"},
		{name: "mapping root", in: "PerBaseQuality: {name: x}", want: "list of reports"},
		{name: "two keys", in: "- {A: {name: a}, B: {name: b}}", want: "exactly one processor key"},
		{name: "scalar item", in: "- hello", want: "exactly one processor key"},
		{name: "bad payload", in: "- PerBaseQuality: [1, 2]", want: "report #0 (PerBaseQuality)"},
		{name: "syntax", in: "- [unclosed", want: "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReports(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("DecodeReports() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadReportsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yml")
	if err := os.WriteFile(path, []byte(singleEndYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := LoadReports(path)
	if err != nil {
		t.Fatalf("LoadReports() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}

	if _, err := LoadReports(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("LoadReports(missing) error = nil, want error")
	}
}
