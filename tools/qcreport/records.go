package qcreport

import (
	"errors"
	"fmt"
	"io"

	"github.com/shenwei356/xopen"
	"gopkg.in/yaml.v3"
)

// Record is one entry of a results file: a processor tag and its payload.
// Output stays undecoded; the renderer for Processor knows its shape.
type Record struct {
	Index      int
	Processor  string
	Name       string
	Parameters map[string]any
	Output     yaml.Node
}

type recordPayload struct {
	Name       string         `yaml:"name"`
	Parameters map[string]any `yaml:"parameters"`
	Output     yaml.Node      `yaml:"output"`
}

// LoadReports reads a YAML or JSON results file. Compressed input and "-" for
// stdin are handled by xopen.
func LoadReports(path string) ([]Record, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer fh.Close()

	records, err := DecodeReports(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// DecodeReports parses a sequence of single-key mappings:
//
//	- PerBaseQuality:
//	    name: ...
//	    parameters: {...}
//	    output: {...}
func DecodeReports(r io.Reader) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("results file holds no reports")
		}
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("results must be a list of reports (line %d)", root.Line)
	}
	if len(root.Content) == 0 {
		return nil, errors.New("results file holds no reports")
	}

	records := make([]Record, 0, len(root.Content))
	for i, item := range root.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return nil, fmt.Errorf("report #%d (line %d): want exactly one processor key", i, item.Line)
		}
		key, value := item.Content[0], item.Content[1]

		var payload recordPayload
		if err := value.Decode(&payload); err != nil {
			return nil, fmt.Errorf("report #%d (%s): %w", i, key.Value, err)
		}
		if payload.Parameters == nil {
			payload.Parameters = map[string]any{}
		}
		records = append(records, Record{
			Index:      i,
			Processor:  key.Value,
			Name:       payload.Name,
			Parameters: payload.Parameters,
			Output:     payload.Output,
		})
	}
	return records, nil
}
