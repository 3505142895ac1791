package qcreport

import (
	"embed"
	"fmt"
	"html/template"
	"sort"

	"go.uber.org/zap"

	"qc_buddy_go/config"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets/qcchart.js
var chartScript string

//go:embed assets/qcreport.css
var reportStyle string

// Environment carries everything rendering needs: settings, parsed templates,
// bundled client assets and the renderer registry. Build it once per run.
type Environment struct {
	Config config.Config
	Logger *zap.Logger

	templates *template.Template
	script    template.JS
	style     template.CSS
	renderers map[string]Renderer
}

// NewEnvironment validates cfg and parses the embedded templates
func NewEnvironment(cfg config.Config, logger *zap.Logger) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := template.New("qcreport").Funcs(template.FuncMap{
		"fixed": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Environment{
		Config:    cfg,
		Logger:    logger,
		templates: tmpl,
		script:    template.JS(chartScript),
		style:     template.CSS(reportStyle),
		renderers: defaultRenderers(),
	}, nil
}

// Renderer looks up the handler for a processor tag
func (e *Environment) Renderer(processor string) (Renderer, error) {
	r, ok := e.renderers[processor]
	if !ok {
		return nil, &UnknownProcessorError{Processor: processor, Known: e.Processors()}
	}
	return r, nil
}

// Processors lists the registered processor tags
func (e *Environment) Processors() []string {
	tags := make([]string, 0, len(e.renderers))
	for tag := range e.renderers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
