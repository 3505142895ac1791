package qcreport

import "html/template"

// Renderer turns one record into an HTML fragment for the root template
type Renderer interface {
	Render(env *Environment, rec Record) (template.HTML, error)
}

// Processor tags understood by this build
const (
	ProcessorPerBaseQuality = "PerBaseQuality"
)

// Adding a report type means adding a tag and its handler here
func defaultRenderers() map[string]Renderer {
	return map[string]Renderer{
		ProcessorPerBaseQuality: perBaseQuality{},
	}
}
