package qcreport

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	"github.com/shenwei356/xopen"
	"go.uber.org/zap"

	"qc_buddy_go/config"
)

// renderedReport is one entry of the root template
type renderedReport struct {
	Processor string
	Name      string
	Anchor    string
	Body      template.HTML
}

type rootView struct {
	Title   string
	Version string
	Reports []renderedReport
	Script  template.JS
	Style   template.CSS
}

type renderJob struct {
	pos int
	rec Record
}

type renderResult struct {
	pos    int
	report renderedReport
	err    error
}

// RenderAll renders every record and composes the final document.
// Records are independent, so they are rendered by a small worker pool; the
// document keeps input order. The first failing record (by position) aborts.
func RenderAll(env *Environment, records []Record) (string, error) {
	// Unknown tags fail before any drawing starts
	renderers := make([]Renderer, len(records))
	for i, rec := range records {
		r, err := env.Renderer(rec.Processor)
		if err != nil {
			return "", &RecordError{Index: rec.Index, Name: rec.Name, Err: err}
		}
		renderers[i] = r
	}

	numWorkers := env.Config.Workers
	if numWorkers > len(records) {
		numWorkers = len(records)
	}
	jobs := make(chan renderJob, len(records))
	results := make(chan renderResult, len(records))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				body, err := renderers[job.pos].Render(env, job.rec)
				results <- renderResult{
					pos: job.pos,
					report: renderedReport{
						Processor: job.rec.Processor,
						Name:      job.rec.Name,
						Anchor:    anchor(job.rec),
						Body:      body,
					},
					err: err,
				}
			}
		}()
	}

	for i, rec := range records {
		jobs <- renderJob{pos: i, rec: rec}
	}
	close(jobs)
	wg.Wait()
	close(results)

	reports := make([]renderedReport, len(records))
	errs := make([]error, len(records))
	for res := range results {
		reports[res.pos] = res.report
		errs[res.pos] = res.err
	}
	for i, err := range errs {
		if err != nil {
			return "", &RecordError{Index: records[i].Index, Name: records[i].Name, Err: err}
		}
	}

	var buf bytes.Buffer
	err := env.templates.ExecuteTemplate(&buf, "root.html", rootView{
		Title:   env.Config.Title,
		Version: config.Main_version,
		Reports: reports,
		Script:  env.script,
		Style:   env.style,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderFile loads a results file and writes the HTML document to outFile ("-" for stdout)
func RenderFile(env *Environment, inFile, outFile string) error {
	records, err := LoadReports(inFile)
	if err != nil {
		return err
	}
	env.Logger.Info("loaded reports", zap.String("file", inFile), zap.Int("reports", len(records)))

	html, err := RenderAll(env, records)
	if err != nil {
		return err
	}

	outfh, err := xopen.Wopen(outFile)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	if _, err := outfh.WriteString(html); err != nil {
		outfh.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := outfh.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
