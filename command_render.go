// Subcommand (`qc_buddy render`) turning a results file into an HTML report

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qc_buddy_go/config"
	"qc_buddy_go/tools/qcreport"
)

// RenderCommand creates the `render` subcommand.
//
// Settings come from the defaults, then an optional YAML config file, then
// --set key=value overrides, then the dedicated flags.
func RenderCommand() *cobra.Command {
	var (
		inFile     string
		outFile    string
		configFile string
		overrides  []string
		format     string
		title      string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a YAML/JSON results file to an HTML report",
		Long: `Render every report of a results file (as written by 'qc_buddy measure') into a
single self-contained HTML document. Each per-base quality report gets a static chart
image and an interactive chart with per-position percentile read-outs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if err := cfg.Apply(overrides); err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.ImageFormat = format
			}
			if cmd.Flags().Changed("title") {
				cfg.Title = title
			}

			return runTool(cmd, args, func(logger *zap.Logger) error {
				env, err := qcreport.NewEnvironment(cfg, logger)
				if err != nil {
					return err
				}
				if err := qcreport.RenderFile(env, inFile, outFile); err != nil {
					return err
				}
				if outFile != "-" {
					fmt.Fprintf(os.Stderr, "%s %s\n", green("Wrote HTML file:"), outFile)
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&inFile, "in", "i", "", "Results file, YAML or JSON (required, use - for stdin)")
	flags.StringVarP(&outFile, "out", "o", "-", "Output HTML file (- for stdout)")
	flags.StringVarP(&configFile, "config", "c", "", "YAML config file")
	flags.StringArrayVar(&overrides, "set", nil, "Config override key=value (repeatable)")
	flags.StringVarP(&format, "format", "f", config.FormatPNG, "Chart image format (png, svg)")
	flags.StringVarP(&title, "title", "t", "", "Report title")
	cmd.MarkFlagRequired("in")

	return cmd
}
