// Subcommand (`qc_buddy measure`) collecting per-base quality histograms from FASTQ

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qc_buddy_go/tools/measure"
)

// MeasureCommand creates the `measure` subcommand, which writes the results
// file consumed by `render`
func MeasureCommand() *cobra.Command {
	var opts measure.Options

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Build per-base quality histograms from FASTQ",
		Long: `Count, for every read position, how many bases carry each PHRED score.
Paired-end data is given as two files whose records are paired by position.
Input may be plain, gzip, xz, zstd or bzip2 compressed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, args, func(logger *zap.Logger) error {
				if err := measure.Run(opts, logger); err != nil {
					return err
				}
				if opts.OutFile != "-" {
					fmt.Fprintf(os.Stderr, "%s %s\n", green("Wrote results file:"), opts.OutFile)
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.R1File, "r1", "1", "", "FASTQ file, or R1 of a pair (required, use - for stdin)")
	flags.StringVarP(&opts.R2File, "r2", "2", "", "R2 FASTQ file for paired-end data")
	flags.StringVarP(&opts.OutFile, "out", "o", "-", "Output results file (- for stdout, .gz to compress)")
	flags.StringVarP(&opts.Name, "name", "n", "", "Report name (default: R1 file name)")
	flags.IntVarP(&opts.PhredOffset, "phred-offset", "p", measure.DefaultPhredOffset, "ASCII offset of quality scores")
	cmd.MarkFlagRequired("r1")

	return cmd
}
