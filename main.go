package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qc_buddy_go/benchmark"
	"qc_buddy_go/config"
	"qc_buddy_go/utils"
)

// Define color functions
var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// Global flags
var (
	benchmarking bool
	verbose      bool
)

// printCustomHelp formats a custom help menu
func printCustomHelp(cmd *cobra.Command, args []string) {
	if cmd.HasParent() {
		if cmd.Long != "" {
			fmt.Printf("%s\n\n", cmd.Long)
		}
		fmt.Print(cmd.UsageString())
		return
	}
	fmt.Printf(`
%s

%s
  qc_buddy <tool> [options]

%s
  %s
  %s
  %s

%s
  %s
  %s
  %s

%s
  # Single-end run, straight through to HTML
  %s
  %s

`,
		bold(cyan("QC Buddy")+" - Per-base quality reports for sequencing reads"),
		bold(yellow("Usage:")),
		bold(yellow("Tools:")),
		cyan("measure")+"   Build per-base quality histograms from FASTQ",
		cyan("render")+"    Render a results file (YAML/JSON) to an HTML report",
		cyan("version")+"   Show version information",
		bold(yellow("Global Flags:")),
		cyan("-h, --help")+"      Show this help message",
		cyan("--benchmark")+"     Report runtime and memory usage of the tool",
		cyan("-v, --verbose")+"   Debug logging",
		bold(yellow("Usage examples:")),
		cyan("qc_buddy measure -1 reads.fq.gz -o results.yml"),
		cyan("qc_buddy render -i results.yml -o report.html"),
	)
}

func printVersion() {
	fmt.Println("QC Buddy - Version Information Menu")
	fmt.Println("Central Executable:")
	fmt.Printf("\tQC Buddy:\t\t%s\n", config.Main_version)
	fmt.Printf("\nModular tools:\n")
	fmt.Printf("\tMeasure:\t\t%s\n", config.Measure)
	fmt.Printf("\tRender:\t\t\t%s\n", config.Render)
	fmt.Printf("\tPercentile:\t\t%s\n", config.Percentile)
	fmt.Printf("\tBenchmark:\t\t%s\n", config.Benchmark)
	fmt.Println("")
}

// runTool builds the logger and runs f, wrapped in a benchmark when requested
func runTool(cmd *cobra.Command, args []string, f func(logger *zap.Logger) error) error {
	logger, err := utils.NewLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	if !benchmarking {
		return f(logger)
	}
	label := fmt.Sprintf("qc_buddy %s %s", cmd.Name(), strings.Join(args, " "))
	_, err = benchmark.Run(label, logger, func() error { return f(logger) })
	return err
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

// Main controller
func main() {
	rootCmd := &cobra.Command{
		Use:           "qc_buddy",
		Short:         bold("Per-base quality reports for sequencing reads"),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			printCustomHelp(cmd, args)
		},
	}
	rootCmd.SetHelpFunc(printCustomHelp)

	pflags := rootCmd.PersistentFlags()
	pflags.BoolVar(&benchmarking, "benchmark", false, "Report runtime and memory usage of the tool")
	pflags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		MeasureCommand(),
		RenderCommand(),
		versionCommand(),
	)

	// Custom error handling
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		fmt.Fprintln(os.Stderr, red("Try 'qc_buddy --help' for more information"))
		os.Exit(1)
	}
}
