package measure

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"qc_buddy_go/tools/qcreport"
)

// Options for one measurement run. R2File is empty for single-end data.
type Options struct {
	R1File      string
	R2File      string
	OutFile     string
	Name        string
	PhredOffset int
}

// Run reads FASTQ input (plain or compressed, "-" for stdin) and writes a results file
func Run(opts Options, logger *zap.Logger) error {
	if opts.R1File == "" {
		return errors.New("an R1 input file is required")
	}
	if opts.PhredOffset <= 0 {
		opts.PhredOffset = DefaultPhredOffset
	}
	if opts.Name == "" {
		opts.Name = defaultName(opts.R1File)
	}

	pbq := NewPerBaseQuality(opts.PhredOffset)
	var err error
	if opts.R2File == "" {
		err = measureSingle(pbq, opts.R1File)
	} else {
		err = measurePaired(pbq, opts.R1File, opts.R2File)
	}
	if err != nil {
		return err
	}
	if pbq.NumReads() == 0 {
		return fmt.Errorf("no reads in %s", opts.R1File)
	}
	logger.Info("measured reads",
		zap.String("name", opts.Name),
		zap.Int64("reads", pbq.NumReads()),
		zap.Bool("paired", opts.R2File != ""))

	return WriteReports(opts.OutFile, []map[string]Report{
		{qcreport.ProcessorPerBaseQuality: pbq.Report(opts.Name)},
	})
}

// WriteReports encodes results as YAML to outFile ("-" for stdout)
func WriteReports(outFile string, reports []map[string]Report) error {
	outfh, err := xopen.Wopen(outFile)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}

	enc := yaml.NewEncoder(outfh)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		outfh.Close()
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := enc.Close(); err != nil {
		outfh.Close()
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return outfh.Close()
}

func measureSingle(pbq *PerBaseQuality, file string) error {
	reader, err := fastx.NewDefaultReader(file)
	if err != nil {
		return fmt.Errorf("error creating reader: %w", err)
	}
	defer reader.Close()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading record: %w", err)
		}
		qual, err := qualities(record)
		if err != nil {
			return err
		}
		if err := pbq.Add(qual); err != nil {
			return fmt.Errorf("record %s: %w", record.Name, err)
		}
	}
	return nil
}

// Mates are paired by position in the two files
func measurePaired(pbq *PerBaseQuality, file1, file2 string) error {
	reader1, err := fastx.NewDefaultReader(file1)
	if err != nil {
		return fmt.Errorf("error creating R1 reader: %w", err)
	}
	defer reader1.Close()
	reader2, err := fastx.NewDefaultReader(file2)
	if err != nil {
		return fmt.Errorf("error creating R2 reader: %w", err)
	}
	defer reader2.Close()

	for n := 1; ; n++ {
		rec1, err1 := reader1.Read()
		rec2, err2 := reader2.Read()
		if err1 == io.EOF && err2 == io.EOF {
			return nil
		}
		if err1 == io.EOF || err2 == io.EOF {
			return fmt.Errorf("R1 and R2 have different numbers of records (mismatch at pair %d)", n)
		}
		if err1 != nil {
			return fmt.Errorf("error reading R1 record: %w", err1)
		}
		if err2 != nil {
			return fmt.Errorf("error reading R2 record: %w", err2)
		}

		qual1, err := qualities(rec1)
		if err != nil {
			return err
		}
		qual2, err := qualities(rec2)
		if err != nil {
			return err
		}
		if err := pbq.AddPair(qual1, qual2); err != nil {
			return fmt.Errorf("pair %d (%s): %w", n, rec1.Name, err)
		}
	}
}

// FASTA records carry no qualities and cannot be measured
func qualities(record *fastx.Record) ([]byte, error) {
	if len(record.Seq.Seq) > 0 && len(record.Seq.Qual) == 0 {
		return nil, fmt.Errorf("record %s has no quality scores (FASTA input?)", record.Name)
	}
	return record.Seq.Qual, nil
}

// "sample_R1.fastq.gz" -> "sample_R1"
func defaultName(path string) string {
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	for _, ext := range []string{".gz", ".xz", ".zst", ".bz2", ".fastq", ".fq"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
