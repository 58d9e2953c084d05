// Command cardsort analyzes a card-sort study file offline. It reads a study
// document (JSON or YAML, as exported by the API or the browser editor) and
// writes the analysis tables as CSV plus the full report as JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/config"
	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
	"github.com/phrazzld/cardsort-api/internal/export"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// ReportFile is the name of the JSON report written next to the CSV tables.
const ReportFile = "analysis.json"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("missing command")
	}

	switch args[0] {
	case "analyze":
		return runAnalyze(args[1:], stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "cardsort %s\n", version)
		return nil
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cardsort analyze -in study.json|study.yaml -out dir [-size N] [-linkage single|complete|average] [-reorder=true]")
	fmt.Fprintln(w, "  cardsort version")
}

type analyzeFlags struct {
	in      string
	out     string
	format  string
	size    int
	linkage string
	reorder bool
	verbose bool
}

func parseAnalyzeFlags(args []string, stderr io.Writer) (analyzeFlags, error) {
	defaults := analysis.NewDefaultOptions()

	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f analyzeFlags
	fs.StringVar(&f.in, "in", "", "study document to analyze (required)")
	fs.StringVar(&f.out, "out", ".", "directory for the CSV tables and "+ReportFile)
	fs.StringVar(&f.format, "format", "", "document format: json or yaml (default from the file extension)")
	fs.IntVar(&f.size, "size", defaults.AnalysisSetSize, "number of cards, from the front of the deck, to analyze")
	fs.StringVar(&f.linkage, "linkage", string(defaults.Linkage), "cluster linkage: single, complete or average")
	fs.BoolVar(&f.reorder, "reorder", defaults.ReorderByDendrogram, "order the heatmap by dendrogram leaf order")
	fs.BoolVar(&f.verbose, "verbose", false, "log debug details to stderr")
	if err := fs.Parse(args); err != nil {
		return analyzeFlags{}, err
	}

	if f.in == "" {
		return analyzeFlags{}, errors.New("-in is required")
	}
	if fs.NArg() > 0 {
		return analyzeFlags{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return f, nil
}

// formatFor picks the document format from an explicit flag or from the
// input file extension.
func formatFor(flagValue, path string) (export.Format, error) {
	if flagValue != "" {
		return export.ParseFormat(flagValue)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return export.FormatYAML, nil
	default:
		return export.FormatJSON, nil
	}
}

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	f, err := parseAnalyzeFlags(args, stderr)
	if err != nil {
		return err
	}

	level := "warn"
	if f.verbose {
		level = "debug"
	}
	log, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: level}, stderr)
	if err != nil {
		return err
	}

	linkage, err := analysis.ParseLinkage(f.linkage)
	if err != nil {
		return err
	}
	format, err := formatFor(f.format, f.in)
	if err != nil {
		return err
	}

	doc, err := readDocument(f.in, format)
	if err != nil {
		return err
	}

	// The owner is irrelevant offline; ToStudy only needs a valid one.
	study, sessions, err := doc.ToStudy(uuid.New(), time.Now())
	if err != nil {
		return fmt.Errorf("invalid study document %s: %w", f.in, err)
	}
	log.Debug("study loaded",
		slog.String("name", study.Name),
		slog.Int("cards", len(study.Cards)),
		slog.Int("sessions", len(sessions)))

	report, err := analysis.NewDefaultService().Analyze(study.Cards, sessions, analysis.Options{
		AnalysisSetSize:     f.size,
		Linkage:             linkage,
		ReorderByDendrogram: f.reorder,
	})
	if err != nil {
		return err
	}

	if err := writeReport(f.out, report); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Analyzed %d of %d cards across %d sessions into %s\n",
		len(report.CardIDs), len(study.Cards), report.SessionCount, f.out)
	return nil
}

func readDocument(path string, format export.Format) (*export.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open study document: %w", err)
	}
	defer file.Close()

	doc, err := export.Decode(file, format)
	if err != nil {
		return nil, fmt.Errorf("read study document %s: %w", path, err)
	}
	return doc, nil
}

// writeReport writes every CSV table and the JSON report into dir.
func writeReport(dir string, report *analysis.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	err := export.WriteAll(report, func(name string) (io.Writer, error) {
		return os.Create(filepath.Join(dir, name))
	})
	if err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(dir, ReportFile))
	if err != nil {
		return fmt.Errorf("create %s: %w", ReportFile, err)
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", ReportFile, err)
	}
	return file.Close()
}
