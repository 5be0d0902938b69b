/*
Command recordtimeline renders scheduled activities as an SVG timeline.

It reads a dataset (a CSV file or a SQLite query), turns every record with a
start date and a subject into a timeline item, and writes the drawing to a
file. Records whose end date lies on a later day become range bars; the rest
become points. With --watch the output is kept up to date as the dataset
changes.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"recordtimeline/internal/config"
	"recordtimeline/internal/control"
	"recordtimeline/internal/dataset"
	"recordtimeline/internal/host"
	"recordtimeline/internal/logging"
)

func main() {
	// Parse command line arguments
	debugFlag := flag.Bool("debug", false, "Enable debug mode for verbose output")
	inputFile := flag.String("input", "", "CSV file or SQLite database with activity records")
	configFile := flag.String("config", "", "YAML configuration file (optional)")
	outputFile := flag.String("output", "", "Output filename (optional)")
	format := flag.String("format", "svg", "Output format: svg or json")
	watch := flag.Bool("watch", false, "Keep running and re-render when the input or config changes")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "  --debug             Enable debug mode for verbose output\n")
		fmt.Fprintf(os.Stderr, "  --input <file>      CSV file or SQLite database (or dataset.path in the config)\n")
		fmt.Fprintf(os.Stderr, "  --config <file>     YAML configuration file (optional)\n")
		fmt.Fprintf(os.Stderr, "  --output <file>     Output filename (optional)\n")
		fmt.Fprintf(os.Stderr, "  --format <fmt>      svg (default) or json for the mapped items\n")
		fmt.Fprintf(os.Stderr, "  --watch             Re-render when the input or config file changes\n")
		fmt.Fprintf(os.Stderr, "\nIf no output file is specified, the input filename with a .svg or .json extension is used.\n")
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s --input activities.csv --config config.yaml --output timeline.svg\n", os.Args[0])
	}

	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *inputFile != "" {
		cfg.Dataset.Path = *inputFile
	}
	if *watch {
		cfg.Host.Watch = true
	}
	if *debugFlag {
		cfg.Log.Level = "debug"
	}

	// Validate required arguments
	if cfg.Dataset.Path == "" {
		fmt.Fprintf(os.Stderr, "Error: an input file is required. Use --input to specify the file.\n\n")
		flag.Usage()
		os.Exit(1)
	}
	*format = strings.ToLower(*format)
	if *format != "svg" && *format != "json" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n\n", *format)
		flag.Usage()
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Console: cfg.Log.Console}, os.Stderr)
	log.Debug().Str("input", cfg.Dataset.Path).Str("format", *format).Msg("configuration loaded")

	src, err := dataset.Open(cfg.DatasetSource())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening dataset: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	var ctrl control.Control
	switch *format {
	case "json":
		ctrl = control.NewItemList(cfg.MapperConfig(), log)
	default:
		ctrl = control.NewTimeline(control.TimelineOptions{
			Mapper:          cfg.MapperConfig(),
			Widget:          cfg.WidgetOptions(),
			RefreshOnUpdate: cfg.Timeline.RefreshOnUpdate,
			Logger:          log,
		})
	}

	outputPath := getOutputFilename(cfg.Dataset.Path, *outputFile, *format)
	sink := &host.FileSink{Path: outputPath, Log: log}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := host.New(host.OptionsFromConfig(cfg, *configFile), src, ctrl, sink, log)
	if err := h.Run(ctx); err != nil {
		log.Error().Err(err).Msg("timeline generation failed")
		stop()
		_ = src.Close()
		os.Exit(1)
	}
}

// getOutputFilename determines the output filename. If outputFile is not
// empty it is used as is; otherwise the input filename's extension is
// replaced with the format (e.g. "data.csv" becomes "data.svg").
func getOutputFilename(inputFile, outputFile, format string) string {
	if outputFile != "" {
		return outputFile
	}

	base := filepath.Base(inputFile)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + format
}
