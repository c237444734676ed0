package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"cellquant/pkg/analysis"
	"cellquant/pkg/config"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing fluorescence microscopy images")
	outputDir := flag.String("output", "results", "Directory for workbooks and overlay exports")
	configPath := flag.String("config", "cellquant.yaml", "Path to YAML configuration file")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	batchName := flag.String("batch", "", "Batch name for the aggregated workbook (default: input directory name)")
	numCores := flag.Int("cores", 0, "Number of images to process concurrently (default: config value)")
	details := flag.Bool("details", false, "Write a per-image detail workbook alongside the aggregated one")
	overlays := flag.Bool("overlays", false, "Export QA overlay images")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if *debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatal().Err(err).Msg("failed to write default configuration")
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if cfg.Processing.NumCores < 1 {
		cfg.Processing.NumCores = runtime.NumCPU()
	}
	if *overlays {
		cfg.Processing.SaveOverlays = true
	}

	// Ctrl-C finishes in-flight images and writes the report for what
	// completed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := analysis.NewBatch(analysis.BatchParams{
		InputDir:     *inputDir,
		OutputDir:    *outputDir,
		BatchName:    *batchName,
		WriteDetails: *details,
	}, cfg, log)

	startTime := time.Now()
	summary, err := batch.Run(ctx)
	if err != nil && (summary == nil || summary.Processed == 0) {
		log.Fatal().Err(err).Msg("batch failed")
	}

	fmt.Printf("\nAnalysis completed in %.2f seconds\n", time.Since(startTime).Seconds())
	fmt.Printf("Images processed: %d (failed: %d)\n", summary.Processed, summary.Failed)
	if summary.AggregatedPath != "" {
		fmt.Printf("Aggregated report: %s\n", summary.AggregatedPath)
	}
	if err != nil {
		// Cancellation or partial failure still produced a report.
		log.Warn().Err(err).Msg("batch finished with errors")
		os.Exit(1)
	}
}
