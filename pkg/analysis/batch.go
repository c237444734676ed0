package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"cellquant/internal/models"
	"cellquant/pkg/config"
	"cellquant/pkg/imgio"
	"cellquant/pkg/report"
)

// BatchParams configures a batch run over a directory of images.
type BatchParams struct {
	// InputDir is the directory holding the source images.
	InputDir string

	// OutputDir receives the workbooks and overlay exports.
	OutputDir string

	// BatchName names the aggregated workbook; defaults to the input
	// directory basename.
	BatchName string

	// WriteDetails enables the per-image detail workbooks in addition
	// to the aggregated one.
	WriteDetails bool
}

// BatchSummary reports what a batch run produced.
type BatchSummary struct {
	// Processed counts images analyzed successfully.
	Processed int

	// Failed counts images that errored, shape errors included.
	Failed int

	// AggregatedPath is the written batch workbook.
	AggregatedPath string
}

// Batch runs the analyzer over every supported image in a directory
// using a bounded worker pool. Cancellation is observed between
// images: in-flight images finish, queued ones are abandoned.
// Individual image failures are logged and counted but do not abort
// the batch; the aggregated workbook covers the successes.
type Batch struct {
	params   BatchParams
	cfg      *config.Config
	log      zerolog.Logger
	analyzer *Analyzer
}

// NewBatch creates a batch runner.
func NewBatch(params BatchParams, cfg *config.Config, log zerolog.Logger) *Batch {
	if params.BatchName == "" {
		params.BatchName = filepath.Base(filepath.Clean(params.InputDir))
	}
	return &Batch{
		params:   params,
		cfg:      cfg,
		log:      log,
		analyzer: NewAnalyzer(cfg, params.OutputDir, log),
	}
}

// Run executes the batch and writes the aggregated workbook.
func (b *Batch) Run(ctx context.Context) (*BatchSummary, error) {
	paths, err := imgio.ListImages(b.params.InputDir)
	if err != nil {
		return nil, err
	}
	b.log.Info().
		Int("images", len(paths)).
		Int("workers", b.workers()).
		Msg("starting batch")

	jobs := make(chan string)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var results []*models.ImageResult
	failed := 0

	for w := 0; w < b.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				res, err := b.processOne(path)

				mu.Lock()
				if err != nil {
					failed++
				} else {
					results = append(results, res)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, path := range paths {
		select {
		case <-ctx.Done():
			b.log.Warn().Msg("batch cancelled, abandoning queued images")
			break feed
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	// Worker completion order depends on scheduling; sort so the
	// workbook row order is stable.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Sample.Name < results[j].Sample.Name
	})

	summary := &BatchSummary{Processed: len(results), Failed: failed}
	if len(results) == 0 {
		return summary, fmt.Errorf("no images analyzed successfully in %s", b.params.InputDir)
	}

	aggPath, err := report.WriteAggregated(results, b.params.OutputDir, b.params.BatchName)
	if err != nil {
		return summary, fmt.Errorf("failed to write aggregated report: %w", err)
	}
	summary.AggregatedPath = aggPath

	b.log.Info().
		Int("processed", summary.Processed).
		Int("failed", summary.Failed).
		Str("report", aggPath).
		Msg("batch complete")
	return summary, ctx.Err()
}

// processOne loads, analyzes, and optionally reports a single image.
func (b *Batch) processOne(path string) (*models.ImageResult, error) {
	sample := models.NewSample(path)
	log := b.log.With().Str("image", sample.Name).Logger()

	img, err := imgio.Load(path)
	if err != nil {
		log.Error().Err(err).Msg("failed to load image")
		return nil, err
	}

	res, err := b.analyzer.Analyze(sample, img)
	if err != nil {
		if IsShapeError(err) {
			log.Error().Err(err).Msg("skipping image with unsupported shape")
		} else {
			log.Error().Err(err).Msg("analysis failed")
		}
		return nil, err
	}

	if b.params.WriteDetails {
		if _, err := report.WriteImageDetail(res, filepath.Join(b.params.OutputDir, "details")); err != nil {
			// Detail export is best-effort; the aggregated row stands.
			log.Warn().Err(err).Msg("failed to write detail workbook")
		}
	}
	return res, nil
}

func (b *Batch) workers() int {
	n := b.cfg.Processing.NumCores
	if n < 1 {
		n = 1
	}
	return n
}
