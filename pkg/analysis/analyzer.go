// Package analysis orchestrates the full quantification pipeline for
// fluorescence microscopy images: nucleus segmentation on the nuclear
// channel, punctate and diffuse detection on the marker channels, the
// shape/context filter pass, nucleus assignment, colocalization, and
// report/overlay export.
//
// The per-image stages run in a fixed dependency order so results are
// reproducible regardless of batch scheduling.
package analysis

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"cellquant/internal/models"
	"cellquant/pkg/assign"
	"cellquant/pkg/coloc"
	"cellquant/pkg/config"
	"cellquant/pkg/detect"
	"cellquant/pkg/imgio"
	"cellquant/pkg/imgproc"
	"cellquant/pkg/overlay"
	"cellquant/pkg/regions"
)

// Analyzer runs the quantification pipeline on single images. It is
// safe for concurrent use: all state is read-only configuration, and
// every Analyze call works on its own buffers.
type Analyzer struct {
	cfg *config.Config
	log zerolog.Logger

	// outputDir receives overlay exports when enabled.
	outputDir string
}

// NewAnalyzer creates an analyzer with the provided configuration.
func NewAnalyzer(cfg *config.Config, outputDir string, log zerolog.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, log: log, outputDir: outputDir}
}

// Analyze runs the complete per-image pipeline and returns the
// measured result. Grayscale sources fail with a ShapeError; detector
// degeneracies (no nuclei, empty masks) degrade to empty results
// instead of failing.
func (a *Analyzer) Analyze(sample models.Sample, img *imgio.RGBImage) (*models.ImageResult, error) {
	if img.Grayscale {
		return nil, &ShapeError{Path: sample.Path, Reason: "single-channel grayscale source, three channels required"}
	}

	log := a.log.With().Str("image", sample.Name).Logger()
	result := &models.ImageResult{
		Sample: sample,
		Width:  img.Width,
		Height: img.Height,
	}

	// Stage 1: nucleus segmentation on the nuclear channel.
	seg := detect.SegmentNuclei(img.Blue, a.cfg.Nucleus)
	result.Nuclei = seg.Nuclei
	log.Debug().Int("nuclei", len(seg.Nuclei)).Msg("segmented nuclei")

	// Stage 2: channel enhancement for the marker detectors.
	enh := a.cfg.EnhanceParams()
	greenEnhanced := imgproc.EnhanceChannel(img.Green, enh)
	redEnhanced := imgproc.EnhanceChannel(img.Red, enh)

	// Texture map of the raw green channel, shared by the texture
	// predicates.
	texture := imgproc.EntropyFilter(img.Green, a.cfg.Texture.Radius)

	greenCtx := detect.FilterContext{
		NucleusMask:      seg.Mask,
		NucleusCentroids: seg.Centroids(),
		Texture:          texture,
		Raw:              img.Green,
	}
	redCtx := detect.FilterContext{
		NucleusMask:      seg.Mask,
		NucleusCentroids: seg.Centroids(),
		Raw:              img.Red,
	}

	// Stage 3: punctate detection per channel.
	rosMask := detect.DetectBlobs(greenEnhanced, a.cfg.ROS.Blob)
	result.ROS = a.filterRegions(rosMask, a.cfg.ROS.Filter, greenCtx)
	regions.AddMeanIntensity(result.ROS, img.Green, "green")
	log.Debug().Int("ros", len(result.ROS)).Msg("detected ROS regions")

	ldGreenMask := detect.DetectBlobs(greenEnhanced, a.cfg.LDGreen.Blob)
	result.LDGreen = a.filterRegions(ldGreenMask, a.cfg.LDGreen.Filter, greenCtx)
	regions.AddMeanIntensity(result.LDGreen, img.Green, "green")

	dogMask := detect.DetectBlobs(redEnhanced, a.cfg.LDRed.Blob)
	sdogMask := detect.DetectBlobsSDOG(redEnhanced, a.cfg.LDRed.SDOG)
	redMask := detect.CombineRedMasks(dogMask, sdogMask, img.Red, a.cfg.LDRed.IntensityThreshold)
	result.LDRed = a.filterRegions(redMask, a.cfg.LDRed.Filter, redCtx)
	regions.AddMeanIntensity(result.LDRed, img.Red, "red")
	log.Debug().
		Int("ldGreen", len(result.LDGreen)).
		Int("ldRed", len(result.LDRed)).
		Msg("detected lipid droplets")

	// Stage 4: diffuse staining on the grayscale composite.
	gray := img.Gray()
	diffuse := detect.DetectDiffuse(gray, a.cfg.Diffuse.Params)
	diffuseCtx := detect.FilterContext{
		NucleusMask:      seg.Mask,
		NucleusCentroids: seg.Centroids(),
		Raw:              gray,
	}
	diffuseRegions := a.filterRegions(diffuse.Mask, a.cfg.Diffuse.Filter, diffuseCtx)
	result.DiffuseArea = models.TotalArea(diffuseRegions)
	result.DiffuseConverged = diffuse.Converged
	if !diffuse.Converged {
		log.Warn().Msg("diffuse clustering hit iteration budget")
	}

	// Stage 5: nucleus assignment and grouping.
	assign.ToNearestNucleus(result.ROS, seg.Nuclei)
	assign.ToNearestNucleus(result.LDGreen, seg.Nuclei)
	assign.ToNearestNucleus(result.LDRed, seg.Nuclei)
	result.ROSByNucleus = assign.GroupByNucleus(result.ROS, len(seg.Nuclei))

	// Stage 6: red/green colocalization over the filtered LD masks.
	redFinal := maskFromRecords(result.LDRed, img.Width, img.Height)
	greenFinal := maskFromRecords(result.LDGreen, img.Width, img.Height)
	result.Coloc = coloc.Detect(redFinal, greenFinal, a.cfg.Coloc.Detect)
	result.ColocMetrics = coloc.ComputeMetrics(img.Red, img.Green, result.Coloc.Mask, a.cfg.Coloc.Metrics)
	for _, rec := range result.Coloc.Regions {
		assignRecordIntensities(rec, img)
	}
	log.Debug().Int("coloc", result.NumColoc()).Msg("colocalization complete")

	// Stage 7: QA overlay export.
	if a.cfg.Processing.SaveOverlays {
		if err := a.saveOverlays(result, seg, img); err != nil {
			// Overlay export is best-effort; the measurements stand.
			log.Warn().Err(err).Msg("overlay export failed")
		}
	}

	return result, nil
}

// filterRegions labels a candidate mask, extracts properties, and
// applies the shape/context filter. A nil or empty mask yields no
// regions.
func (a *Analyzer) filterRegions(mask *imgproc.Mask, p detect.FilterParams, ctx detect.FilterContext) []*regions.RegionRecord {
	if mask == nil {
		return nil
	}
	lm, err := regions.Label(mask)
	if err != nil || lm.N == 0 {
		return nil
	}
	return detect.ApplyFilter(regions.Extract(lm), p, ctx)
}

// maskFromRecords paints the pixels of filtered records back into a
// binary mask, so downstream mask operations see only survivors.
func maskFromRecords(recs []*regions.RegionRecord, width, height int) *imgproc.Mask {
	m := imgproc.NewMask(width, height)
	for _, r := range recs {
		for _, idx := range r.Pixels {
			m.Pix[idx] = true
		}
	}
	return m
}

// assignRecordIntensities attaches both marker means to a record.
func assignRecordIntensities(rec *regions.RegionRecord, img *imgio.RGBImage) {
	if rec.MeanIntensity == nil {
		rec.MeanIntensity = make(map[string]float64, 2)
	}
	rec.MeanIntensity["green"] = regions.MeanPixelIntensity(rec.Pixels, img.Green)
	rec.MeanIntensity["red"] = regions.MeanPixelIntensity(rec.Pixels, img.Red)
}

// saveOverlays writes the QA exports: reconstructed size-tier disks for
// each detector and a nucleus label overlay.
func (a *Analyzer) saveOverlays(result *models.ImageResult, seg *detect.Segmentation, img *imgio.RGBImage) error {
	dir := filepath.Join(a.outputDir, "overlays", result.Sample.Name)

	exports := []struct {
		name string
		recs []*regions.RegionRecord
	}{
		{"ros", result.ROS},
		{"ld_green", result.LDGreen},
		{"ld_red", result.LDRed},
	}
	for _, e := range exports {
		_, disks := overlay.Reconstruct(e.recs, result.Width, result.Height)
		if err := overlay.SavePNG(disks, filepath.Join(dir, e.name+".png")); err != nil {
			return fmt.Errorf("failed to export %s overlay: %w", e.name, err)
		}
	}

	if seg.Labels != nil && seg.Labels.N > 0 {
		labels := overlay.LabelOverlay(seg.Labels, img.Blue, a.cfg.Processing.OverlayAlpha)
		if err := overlay.SavePNG(labels, filepath.Join(dir, "nuclei.png")); err != nil {
			return fmt.Errorf("failed to export nucleus overlay: %w", err)
		}
	}

	if result.Coloc != nil && result.Coloc.Mask != nil {
		if err := overlay.SavePNG(overlay.MaskImage(result.Coloc.Mask), filepath.Join(dir, "coloc.png")); err != nil {
			return fmt.Errorf("failed to export colocalization mask: %w", err)
		}
	}
	return nil
}
