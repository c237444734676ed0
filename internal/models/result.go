package models

import (
	"cellquant/pkg/coloc"
	"cellquant/pkg/regions"
)

// ImageResult collects everything the pipeline measured on one image.
// The report layer flattens it into workbook rows; nothing downstream
// recomputes detection state from it.
type ImageResult struct {
	// Sample identifies the source image and its experiment tags.
	Sample Sample

	// Width and Height are the raster dimensions, kept for overlay
	// reconstruction.
	Width  int
	Height int

	// Nuclei are the segmented nuclei with boundary profiles.
	Nuclei []*regions.NucleusRecord

	// ROS are the filtered green-channel ROS regions.
	ROS []*regions.RegionRecord

	// LDGreen and LDRed are the filtered lipid-droplet regions per
	// channel.
	LDGreen []*regions.RegionRecord
	LDRed   []*regions.RegionRecord

	// DiffuseArea is the pixel count of the diffuse-staining mask after
	// cleanup; DiffuseConverged records whether clustering converged.
	DiffuseArea      int
	DiffuseConverged bool

	// ROSByNucleus groups the ROS regions by assigned nucleus.
	ROSByNucleus *regions.Grouping

	// Coloc holds the red/green colocalization regions and metrics.
	Coloc        *coloc.Detection
	ColocMetrics coloc.Metrics
}

// NumColoc returns the count of filtered colocalization regions.
func (r *ImageResult) NumColoc() int {
	if r.Coloc == nil {
		return 0
	}
	return len(r.Coloc.Regions)
}

// TotalArea sums the pixel areas of a record slice.
func TotalArea(recs []*regions.RegionRecord) int {
	total := 0
	for _, rec := range recs {
		total += rec.Area
	}
	return total
}

// TotalFluorescence sums a named mean-intensity measurement weighted by
// area, i.e. the integrated signal of the records on that channel.
// Records missing the measurement contribute zero.
func TotalFluorescence(recs []*regions.RegionRecord, name string) float64 {
	total := 0.0
	for _, rec := range recs {
		if mean, ok := rec.MeanIntensity[name]; ok {
			total += mean * float64(rec.Area)
		}
	}
	return total
}
