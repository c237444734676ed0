// Package coloc quantifies colocalization between two fluorescence
// channels: a detection sub-mode producing filtered intersection
// regions and a metrics sub-mode computing intensity-correlation
// statistics over a mask.
package coloc

import (
	"cellquant/pkg/detect"
	"cellquant/pkg/imgproc"
	"cellquant/pkg/regions"
)

// DetectParams configures the detection sub-mode.
type DetectParams struct {
	// DilateRadius is the light pre-dilation applied to both masks to
	// tolerate registration drift between channels.
	DilateRadius int `yaml:"dilateRadius"`

	// MinPixels removes intersection specks before labeling.
	MinPixels int `yaml:"minPixels"`

	// Filter is the shape filter pass applied to intersection regions.
	Filter detect.FilterParams `yaml:"filter"`
}

// DefaultDetectParams returns the documented detection defaults:
// radius-1 dilation, 5 px minimum, area 20-300 / ecc < 0.85 /
// solidity > 0.7 filtering.
func DefaultDetectParams() DetectParams {
	return DetectParams{
		DilateRadius: 1,
		MinPixels:    5,
		Filter:       detect.ColocFilterParams(),
	}
}

// Detection is the detection sub-mode output.
type Detection struct {
	// Mask is the cleaned intersection mask.
	Mask *imgproc.Mask

	// Labels is the label map of Mask.
	Labels *regions.LabelMap

	// Regions are the intersection regions surviving the shape filter.
	Regions []*regions.RegionRecord
}

// Detect intersects two candidate masks after a light dilation, cleans
// and labels the intersection, and applies the shape filter pass.
// Mismatched mask sizes or empty inputs yield an empty detection.
func Detect(a, b *imgproc.Mask, p DetectParams) *Detection {
	out := &Detection{}

	da := imgproc.Dilate(a, p.DilateRadius)
	db := imgproc.Dilate(b, p.DilateRadius)
	mask := imgproc.And(da, db)
	if mask == nil {
		return out
	}

	mask = imgproc.RemoveSmallObjects(mask, p.MinPixels)
	mask = imgproc.FillHoles(mask)
	out.Mask = mask

	lm, err := regions.Label(mask)
	if err != nil {
		return out
	}
	out.Labels = lm

	recs := regions.Extract(lm)
	out.Regions = detect.ApplyFilter(recs, p.Filter, detect.FilterContext{})
	return out
}
