package detect

import (
	"math"
	"sort"

	"cellquant/pkg/imgproc"
	"cellquant/pkg/regions"
)

// Segmentation is the nucleus segmenter output consumed by every
// nucleus-relative stage downstream.
type Segmentation struct {
	// Mask is the final nuclear mask after all exclusions and merging.
	Mask *imgproc.Mask

	// Labels is the label map of Mask.
	Labels *regions.LabelMap

	// Nuclei are the extracted records with polar boundary profiles,
	// ordered by label.
	Nuclei []*regions.NucleusRecord
}

// Centroids returns the nucleus centroids in label order.
func (s *Segmentation) Centroids() []regions.Point {
	pts := make([]regions.Point, len(s.Nuclei))
	for i, n := range s.Nuclei {
		pts[i] = n.Centroid
	}
	return pts
}

// SegmentNuclei labels nuclei in the nuclear channel. The channel is
// adaptively equalized, binarized at a relaxed Otsu threshold, cleaned
// (fill holes, drop debris, clear border-touching components), filtered
// by centroid border margin, optionally run through the small-nucleus
// merge heuristic, and finally relabeled and profiled. Zero detected
// nuclei is a valid degenerate outcome, not an error.
func SegmentNuclei(nuclear *imgproc.Field, p NucleusParams) *Segmentation {
	enhanced := imgproc.AdaptiveEqualize(nuclear, p.TilesX, p.TilesY, p.ClipLimit)

	threshold := imgproc.OtsuThreshold(enhanced) * p.OtsuScale
	mask := imgproc.Binarize(enhanced, threshold)
	mask = imgproc.FillHoles(mask)
	mask = imgproc.RemoveSmallObjects(mask, p.MinArea)
	mask = imgproc.ClearBorder(mask)

	mask = excludeBorderCentroids(mask, p.BorderMargin)

	if p.MergeSmall {
		mask = mergeSmallNuclei(mask, p)
	}

	lm, err := regions.Label(mask)
	if err != nil {
		return &Segmentation{Mask: mask, Labels: &regions.LabelMap{Width: mask.Width, Height: mask.Height}}
	}
	return &Segmentation{
		Mask:   mask,
		Labels: lm,
		Nuclei: regions.ExtractNuclei(lm),
	}
}

// excludeBorderCentroids removes components whose centroid lies within
// margin pixels of any image edge.
func excludeBorderCentroids(mask *imgproc.Mask, margin int) *imgproc.Mask {
	if margin <= 0 {
		return mask
	}
	lm, err := regions.Label(mask)
	if err != nil || lm.N == 0 {
		return mask
	}
	out := mask.Clone()
	for _, r := range regions.Extract(lm) {
		nearBorder := r.Centroid.X < float64(margin) ||
			r.Centroid.Y < float64(margin) ||
			r.Centroid.X > float64(mask.Width-1-margin) ||
			r.Centroid.Y > float64(mask.Height-1-margin)
		if nearBorder {
			for _, idx := range r.Pixels {
				out.Pix[idx] = false
			}
		}
	}
	return out
}

// mergeSmallNuclei applies the small-object merge heuristic: nuclei
// below MergeAreaFraction of the median area keep their pixels in the
// output mask only when their centroid sits within MergeDist of a large
// nucleus centroid; stranded small nuclei are dropped.
func mergeSmallNuclei(mask *imgproc.Mask, p NucleusParams) *imgproc.Mask {
	lm, err := regions.Label(mask)
	if err != nil || lm.N < 2 {
		return mask
	}
	recs := regions.Extract(lm)

	areas := make([]float64, len(recs))
	for i, r := range recs {
		areas[i] = float64(r.Area)
	}
	sort.Float64s(areas)
	median := areas[len(areas)/2]
	if len(areas)%2 == 0 {
		median = (areas[len(areas)/2-1] + areas[len(areas)/2]) / 2
	}

	cutoff := p.MergeAreaFraction * median
	var large []*regions.RegionRecord
	var small []*regions.RegionRecord
	for _, r := range recs {
		if float64(r.Area) < cutoff {
			small = append(small, r)
		} else {
			large = append(large, r)
		}
	}
	if len(small) == 0 {
		return mask
	}

	out := mask.Clone()
	for _, s := range small {
		keep := false
		for _, l := range large {
			d := math.Hypot(s.Centroid.X-l.Centroid.X, s.Centroid.Y-l.Centroid.Y)
			if d <= p.MergeDist {
				keep = true
				break
			}
		}
		if !keep {
			for _, idx := range s.Pixels {
				out.Pix[idx] = false
			}
		}
	}
	return out
}
