package detect

import (
	"math"

	"cellquant/pkg/imgproc"
	"cellquant/pkg/regions"
)

// circularityEps keeps the circularity ratio finite for degenerate
// perimeters.
const circularityEps = 1e-9

// FilterContext carries the per-image context the shape/context filter
// needs beyond the records themselves. Raw must be the unenhanced
// source channel; Texture, when a texture predicate is active, is the
// local-entropy map of that channel.
type FilterContext struct {
	// NucleusMask enables the overlap exclusion; nil disables it.
	NucleusMask *imgproc.Mask

	// NucleusCentroids enable the distance predicate. With the distance
	// predicate active and no nuclei present, every region fails.
	NucleusCentroids []regions.Point

	// Texture is the normalized local-entropy map of the source channel.
	Texture *imgproc.Field

	// Raw is the unenhanced source channel, used for the local
	// background ring measurement.
	Raw *imgproc.Field
}

// ApplyFilter evaluates the conjunctive predicate set on every record
// and returns the survivors in input order. All active predicates must
// pass; there is no partial credit. The input records are not modified.
func ApplyFilter(records []*regions.RegionRecord, p FilterParams, ctx FilterContext) []*regions.RegionRecord {
	var out []*regions.RegionRecord
	for _, r := range records {
		if acceptRegion(r, p, ctx) {
			out = append(out, r)
		}
	}
	return out
}

func acceptRegion(r *regions.RegionRecord, p FilterParams, ctx FilterContext) bool {
	// Area bounds are inclusive on both ends.
	if r.Area < p.MinArea {
		return false
	}
	if p.MaxArea > 0 && r.Area > p.MaxArea {
		return false
	}

	if p.MinCircularity > 0 {
		circularity := 4 * math.Pi * float64(r.Area) / (r.Perimeter*r.Perimeter + circularityEps)
		if circularity <= p.MinCircularity {
			return false
		}
	}
	if p.MaxEccentricity > 0 && r.Eccentricity >= p.MaxEccentricity {
		return false
	}
	if p.MinSolidity > 0 && r.Solidity <= p.MinSolidity {
		return false
	}

	if p.MinTextureScore > 0 && ctx.Texture != nil {
		if regionMean(r, ctx.Texture) <= p.MinTextureScore {
			return false
		}
	}

	if p.ExcludeNucleusOverlap && ctx.NucleusMask != nil {
		for _, idx := range r.Pixels {
			if ctx.NucleusMask.Pix[idx] {
				return false
			}
		}
	}

	if p.MaxDistLowBg > 0 {
		dist, ok := nearestNucleusDistance(r, ctx.NucleusCentroids)
		if !ok {
			// Distance predicate active but no nuclei to measure against.
			return false
		}
		maxDist := p.MaxDistLowBg
		if ctx.Raw != nil && ringBackground(r, ctx.Raw, p.RingRadius) > p.BackgroundIntensityThreshold {
			maxDist = p.MaxDistHighBg
		}
		if dist > maxDist {
			return false
		}
	}

	return true
}

// regionMean averages a field over the region's pixels.
func regionMean(r *regions.RegionRecord, f *imgproc.Field) float64 {
	if len(r.Pixels) == 0 {
		return 0
	}
	sum := 0.0
	for _, idx := range r.Pixels {
		sum += f.Pix[idx]
	}
	return sum / float64(len(r.Pixels))
}

// nearestNucleusDistance returns the Euclidean distance from the
// region centroid to the closest nucleus centroid.
func nearestNucleusDistance(r *regions.RegionRecord, nuclei []regions.Point) (float64, bool) {
	if len(nuclei) == 0 {
		return 0, false
	}
	best := math.Inf(1)
	for _, n := range nuclei {
		d := math.Hypot(r.Centroid.X-n.X, r.Centroid.Y-n.Y)
		if d < best {
			best = d
		}
	}
	return best, true
}

// ringBackground measures the mean raw intensity of a dilated ring
// around the region: the disk dilation of the region pixels minus the
// region itself. An empty ring reads as zero background.
func ringBackground(r *regions.RegionRecord, raw *imgproc.Field, radius int) float64 {
	if radius < 1 {
		radius = 1
	}
	region := imgproc.NewMask(raw.Width, raw.Height)
	for _, idx := range r.Pixels {
		region.Pix[idx] = true
	}
	ring := imgproc.AndNot(imgproc.Dilate(region, radius), region)
	mean := imgproc.MeanUnder(raw, ring)
	if math.IsNaN(mean) {
		return 0
	}
	return mean
}
