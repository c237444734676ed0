package imgproc

import (
	"sort"
)

// OtsuThreshold computes the Otsu threshold of a field in [0,1] using a
// 256-bin histogram and a between-class variance scan. On bimodal input
// every split inside the empty gap between the modes ties for the
// maximum, so ties resolve to the middle of the plateau rather than its
// background edge. The returned threshold lies in [0,1]; samples
// strictly greater than it are foreground under Binarize.
func OtsuThreshold(f *Field) float64 {
	const bins = 256
	hist := make([]int, bins)
	for _, v := range f.Pix {
		hist[sampleBin(v)]++
	}

	total := len(f.Pix)
	if total == 0 {
		return 0
	}

	weightedSum := 0
	for i, c := range hist {
		weightedSum += i * c
	}

	var (
		bestVariance  float64
		bestLow       = -1
		bestHigh      = -1
		bgPixels      int
		bgWeightedSum int
	)
	for i, c := range hist {
		bgPixels += c
		bgWeightedSum += i * c

		fgPixels := total - bgPixels
		if bgPixels == 0 || fgPixels == 0 {
			continue
		}
		fgWeightedSum := weightedSum - bgWeightedSum

		bgMean := float64(bgWeightedSum) / float64(bgPixels)
		fgMean := float64(fgWeightedSum) / float64(fgPixels)
		diff := bgMean - fgMean
		variance := float64(bgPixels) * float64(fgPixels) * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			bestLow, bestHigh = i, i
		} else if variance == bestVariance && bestLow >= 0 {
			bestHigh = i
		}
	}
	if bestLow < 0 {
		return 0
	}

	// Convert through the upper bin edge, matching the sampleBin
	// partition: every sample that hashed into a background bin stays at
	// or below the returned value.
	return float64(bestLow+bestHigh+2) / float64(2*bins)
}

// PercentileThreshold returns the sample value at the given percentile
// (0-100) of the field's intensity distribution. Used as the fixed
// high-percentile alternative to Otsu in the blob detectors.
func PercentileThreshold(f *Field, percentile float64) float64 {
	if len(f.Pix) == 0 {
		return 0
	}
	sorted := make([]float64, len(f.Pix))
	copy(sorted, f.Pix)
	sort.Float64s(sorted)

	if percentile <= 0 {
		return sorted[0]
	}
	if percentile >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(percentile / 100 * float64(len(sorted)-1))
	return sorted[idx]
}

// Binarize returns the mask of samples strictly above the threshold.
func Binarize(f *Field, threshold float64) *Mask {
	out := NewMask(f.Width, f.Height)
	for i, v := range f.Pix {
		out.Pix[i] = v > threshold
	}
	return out
}
