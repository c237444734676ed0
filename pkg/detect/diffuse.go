package detect

import (
	"cellquant/pkg/imgproc"
)

// centroidMergeEps is the gap below which two converged centroids are
// treated as one cluster.
const centroidMergeEps = 0.05

// DiffuseResult carries the diffuse-candidate mask and the clustering
// convergence state.
type DiffuseResult struct {
	Mask *imgproc.Mask

	// Converged is false when k-means exhausted its iteration budget;
	// the mask is the best-effort last iterate.
	Converged bool
}

// DetectDiffuse finds soft-edged, non-punctate high-intensity regions:
// contrast-stretch the channel, cluster the above-threshold intensities
// into k groups, keep the pixels of the brightest cluster, then clean
// with small-object removal and closing. Clustering runs on a bounded
// subsample; the full image is re-assigned to the converged centroids.
func DetectDiffuse(channel *imgproc.Field, p DiffuseParams) DiffuseResult {
	stretched := imgproc.ContrastStretch(channel)

	values := make([]float64, 0, len(stretched.Pix))
	for _, v := range stretched.Pix {
		if v >= p.MinIntensity {
			values = append(values, v)
		}
	}
	if len(values) < p.K || p.K < 1 {
		return DiffuseResult{Mask: imgproc.NewMask(channel.Width, channel.Height), Converged: true}
	}

	km := kMeans(subsample(values, p.SampleBudget, p.Seed), p.K, p.MaxIters)

	// Contrast stretching pins the few brightest pixels to exactly 1.0;
	// without merging, those outliers capture the top cluster and the
	// genuine bright population lands one below.
	centroids := mergeCloseCentroids(km.Centroids, centroidMergeEps)
	brightest := len(centroids) - 1

	mask := imgproc.NewMask(channel.Width, channel.Height)
	for i, v := range stretched.Pix {
		if v < p.MinIntensity {
			continue
		}
		if nearestCentroid(centroids, v) == brightest {
			mask.Pix[i] = true
		}
	}

	mask = imgproc.RemoveSmallObjects(mask, p.MinArea)
	if p.CloseRadius > 0 {
		mask = imgproc.Close(mask, p.CloseRadius)
	}
	return DiffuseResult{Mask: mask, Converged: km.Converged}
}
