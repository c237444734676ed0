package detect

import (
	"math"
	"math/rand"
	"sort"
)

// KMeansResult holds the outcome of 1-D intensity clustering.
type KMeansResult struct {
	// Centroids are the converged cluster centers, ascending.
	Centroids []float64

	// Converged is false when the iteration budget ran out; the last
	// iterate is still usable (degraded, not fatal).
	Converged bool

	// Iterations actually performed.
	Iterations int
}

// kMeans clusters scalar samples into k groups by iterative centroid
// refinement. Initial centroids are spread over the sample quantiles,
// which is deterministic and avoids the empty-cluster pathologies of
// random seeding on heavily skewed intensity histograms.
func kMeans(samples []float64, k, maxIters int) KMeansResult {
	res := KMeansResult{}
	if k < 1 || len(samples) == 0 {
		return res
	}
	if len(samples) <= k {
		res.Centroids = append([]float64(nil), samples...)
		sort.Float64s(res.Centroids)
		res.Converged = true
		return res
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	centroids := make([]float64, k)
	for i := range centroids {
		q := (float64(i) + 0.5) / float64(k)
		centroids[i] = sorted[int(q*float64(len(sorted)-1))]
	}

	const tol = 1e-6
	sums := make([]float64, k)
	counts := make([]int, k)
	for iter := 0; iter < maxIters; iter++ {
		res.Iterations = iter + 1
		for i := range sums {
			sums[i] = 0
			counts[i] = 0
		}
		for _, v := range samples {
			c := nearestCentroid(centroids, v)
			sums[c] += v
			counts[c]++
		}

		moved := 0.0
		for i := range centroids {
			if counts[i] == 0 {
				// An empty cluster keeps its previous centroid.
				continue
			}
			next := sums[i] / float64(counts[i])
			moved += math.Abs(next - centroids[i])
			centroids[i] = next
		}
		if moved < tol {
			res.Converged = true
			break
		}
	}

	sort.Float64s(centroids)
	res.Centroids = centroids
	return res
}

// mergeCloseCentroids collapses ascending centroids separated by less
// than eps into one running mean. A handful of saturated outlier
// samples can otherwise hold a cluster of their own and demote the real
// bright population below it.
func mergeCloseCentroids(centroids []float64, eps float64) []float64 {
	if len(centroids) < 2 {
		return centroids
	}
	merged := []float64{centroids[0]}
	weights := []int{1}
	for _, c := range centroids[1:] {
		last := len(merged) - 1
		if c-merged[last] < eps {
			weights[last]++
			merged[last] += (c - merged[last]) / float64(weights[last])
		} else {
			merged = append(merged, c)
			weights = append(weights, 1)
		}
	}
	return merged
}

// nearestCentroid returns the index of the closest centroid to v.
func nearestCentroid(centroids []float64, v float64) int {
	best := 0
	bestDist := math.Abs(centroids[0] - v)
	for i := 1; i < len(centroids); i++ {
		d := math.Abs(centroids[i] - v)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// subsample draws up to budget samples without replacement using a
// seeded Fisher-Yates prefix, keeping centroid initialization cheap on
// large rasters while staying reproducible.
func subsample(values []float64, budget int, seed int64) []float64 {
	if budget <= 0 || len(values) <= budget {
		return values
	}
	rng := rand.New(rand.NewSource(seed))
	picked := make([]float64, len(values))
	copy(picked, values)
	for i := 0; i < budget; i++ {
		j := i + rng.Intn(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked[:budget]
}
