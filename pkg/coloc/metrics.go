package coloc

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"cellquant/pkg/imgproc"
)

// Metrics are the intensity-correlation statistics of two channels
// restricted to a mask. Degenerate input (empty mask, flat channels)
// reports every field as NaN rather than failing.
type Metrics struct {
	// Pearson is the correlation coefficient of the masked intensities.
	Pearson float64

	// MandersM1 is the fraction of channel-A intensity over pixels
	// where channel B is present; MandersM2 is the converse.
	MandersM1 float64
	MandersM2 float64

	// Overlap is the Manders overlap coefficient
	// sum(r*g)/sqrt(sum(r^2)*sum(g^2)).
	Overlap float64

	// PValue is the permutation-test significance of Pearson: the
	// fraction of channel-B shuffles whose correlation reaches the
	// observed one.
	PValue float64
}

// MetricsParams configures the metrics sub-mode.
type MetricsParams struct {
	// Permutations is the shuffle count of the significance test.
	Permutations int `yaml:"permutations"`

	// Seed makes the shuffles reproducible.
	Seed int64 `yaml:"seed"`
}

// DefaultMetricsParams returns the documented default of 100
// permutations.
func DefaultMetricsParams() MetricsParams {
	return MetricsParams{Permutations: 100, Seed: 1}
}

// nanMetrics is the degenerate-input result.
func nanMetrics() Metrics {
	nan := math.NaN()
	return Metrics{Pearson: nan, MandersM1: nan, MandersM2: nan, Overlap: nan, PValue: nan}
}

// ComputeMetrics evaluates the colocalization statistics of channels a
// and b restricted to the mask. Each channel is normalized to [0,1]
// over its own maximum before sampling. An empty or mismatched mask
// returns all-NaN metrics.
func ComputeMetrics(a, b *imgproc.Field, mask *imgproc.Mask, p MetricsParams) Metrics {
	if a == nil || b == nil || mask == nil ||
		a.Width != b.Width || a.Height != b.Height ||
		a.Width != mask.Width || a.Height != mask.Height {
		return nanMetrics()
	}

	_, maxA := a.MinMax()
	_, maxB := b.MinMax()

	var r, g []float64
	for i, on := range mask.Pix {
		if !on {
			continue
		}
		va, vb := a.Pix[i], b.Pix[i]
		if maxA > 0 {
			va /= maxA
		}
		if maxB > 0 {
			vb /= maxB
		}
		r = append(r, va)
		g = append(g, vb)
	}
	if len(r) == 0 {
		return nanMetrics()
	}

	m := Metrics{
		Pearson: stat.Correlation(r, g, nil),
	}

	var sumR, sumG, sumRG, sumR2, sumG2 float64
	var m1Num, m2Num float64
	for i := range r {
		sumR += r[i]
		sumG += g[i]
		sumRG += r[i] * g[i]
		sumR2 += r[i] * r[i]
		sumG2 += g[i] * g[i]
		if g[i] > 0 {
			m1Num += r[i]
		}
		if r[i] > 0 {
			m2Num += g[i]
		}
	}

	m.MandersM1 = math.NaN()
	if sumR > 0 {
		m.MandersM1 = m1Num / sumR
	}
	m.MandersM2 = math.NaN()
	if sumG > 0 {
		m.MandersM2 = m2Num / sumG
	}
	m.Overlap = math.NaN()
	if sumR2 > 0 && sumG2 > 0 {
		m.Overlap = sumRG / math.Sqrt(sumR2*sumG2)
	}

	m.PValue = permutationPValue(r, g, m.Pearson, p)
	return m
}

// permutationPValue shuffles g and recomputes the correlation p.Permutations
// times; the p-value is the fraction of shuffles with correlation at or
// above the observed value. A NaN observation propagates.
func permutationPValue(r, g []float64, observed float64, p MetricsParams) float64 {
	if math.IsNaN(observed) || p.Permutations <= 0 {
		return math.NaN()
	}
	rng := rand.New(rand.NewSource(p.Seed))
	shuffled := make([]float64, len(g))
	copy(shuffled, g)

	atOrAbove := 0
	for i := 0; i < p.Permutations; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if stat.Correlation(r, shuffled, nil) >= observed {
			atOrAbove++
		}
	}
	return float64(atOrAbove) / float64(p.Permutations)
}
