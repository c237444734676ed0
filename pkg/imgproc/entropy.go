package imgproc

import (
	"math"
)

// entropyBins is the histogram resolution of the local entropy filter.
// Normalizing by log2(entropyBins) maps the score into [0,1].
const entropyBins = 64

// EntropyFilter computes a local-texture score map: the Shannon entropy
// of the intensity distribution inside a square window of the given
// radius around each pixel, normalized to [0,1]. Smooth background
// scores near zero; granular fluorescent texture scores high, which is
// what the shape/context filter keys on.
//
// The window histogram slides incrementally along each row, so the cost
// is proportional to the window edge, not its area.
func EntropyFilter(f *Field, radius int) *Field {
	if radius < 1 {
		radius = 1
	}
	w, h := f.Width, f.Height
	out := NewField(w, h)
	norm := math.Log2(float64(entropyBins))

	bin := func(x, y int) int {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		v := f.Pix[y*w+x]
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return entropyBins - 1
		}
		return int(v * float64(entropyBins))
	}

	hist := make([]int, entropyBins)
	for y := 0; y < h; y++ {
		// Build the histogram for the row's first window.
		for i := range hist {
			hist[i] = 0
		}
		n := 0
		for wy := y - radius; wy <= y+radius; wy++ {
			for wx := -radius; wx <= radius; wx++ {
				hist[bin(wx, wy)]++
				n++
			}
		}
		out.Pix[y*w] = windowEntropy(hist, n) / norm

		// Slide the window across the row.
		for x := 1; x < w; x++ {
			for wy := y - radius; wy <= y+radius; wy++ {
				hist[bin(x-radius-1, wy)]--
				hist[bin(x+radius, wy)]++
			}
			out.Pix[y*w+x] = windowEntropy(hist, n) / norm
		}
	}
	return out
}

func windowEntropy(hist []int, n int) float64 {
	if n == 0 {
		return 0
	}
	e := 0.0
	for _, c := range hist {
		if c > 0 {
			p := float64(c) / float64(n)
			e -= p * math.Log2(p)
		}
	}
	return e
}
