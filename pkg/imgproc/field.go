// Package imgproc provides the raster primitives used by the detection
// pipeline: single-channel float fields, binary masks, Gaussian filtering,
// adaptive histogram equalization, thresholding, morphology, and local
// texture statistics. All operations are pure functions over value types;
// none of them mutate their inputs unless explicitly documented.
package imgproc

import (
	"math"
)

// Field is a single-channel raster stored in row-major order.
// Sample values are expected to lie in [0,1] after normalization,
// but intermediate results (filter responses, background estimates)
// may leave that range until Normalize or ClipNegative is applied.
type Field struct {
	// Pix holds the samples in row-major order, length Width*Height.
	Pix []float64

	// Width and Height are the raster dimensions in pixels.
	Width  int
	Height int
}

// NewField allocates a zero-valued field of the given dimensions.
func NewField(width, height int) *Field {
	return &Field{
		Pix:    make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// At returns the sample at (x, y). Coordinates outside the raster
// return 0, which gives filters a zero-padded border without callers
// having to special-case edges.
func (f *Field) At(x, y int) float64 {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return 0
	}
	return f.Pix[y*f.Width+x]
}

// Set writes the sample at (x, y). Out-of-range coordinates are ignored.
func (f *Field) Set(x, y int, v float64) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	f.Pix[y*f.Width+x] = v
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	out := NewField(f.Width, f.Height)
	copy(out.Pix, f.Pix)
	return out
}

// MinMax returns the minimum and maximum sample values.
// An empty field reports (0, 0).
func (f *Field) MinMax() (min, max float64) {
	if len(f.Pix) == 0 {
		return 0, 0
	}
	min, max = f.Pix[0], f.Pix[0]
	for _, v := range f.Pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Normalize rescales the field to [0,1] using its own min/max range.
// A constant field maps to all zeros. The receiver is returned for chaining.
func (f *Field) Normalize() *Field {
	min, max := f.MinMax()
	span := max - min
	if span <= 0 {
		for i := range f.Pix {
			f.Pix[i] = 0
		}
		return f
	}
	for i, v := range f.Pix {
		f.Pix[i] = (v - min) / span
	}
	return f
}

// ClipNegative replaces negative samples with zero in place.
func (f *Field) ClipNegative() *Field {
	for i, v := range f.Pix {
		if v < 0 {
			f.Pix[i] = 0
		}
	}
	return f
}

// Sub returns the element-wise difference f - g. Both fields must share
// the same dimensions; mismatched inputs yield a nil result.
func Sub(f, g *Field) *Field {
	if f.Width != g.Width || f.Height != g.Height {
		return nil
	}
	out := NewField(f.Width, f.Height)
	for i := range f.Pix {
		out.Pix[i] = f.Pix[i] - g.Pix[i]
	}
	return out
}

// ContrastStretch remaps the field so its observed range spans [0,1].
// This is the full-range remap used by the diffuse-region detector before
// intensity clustering. It is the same operation as Normalize but kept as
// a named function so the detector code reads like the processing recipe.
func ContrastStretch(f *Field) *Field {
	return f.Clone().Normalize()
}

// MeanUnder returns the mean of the field's samples where the mask is set.
// An empty mask yields NaN so that degenerate selections are visible to
// callers instead of silently reading as zero signal.
func MeanUnder(f *Field, m *Mask) float64 {
	if f.Width != m.Width || f.Height != m.Height {
		return math.NaN()
	}
	sum := 0.0
	n := 0
	for i, on := range m.Pix {
		if on {
			sum += f.Pix[i]
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
