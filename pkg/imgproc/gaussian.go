package imgproc

import (
	"math"
)

// gaussianKernel builds a normalized 1-D Gaussian kernel for the given
// sigma. The radius covers three standard deviations, which captures
// 99.7% of the kernel mass.
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianDerivKernel builds a 1-D first-derivative-of-Gaussian kernel.
// The kernel is scaled so that a unit ramp produces a unit response,
// keeping derivative magnitudes comparable across sigmas.
func gaussianDerivKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	norm := 0.0
	for i := -radius; i <= radius; i++ {
		v := float64(i) / (sigma * sigma) * math.Exp(-float64(i*i)/(2*sigma*sigma))
		kernel[i+radius] = v
		norm += float64(i) * v
	}
	// Scale so a unit ramp responds with exactly its slope.
	if norm != 0 {
		for i := range kernel {
			kernel[i] /= norm
		}
	}
	return kernel
}

// gaussianSecondDerivKernel builds a 1-D second-derivative-of-Gaussian
// kernel with zero DC response.
func gaussianSecondDerivKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		t := float64(i*i)/(sigma*sigma) - 1
		v := t / (sigma * sigma) * math.Exp(-float64(i*i)/(2*sigma*sigma))
		kernel[i+radius] = v
		sum += v
	}
	// Remove any residual DC component introduced by truncation so flat
	// regions respond with exactly zero.
	mean := sum / float64(len(kernel))
	for i := range kernel {
		kernel[i] -= mean
	}
	return kernel
}

// convolveRows applies a 1-D kernel along each row with replicated borders.
func convolveRows(f *Field, kernel []float64) *Field {
	out := NewField(f.Width, f.Height)
	radius := len(kernel) / 2
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 {
					sx = 0
				} else if sx >= f.Width {
					sx = f.Width - 1
				}
				acc += f.Pix[y*f.Width+sx] * kernel[k+radius]
			}
			out.Pix[y*f.Width+x] = acc
		}
	}
	return out
}

// convolveCols applies a 1-D kernel along each column with replicated borders.
func convolveCols(f *Field, kernel []float64) *Field {
	out := NewField(f.Width, f.Height)
	radius := len(kernel) / 2
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 {
					sy = 0
				} else if sy >= f.Height {
					sy = f.Height - 1
				}
				acc += f.Pix[sy*f.Width+x] * kernel[k+radius]
			}
			out.Pix[y*f.Width+x] = acc
		}
	}
	return out
}

// GaussianBlur returns the field convolved with an isotropic Gaussian of
// the given sigma, using the separable row/column decomposition.
// Non-positive sigma returns an unmodified copy.
func GaussianBlur(f *Field, sigma float64) *Field {
	if sigma <= 0 {
		return f.Clone()
	}
	kernel := gaussianKernel(sigma)
	return convolveCols(convolveRows(f, kernel), kernel)
}

// SeparableFilter convolves the field with kernelX along rows and
// kernelY along columns. This is the building block for the steerable
// Gaussian-derivative responses: each response is a product of 1-D
// Gaussian or Gaussian-derivative kernels.
func SeparableFilter(f *Field, kernelX, kernelY []float64) *Field {
	return convolveCols(convolveRows(f, kernelX), kernelY)
}

// GaussianDerivatives computes the five steerable derivative responses
// at a single scale: Gx, Gy (first order) and Gxx, Gyy, Gxy (second
// order). All responses share the same sigma.
func GaussianDerivatives(f *Field, sigma float64) (gx, gy, gxx, gyy, gxy *Field) {
	g := gaussianKernel(sigma)
	d1 := gaussianDerivKernel(sigma)
	d2 := gaussianSecondDerivKernel(sigma)

	gx = SeparableFilter(f, d1, g)
	gy = SeparableFilter(f, g, d1)
	gxx = SeparableFilter(f, d2, g)
	gyy = SeparableFilter(f, g, d2)
	gxy = SeparableFilter(f, d1, d1)
	return gx, gy, gxx, gyy, gxy
}

// DoG computes the difference-of-Gaussians band-pass response
// blur(sigmaSmall) - blur(sigmaLarge), normalized to [0,1].
func DoG(f *Field, sigmaSmall, sigmaLarge float64) *Field {
	small := GaussianBlur(f, sigmaSmall)
	large := GaussianBlur(f, sigmaLarge)
	return Sub(small, large).Normalize()
}
