package imgproc

// EnhanceParams controls the channel enhancer. Zero values disable the
// corresponding step, so the zero struct is a no-op enhancer.
type EnhanceParams struct {
	// TilesX, TilesY set the adaptive-equalization tile grid.
	TilesX int
	TilesY int

	// ClipLimit is the normalized CLAHE clip fraction.
	ClipLimit float64

	// BackgroundRadius, when positive, enables background subtraction:
	// an estimate of the slowly-varying background is subtracted from
	// the equalized channel and negatives clip to 0.
	BackgroundRadius int

	// MorphBackground selects a grayscale opening instead of a
	// large-kernel Gaussian as the background estimator. Opening keeps
	// bright punctae out of the estimate entirely, at higher cost.
	MorphBackground bool
}

// DefaultEnhanceParams returns the enhancer settings shared by the
// channel detectors: 8x8 tiles, 0.01 clip limit, no background
// subtraction.
func DefaultEnhanceParams() EnhanceParams {
	return EnhanceParams{TilesX: 8, TilesY: 8, ClipLimit: 0.01}
}

// EnhanceChannel contrast-normalizes a single channel in [0,1]:
// contrast-limited adaptive histogram equalization followed by optional
// background estimation and subtraction. The input field is not
// modified.
func EnhanceChannel(f *Field, p EnhanceParams) *Field {
	out := f
	if p.TilesX > 0 && p.TilesY > 0 {
		out = AdaptiveEqualize(f, p.TilesX, p.TilesY, p.ClipLimit)
	} else {
		out = f.Clone()
	}

	if p.BackgroundRadius > 0 {
		var background *Field
		if p.MorphBackground {
			background = GrayOpen(out, p.BackgroundRadius)
		} else {
			// A Gaussian at one third of the kernel radius approximates
			// the large-structure background while staying separable.
			background = GaussianBlur(out, float64(p.BackgroundRadius)/3)
		}
		out = Sub(out, background).ClipNegative()
	}
	return out
}
