package detect

import (
	"math"

	"cellquant/pkg/imgproc"
	"cellquant/pkg/regions"
)

// DetectBlobs runs the difference-of-Gaussians pipeline on one channel
// and returns the binary candidate mask of punctate structures:
// optional pre-smooth, band-pass at the two scales, normalized response
// thresholded at a global statistic plus an offset, then morphological
// cleanup. An all-dark channel yields an empty mask, not an error.
func DetectBlobs(channel *imgproc.Field, p BlobParams) *imgproc.Mask {
	src := channel
	if p.PreSigma > 0 {
		src = imgproc.GaussianBlur(channel, p.PreSigma)
	}

	response := imgproc.DoG(src, p.SigmaSmall, p.SigmaLarge)

	var threshold float64
	if p.UsePercentile {
		threshold = imgproc.PercentileThreshold(response, p.Percentile)
	} else {
		threshold = imgproc.OtsuThreshold(response)
	}
	threshold += p.ThresholdOffset

	mask := imgproc.Binarize(response, threshold)
	return cleanupMask(mask, p.MinPixels, p.CloseRadius, p.FillHoles)
}

// DetectBlobsSDOG runs the steerable variant: first- and second-order
// Gaussian-derivative responses at a single sigma, combined as
// gradient magnitude times the dominant absolute Hessian eigenvalue,
// normalized and thresholded by Otsu.
func DetectBlobsSDOG(channel *imgproc.Field, p SDOGParams) *imgproc.Mask {
	gx, gy, gxx, gyy, gxy := imgproc.GaussianDerivatives(channel, p.Sigma)

	response := imgproc.NewField(channel.Width, channel.Height)
	for i := range response.Pix {
		magnitude := math.Hypot(gx.Pix[i], gy.Pix[i])

		// Hessian eigenvalues of [[gxx gxy] [gxy gyy]].
		trace := gxx.Pix[i] + gyy.Pix[i]
		diff := gxx.Pix[i] - gyy.Pix[i]
		disc := math.Sqrt(diff*diff + 4*gxy.Pix[i]*gxy.Pix[i])
		l1 := (trace + disc) / 2
		l2 := (trace - disc) / 2
		maxEig := math.Abs(l1)
		if math.Abs(l2) > maxEig {
			maxEig = math.Abs(l2)
		}

		response.Pix[i] = magnitude * maxEig
	}
	response.Normalize()

	threshold := imgproc.OtsuThreshold(response) + p.ThresholdOffset
	mask := imgproc.Binarize(response, threshold)
	return cleanupMask(mask, p.MinPixels, 1, true)
}

// CombineRedMasks applies the red-channel confidence-voting rule: the
// intersection of the DoG and SDOG masks is kept unconditionally;
// components found by exactly one method survive only when their mean
// raw-channel intensity exceeds intensityThreshold. The thresholds
// here were tuned empirically against the imaging rig and are applied
// verbatim.
func CombineRedMasks(dog, sdog *imgproc.Mask, raw *imgproc.Field, intensityThreshold float64) *imgproc.Mask {
	agreed := imgproc.And(dog, sdog)
	disputed := imgproc.Xor(dog, sdog)

	lm, err := regions.Label(disputed)
	if err != nil || lm.N == 0 {
		return agreed
	}

	final := agreed.Clone()
	sums := make([]float64, lm.N+1)
	counts := make([]int, lm.N+1)
	for idx, l := range lm.Labels {
		if l > 0 {
			sums[l] += raw.Pix[idx]
			counts[l]++
		}
	}
	kept := make([]bool, lm.N+1)
	for label := 1; label <= lm.N; label++ {
		if counts[label] > 0 && sums[label]/float64(counts[label]) > intensityThreshold {
			kept[label] = true
		}
	}
	for idx, l := range lm.Labels {
		if l > 0 && kept[l] {
			final.Pix[idx] = true
		}
	}
	return final
}

// cleanupMask is the shared morphological cleanup tail of the blob
// detectors: drop specks, close small gaps, fill enclosed holes.
func cleanupMask(m *imgproc.Mask, minPixels, closeRadius int, fillHoles bool) *imgproc.Mask {
	out := m
	if minPixels > 1 {
		out = imgproc.RemoveSmallObjects(out, minPixels)
	}
	if closeRadius > 0 {
		out = imgproc.Close(out, closeRadius)
	}
	if fillHoles {
		out = imgproc.FillHoles(out)
	}
	return out
}
