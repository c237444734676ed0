// Package detect implements the channel detectors: punctate blob
// detection (difference-of-Gaussians and its steerable variant), the
// intensity-clustering diffuse-region detector, nucleus segmentation,
// and the conjunctive shape/context filter applied to every candidate
// region. Each detector takes an explicit parameter struct with
// documented defaults; parameters are passed by value.
package detect

// BlobParams configures the difference-of-Gaussians blob detector for
// one channel/species.
type BlobParams struct {
	// PreSigma optionally pre-smooths the channel before the band-pass;
	// zero disables.
	PreSigma float64 `yaml:"preSigma"`

	// SigmaSmall and SigmaLarge are the DoG scales, SigmaSmall < SigmaLarge.
	SigmaSmall float64 `yaml:"sigmaSmall"`
	SigmaLarge float64 `yaml:"sigmaLarge"`

	// UsePercentile selects a fixed high-percentile threshold on the
	// normalized response instead of Otsu.
	UsePercentile bool    `yaml:"usePercentile"`
	Percentile    float64 `yaml:"percentile"`

	// ThresholdOffset is added to the chosen global threshold for
	// selectivity.
	ThresholdOffset float64 `yaml:"thresholdOffset"`

	// MinPixels removes candidate components below this pixel count.
	MinPixels int `yaml:"minPixels"`

	// CloseRadius is the disk radius of the gap-closing step.
	CloseRadius int `yaml:"closeRadius"`

	// FillHoles fills enclosed holes after closing.
	FillHoles bool `yaml:"fillHoles"`
}

// DefaultBlobParams are the green-channel LD defaults: 1/2 scale pair,
// Otsu threshold, radius-1 closing.
func DefaultBlobParams() BlobParams {
	return BlobParams{
		PreSigma:    1,
		SigmaSmall:  1,
		SigmaLarge:  2,
		Percentile:  98,
		MinPixels:   4,
		CloseRadius: 1,
		FillHoles:   true,
	}
}

// SDOGParams configures the steerable detector variant: first- and
// second-order Gaussian-derivative responses at a single scale combined
// multiplicatively and thresholded by Otsu.
type SDOGParams struct {
	// Sigma is the shared derivative scale.
	Sigma float64 `yaml:"sigma"`

	// ThresholdOffset is added to the Otsu threshold of the response.
	ThresholdOffset float64 `yaml:"thresholdOffset"`

	// MinPixels removes components below this pixel count.
	MinPixels int `yaml:"minPixels"`
}

// DefaultSDOGParams returns the red-channel steerable defaults.
func DefaultSDOGParams() SDOGParams {
	return SDOGParams{Sigma: 1.5, MinPixels: 4}
}

// DiffuseParams configures the intensity-clustering detector for
// soft-edged regions.
type DiffuseParams struct {
	// MinIntensity excludes near-black pixels from clustering.
	MinIntensity float64 `yaml:"minIntensity"`

	// K is the number of intensity clusters.
	K int `yaml:"k"`

	// SampleBudget caps the pixels used for centroid estimation; the
	// full image is re-assigned to the converged centroids afterwards.
	SampleBudget int `yaml:"sampleBudget"`

	// MaxIters bounds the clustering iterations; hitting the bound is a
	// degraded-but-usable result, not an error.
	MaxIters int `yaml:"maxIters"`

	// MinArea and CloseRadius clean the brightest-cluster mask.
	MinArea     int `yaml:"minArea"`
	CloseRadius int `yaml:"closeRadius"`

	// Seed makes the subsampling reproducible.
	Seed int64 `yaml:"seed"`
}

// DefaultDiffuseParams returns the documented diffuse-detector
// defaults: k=3, 50k sample budget, 100 iterations, 30 px minimum.
func DefaultDiffuseParams() DiffuseParams {
	return DiffuseParams{
		MinIntensity: 0.02,
		K:            3,
		SampleBudget: 50000,
		MaxIters:     100,
		MinArea:      30,
		CloseRadius:  3,
		Seed:         1,
	}
}

// NucleusParams configures the nucleus segmenter.
type NucleusParams struct {
	// TilesX, TilesY, ClipLimit set the equalization of the nuclear
	// channel.
	TilesX    int     `yaml:"tilesX"`
	TilesY    int     `yaml:"tilesY"`
	ClipLimit float64 `yaml:"clipLimit"`

	// OtsuScale relaxes the Otsu threshold; below 1 is more permissive.
	OtsuScale float64 `yaml:"otsuScale"`

	// MinArea removes debris below this pixel count.
	MinArea int `yaml:"minArea"`

	// BorderMargin excludes nuclei whose centroid lies within this many
	// pixels of any image edge.
	BorderMargin int `yaml:"borderMargin"`

	// MergeSmall enables the small-nucleus merge heuristic.
	MergeSmall bool `yaml:"mergeSmall"`

	// MergeAreaFraction flags nuclei smaller than this fraction of the
	// median area as merge candidates.
	MergeAreaFraction float64 `yaml:"mergeAreaFraction"`

	// MergeDist keeps a small nucleus only if its centroid lies within
	// this distance of a large nucleus centroid.
	MergeDist float64 `yaml:"mergeDist"`
}

// DefaultNucleusParams returns the documented segmenter defaults.
func DefaultNucleusParams() NucleusParams {
	return NucleusParams{
		TilesX:            8,
		TilesY:            8,
		ClipLimit:         0.01,
		OtsuScale:         0.9,
		MinArea:           100,
		BorderMargin:      5,
		MergeSmall:        true,
		MergeAreaFraction: 0.4,
		MergeDist:         15,
	}
}

// FilterParams is the conjunctive predicate set of the shape/context
// filter. A zero value disables the corresponding predicate family,
// except the area bounds which are always active.
type FilterParams struct {
	// MinArea and MaxArea bound the pixel count, inclusive.
	MinArea int `yaml:"minArea"`
	MaxArea int `yaml:"maxArea"`

	// MinCircularity accepts regions with 4*pi*A/(P^2+eps) above this.
	MinCircularity float64 `yaml:"minCircularity"`

	// MaxEccentricity rejects elongated regions.
	MaxEccentricity float64 `yaml:"maxEccentricity"`

	// MinSolidity rejects ragged regions.
	MinSolidity float64 `yaml:"minSolidity"`

	// MinTextureScore is the minimum mean local-entropy score over the
	// region pixels.
	MinTextureScore float64 `yaml:"minTextureScore"`

	// MaxDistHighBg and MaxDistLowBg bound the centroid distance to the
	// nearest nucleus. The tighter high-background bound applies when
	// the mean intensity of a dilated ring around the object exceeds
	// BackgroundIntensityThreshold. Zero values disable the distance
	// predicate.
	MaxDistHighBg float64 `yaml:"maxDistHighBg"`
	MaxDistLowBg  float64 `yaml:"maxDistLowBg"`

	// BackgroundIntensityThreshold separates the two distance bounds.
	BackgroundIntensityThreshold float64 `yaml:"backgroundIntensityThreshold"`

	// RingRadius is the dilation radius of the local-background ring.
	RingRadius int `yaml:"ringRadius"`

	// ExcludeNucleusOverlap disqualifies any region with a pixel inside
	// the nuclear mask.
	ExcludeNucleusOverlap bool `yaml:"excludeNucleusOverlap"`
}

// ROSFilterParams returns the ROS acceptance predicates: area 30-300,
// circularity > 0.5, eccentricity < 0.85, texture > 0.2, distance
// 90/125 around a 0.1 background split.
func ROSFilterParams() FilterParams {
	return FilterParams{
		MinArea:                      30,
		MaxArea:                      300,
		MinCircularity:               0.5,
		MaxEccentricity:              0.85,
		MinTextureScore:              0.2,
		MaxDistHighBg:                90,
		MaxDistLowBg:                 125,
		BackgroundIntensityThreshold: 0.1,
		RingRadius:                   5,
		ExcludeNucleusOverlap:        true,
	}
}

// LDFilterParams returns the lipid-droplet acceptance predicates shared
// by the red and green channels.
func LDFilterParams() FilterParams {
	return FilterParams{
		MinArea:                      4,
		MaxArea:                      300,
		MaxEccentricity:              0.85,
		MinSolidity:                  0.7,
		MaxDistHighBg:                90,
		MaxDistLowBg:                 125,
		BackgroundIntensityThreshold: 0.1,
		RingRadius:                   5,
		ExcludeNucleusOverlap:        true,
	}
}

// DiffuseFilterParams returns the diffuse-region predicates; diffuse
// objects sit closer to their nucleus, hence the tighter 60/90 bounds.
func DiffuseFilterParams() FilterParams {
	return FilterParams{
		MinArea:                      30,
		MaxArea:                      5000,
		MaxDistHighBg:                60,
		MaxDistLowBg:                 90,
		BackgroundIntensityThreshold: 0.1,
		RingRadius:                   5,
		ExcludeNucleusOverlap:        true,
	}
}

// ColocFilterParams returns the predicates applied to intersection
// regions in colocalization detection: area 20-300, eccentricity
// < 0.85, solidity > 0.7, no distance predicate.
func ColocFilterParams() FilterParams {
	return FilterParams{
		MinArea:         20,
		MaxArea:         300,
		MaxEccentricity: 0.85,
		MinSolidity:     0.7,
	}
}

// RedCombineIntensityThreshold is the empirically tuned raw-intensity
// cutoff for keeping single-method red detections. Preserved as-is.
const RedCombineIntensityThreshold = 0.15
