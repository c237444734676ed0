package detect

import (
	"testing"

	"cellquant/pkg/imgproc"
	"cellquant/pkg/regions"
)

// testRecord builds a compact square region record positioned at
// (cx, cy) on a raster of the given width, with plausible shape
// properties for a round object.
func testRecord(cx, cy, side, width int) *regions.RegionRecord {
	r := &regions.RegionRecord{
		ID:           1,
		Area:         side * side,
		Perimeter:    float64(4 * side),
		Eccentricity: 0.3,
		Solidity:     1.0,
		Centroid:     regions.Point{X: float64(cx), Y: float64(cy)},
	}
	half := side / 2
	for dy := -half; dy < side-half; dy++ {
		for dx := -half; dx < side-half; dx++ {
			r.Pixels = append(r.Pixels, (cy+dy)*width+(cx+dx))
		}
	}
	return r
}

func passes(p FilterParams, r *regions.RegionRecord, ctx FilterContext) bool {
	return len(ApplyFilter([]*regions.RegionRecord{r}, p, ctx)) == 1
}

func TestFilterAreaBoundsInclusive(t *testing.T) {
	p := FilterParams{MinArea: 25, MaxArea: 25}
	r := testRecord(10, 10, 5, 40) // area 25
	if !passes(p, r, FilterContext{}) {
		t.Error("area exactly at both bounds must pass (inclusive)")
	}

	p.MaxArea = 24
	if passes(p, r, FilterContext{}) {
		t.Error("area above MaxArea must fail")
	}

	p = FilterParams{MinArea: 26}
	if passes(p, r, FilterContext{}) {
		t.Error("area below MinArea must fail")
	}
}

func TestFilterCircularity(t *testing.T) {
	r := testRecord(10, 10, 5, 40)
	// 4*pi*25/400 ~ 0.785 for the square record.
	if !passes(FilterParams{MinArea: 1, MinCircularity: 0.5}, r, FilterContext{}) {
		t.Error("compact region should pass the circularity floor")
	}

	r.Perimeter = 100 // ragged boundary
	if passes(FilterParams{MinArea: 1, MinCircularity: 0.5}, r, FilterContext{}) {
		t.Error("long-perimeter region must fail the circularity floor")
	}
}

func TestFilterEccentricityAndSolidity(t *testing.T) {
	r := testRecord(10, 10, 5, 40)

	r.Eccentricity = 0.85
	if passes(FilterParams{MinArea: 1, MaxEccentricity: 0.85}, r, FilterContext{}) {
		t.Error("eccentricity at the cutoff must fail the strict comparison")
	}
	r.Eccentricity = 0.84
	if !passes(FilterParams{MinArea: 1, MaxEccentricity: 0.85}, r, FilterContext{}) {
		t.Error("eccentricity below the cutoff should pass")
	}

	r.Solidity = 0.7
	if passes(FilterParams{MinArea: 1, MinSolidity: 0.7}, r, FilterContext{}) {
		t.Error("solidity at the cutoff must fail the strict comparison")
	}
	r.Solidity = 0.75
	if !passes(FilterParams{MinArea: 1, MinSolidity: 0.7}, r, FilterContext{}) {
		t.Error("solidity above the cutoff should pass")
	}
}

func TestFilterTexturePredicate(t *testing.T) {
	r := testRecord(10, 10, 5, 40)
	texture := imgproc.NewField(40, 40)
	for i := range texture.Pix {
		texture.Pix[i] = 0.1
	}
	ctx := FilterContext{Texture: texture}

	if passes(FilterParams{MinArea: 1, MinTextureScore: 0.2}, r, ctx) {
		t.Error("low-entropy region must fail the texture floor")
	}

	for i := range texture.Pix {
		texture.Pix[i] = 0.5
	}
	if !passes(FilterParams{MinArea: 1, MinTextureScore: 0.2}, r, ctx) {
		t.Error("textured region should pass")
	}
}

func TestFilterNucleusOverlapExclusion(t *testing.T) {
	r := testRecord(10, 10, 5, 40)
	nucleus := imgproc.NewMask(40, 40)
	ctx := FilterContext{NucleusMask: nucleus}
	p := FilterParams{MinArea: 1, ExcludeNucleusOverlap: true}

	if !passes(p, r, ctx) {
		t.Error("region clear of the nuclear mask should pass")
	}

	nucleus.Set(10, 10, true) // single overlapping pixel
	if passes(p, r, ctx) {
		t.Error("any nuclear-mask overlap must exclude the region")
	}
}

func TestFilterDistancePredicate(t *testing.T) {
	width := 300
	raw := imgproc.NewField(width, width)
	nuclei := []regions.Point{{X: 20, Y: 20}}
	p := FilterParams{
		MinArea:                      1,
		MaxDistHighBg:                90,
		MaxDistLowBg:                 125,
		BackgroundIntensityThreshold: 0.1,
		RingRadius:                   5,
	}

	t.Run("NoNucleiFails", func(t *testing.T) {
		r := testRecord(50, 20, 5, width)
		if passes(p, r, FilterContext{Raw: raw}) {
			t.Error("distance predicate with no nuclei must reject everything")
		}
	})

	t.Run("LowBackgroundUsesLooseBound", func(t *testing.T) {
		// 100 px from the nucleus on a dark background: inside 125.
		r := testRecord(120, 20, 5, width)
		ctx := FilterContext{NucleusCentroids: nuclei, Raw: raw}
		if !passes(p, r, ctx) {
			t.Error("distance 100 should pass the low-background bound of 125")
		}
	})

	t.Run("HighBackgroundUsesTightBound", func(t *testing.T) {
		// Same distance but a bright surround switches to the 90 px bound.
		bright := imgproc.NewField(width, width)
		for i := range bright.Pix {
			bright.Pix[i] = 0.5
		}
		r := testRecord(120, 20, 5, width)
		ctx := FilterContext{NucleusCentroids: nuclei, Raw: bright}
		if passes(p, r, ctx) {
			t.Error("distance 100 must fail the high-background bound of 90")
		}
	})

	t.Run("BeyondLooseBoundFails", func(t *testing.T) {
		r := testRecord(220, 20, 5, width)
		ctx := FilterContext{NucleusCentroids: nuclei, Raw: raw}
		if passes(p, r, ctx) {
			t.Error("distance 200 must fail both bounds")
		}
	})
}

func TestFilterPreservesInputOrder(t *testing.T) {
	a := testRecord(10, 10, 5, 60)
	a.ID = 1
	b := testRecord(30, 30, 5, 60)
	b.ID = 2
	c := testRecord(50, 50, 5, 60)
	c.ID = 3
	b.Area = 1 // fails the floor

	out := ApplyFilter([]*regions.RegionRecord{a, b, c}, FilterParams{MinArea: 20}, FilterContext{})
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 3 {
		t.Errorf("survivors = %v, want records 1 and 3 in order", out)
	}
}
