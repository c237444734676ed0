package detect

import (
	"testing"

	"cellquant/pkg/imgproc"
	"cellquant/pkg/regions"
)

// diskField paints a bright disk onto a field.
func diskField(f *imgproc.Field, cx, cy, radius int, value float64) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				f.Set(cx+dx, cy+dy, value)
			}
		}
	}
}

func componentCount(t *testing.T, m *imgproc.Mask) int {
	t.Helper()
	lm, err := regions.Label(m)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	return lm.N
}

func TestDetectBlobsFindsTwoDisks(t *testing.T) {
	f := imgproc.NewField(100, 100)
	diskField(f, 25, 25, 3, 1)
	diskField(f, 70, 70, 3, 1)

	mask := DetectBlobs(f, DefaultBlobParams())
	if n := componentCount(t, mask); n != 2 {
		t.Errorf("detected %d components, want 2", n)
	}
	if !mask.At(25, 25) || !mask.At(70, 70) {
		t.Error("candidate mask should cover both disk centers")
	}
}

func TestDetectBlobsDarkChannelIsEmpty(t *testing.T) {
	f := imgproc.NewField(50, 50)
	mask := DetectBlobs(f, DefaultBlobParams())
	if !mask.Empty() {
		t.Errorf("all-dark channel yielded %d foreground pixels, want 0", mask.Count())
	}
}

func TestDetectBlobsSDOGRespondsToDisk(t *testing.T) {
	f := imgproc.NewField(60, 60)
	diskField(f, 30, 30, 4, 1)

	mask := DetectBlobsSDOG(f, DefaultSDOGParams())
	if mask.Empty() {
		t.Fatal("steerable detector found nothing on a bright disk")
	}
	// The response concentrates at the disk; nothing should fire in the
	// far corner.
	if mask.At(5, 5) {
		t.Error("steerable detector fired on flat background")
	}
}

func TestCombineRedMasksKeepsIntersection(t *testing.T) {
	w, h := 40, 40
	dog := imgproc.NewMask(w, h)
	sdog := imgproc.NewMask(w, h)
	raw := imgproc.NewField(w, h)

	// Both methods agree on a dark object: kept regardless of intensity.
	for y := 5; y <= 8; y++ {
		for x := 5; x <= 8; x++ {
			dog.Set(x, y, true)
			sdog.Set(x, y, true)
		}
	}

	final := CombineRedMasks(dog, sdog, raw, RedCombineIntensityThreshold)
	if !final.At(6, 6) {
		t.Error("agreed detection must survive regardless of raw intensity")
	}
}

func TestCombineRedMasksFiltersDisputed(t *testing.T) {
	w, h := 40, 40
	dog := imgproc.NewMask(w, h)
	sdog := imgproc.NewMask(w, h)
	raw := imgproc.NewField(w, h)

	// DoG-only bright object: survives the intensity vote.
	for y := 5; y <= 8; y++ {
		for x := 5; x <= 8; x++ {
			dog.Set(x, y, true)
			raw.Set(x, y, 0.5)
		}
	}
	// SDOG-only dim object: dropped.
	for y := 25; y <= 28; y++ {
		for x := 25; x <= 28; x++ {
			sdog.Set(x, y, true)
			raw.Set(x, y, 0.05)
		}
	}

	final := CombineRedMasks(dog, sdog, raw, RedCombineIntensityThreshold)
	if !final.At(6, 6) {
		t.Error("bright single-method detection should be kept")
	}
	if final.At(26, 26) {
		t.Error("dim single-method detection should be dropped")
	}
}

func TestCombineRedMasksIntensityBoundaryIsStrict(t *testing.T) {
	w, h := 20, 20
	dog := imgproc.NewMask(w, h)
	sdog := imgproc.NewMask(w, h)
	raw := imgproc.NewField(w, h)

	dog.Set(10, 10, true)
	raw.Set(10, 10, RedCombineIntensityThreshold) // exactly at the cutoff

	final := CombineRedMasks(dog, sdog, raw, RedCombineIntensityThreshold)
	if final.At(10, 10) {
		t.Error("mean exactly at the threshold must not pass the strict comparison")
	}
}
