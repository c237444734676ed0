package detect

import (
	"math"
	"testing"

	"cellquant/pkg/imgproc"
)

// nuclearChannel builds a synthetic nuclear stain: uniform dim
// background with bright disks.
func nuclearChannel(width, height int, disks [][3]int) *imgproc.Field {
	f := imgproc.NewField(width, height)
	for i := range f.Pix {
		f.Pix[i] = 0.1
	}
	for _, d := range disks {
		diskField(f, d[0], d[1], d[2], 0.9)
	}
	return f
}

func TestSegmentNucleiSingleDisk(t *testing.T) {
	f := nuclearChannel(100, 100, [][3]int{{50, 50, 12}})

	seg := SegmentNuclei(f, DefaultNucleusParams())
	if len(seg.Nuclei) != 1 {
		t.Fatalf("segmented %d nuclei, want 1", len(seg.Nuclei))
	}

	n := seg.Nuclei[0]
	if math.Abs(n.Centroid.X-50) > 2 || math.Abs(n.Centroid.Y-50) > 2 {
		t.Errorf("centroid = %v, want near (50,50)", n.Centroid)
	}
	// Disk of radius 12 covers ~452 px; equalization may move the
	// boundary slightly.
	if n.Area < 300 || n.Area > 650 {
		t.Errorf("area = %d, want near 452", n.Area)
	}
	if len(n.BoundaryRadius) == 0 {
		t.Error("nucleus record should carry a boundary profile")
	}
}

func TestSegmentNucleiDropsDebris(t *testing.T) {
	f := nuclearChannel(100, 100, [][3]int{{50, 50, 12}, {20, 20, 3}})

	seg := SegmentNuclei(f, DefaultNucleusParams())
	// The radius-3 speck (~29 px) sits below the 100 px area floor.
	if len(seg.Nuclei) != 1 {
		t.Errorf("segmented %d nuclei, want 1 after debris removal", len(seg.Nuclei))
	}
}

func TestSegmentNucleiClearsBorderTouching(t *testing.T) {
	f := nuclearChannel(100, 100, [][3]int{{50, 50, 12}, {0, 50, 10}})

	seg := SegmentNuclei(f, DefaultNucleusParams())
	if len(seg.Nuclei) != 1 {
		t.Errorf("segmented %d nuclei, want 1 after border clearing", len(seg.Nuclei))
	}
	if len(seg.Nuclei) == 1 && seg.Nuclei[0].Centroid.X < 40 {
		t.Error("surviving nucleus should be the centered one")
	}
}

func TestSegmentNucleiEmptyChannel(t *testing.T) {
	f := imgproc.NewField(60, 60)
	for i := range f.Pix {
		f.Pix[i] = 0.1
	}

	seg := SegmentNuclei(f, DefaultNucleusParams())
	if len(seg.Nuclei) != 0 {
		t.Errorf("flat channel segmented %d nuclei, want 0", len(seg.Nuclei))
	}
}

func TestMergeSmallNucleiKeepsNearbyFragment(t *testing.T) {
	// One large nucleus with a small fragment 10 px away, plus a second
	// large nucleus so the median is meaningful, and a stranded fragment.
	mask := imgproc.NewMask(120, 60)
	paint := func(cx, cy, r int) {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy <= r*r {
					mask.Set(cx+dx, cy+dy, true)
				}
			}
		}
	}
	paint(25, 30, 10)
	paint(85, 30, 10)
	paint(40, 30, 2)  // near the first large nucleus
	paint(60, 10, 2)  // stranded

	p := DefaultNucleusParams()
	out := mergeSmallNuclei(mask, p)

	if !out.At(40, 30) {
		t.Error("fragment within MergeDist of a large nucleus should be kept")
	}
	if out.At(60, 10) {
		t.Error("stranded fragment should be dropped")
	}
	if !out.At(25, 30) || !out.At(85, 30) {
		t.Error("large nuclei must be untouched")
	}
}
