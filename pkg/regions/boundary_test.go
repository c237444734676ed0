package regions

import (
	"image"
	"testing"

	"cellquant/pkg/imgproc"
)

func TestTraceBoundaryRectangleRing(t *testing.T) {
	m := imgproc.NewMask(10, 8)
	for y := 2; y <= 5; y++ {
		for x := 3; x <= 7; x++ {
			m.Set(x, y, true)
		}
	}
	lm, err := Label(m)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}

	boundary := TraceBoundary(lm, 1)
	// 5x4 rectangle: 2*(5+4) - 4 = 14 perimeter pixels.
	if len(boundary) != 14 {
		t.Fatalf("boundary has %d points, want 14", len(boundary))
	}
	if boundary[0] != (image.Point{X: 3, Y: 2}) {
		t.Errorf("trace starts at %v, want the topmost-leftmost pixel (3,2)", boundary[0])
	}

	// Every traced point must be a foreground pixel of the component.
	for _, p := range boundary {
		if lm.Labels[p.Y*lm.Width+p.X] != 1 {
			t.Fatalf("boundary point %v is not in the component", p)
		}
	}
}

func TestTraceBoundaryNeckPassesStartTwice(t *testing.T) {
	// Two diagonal lobes joined at the top pixel: the contour runs
	// through the junction twice, so stopping at the first return to the
	// start would lose the second lobe.
	m := imgproc.NewMask(4, 3)
	m.Set(1, 0, true)
	m.Set(0, 1, true)
	m.Set(2, 1, true)
	lm, err := Label(m)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}

	boundary := TraceBoundary(lm, 1)
	if len(boundary) != 4 {
		t.Fatalf("boundary has %d points, want 4: %v", len(boundary), boundary)
	}
	seen := make(map[image.Point]bool, len(boundary))
	for _, p := range boundary {
		seen[p] = true
	}
	for _, p := range []image.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 1}} {
		if !seen[p] {
			t.Errorf("contour missed pixel %v: %v", p, boundary)
		}
	}
}

func TestTraceBoundarySinglePixel(t *testing.T) {
	m := imgproc.NewMask(3, 3)
	m.Set(1, 1, true)
	lm, err := Label(m)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}

	boundary := TraceBoundary(lm, 1)
	if len(boundary) != 1 {
		t.Errorf("single pixel boundary has %d points, want 1", len(boundary))
	}
}

func TestTraceBoundaryMissingLabel(t *testing.T) {
	m := imgproc.NewMask(3, 3)
	m.Set(1, 1, true)
	lm, err := Label(m)
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if pts := TraceBoundary(lm, 7); len(pts) != 0 {
		t.Errorf("missing label traced %d points, want 0", len(pts))
	}
}
