package regions

import (
	"image"
	"math"
)

// TraceBoundary walks the outer boundary of the given label using
// Moore-neighbor tracing, starting from the region's first pixel in
// raster order. The returned points are ordered along the contour.
// A single-pixel region yields one point.
func TraceBoundary(lm *LabelMap, label int) []image.Point {
	w, h := lm.Width, lm.Height

	// Raster-order start pixel: the topmost-then-leftmost region pixel,
	// which guarantees the pixel above it is background.
	start := -1
	for idx, l := range lm.Labels {
		if l == label {
			start = idx
			break
		}
	}
	if start < 0 {
		return nil
	}

	inside := func(x, y int) bool {
		return x >= 0 && x < w && y >= 0 && y < h && lm.Labels[y*w+x] == label
	}

	sx, sy := start%w, start/w

	// Clockwise neighbor ring starting from the west neighbor.
	ring := [8][2]int{
		{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
		{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	}

	// advance scans clockwise from just past the backtrack direction and
	// returns the next contour pixel with its new backtrack: opposite of
	// the move direction, so the scan resumes just past the previous
	// pixel.
	advance := func(cx, cy, dir int) (int, int, int, bool) {
		for i := 0; i < 8; i++ {
			d := (dir + 1 + i) % 8
			nx, ny := cx+ring[d][0], cy+ring[d][1]
			if inside(nx, ny) {
				return nx, ny, (d + 4) % 8, true
			}
		}
		return 0, 0, 0, false
	}

	// Entry direction: we "came from" the pixel above the start, so the
	// backtrack begins at north.
	x1, y1, dir1, ok := advance(sx, sy, 2)
	if !ok {
		// Isolated pixel.
		return []image.Point{{X: sx, Y: sy}}
	}

	// Walk one full period of the trace cycle: stop when the state after
	// the first move recurs, not on the first return to the start pixel.
	// One-pixel-wide necks route the contour through the start more than
	// once, and stopping early there truncates the perimeter. The period
	// always ends on a start visit (the first move's backtrack points at
	// the start), so the trailing start rotates to the front to keep the
	// raster-order anchoring.
	var points []image.Point
	cx, cy, dir := x1, y1, dir1
	maxSteps := 4 * (w*h + 8)
	for step := 0; step < maxSteps; step++ {
		points = append(points, image.Point{X: cx, Y: cy})
		nx, ny, ndir, ok := advance(cx, cy, dir)
		if !ok || (nx == x1 && ny == y1 && ndir == dir1) {
			break
		}
		cx, cy, dir = nx, ny, ndir
	}

	boundary := make([]image.Point, 0, len(points))
	boundary = append(boundary, image.Point{X: sx, Y: sy})
	boundary = append(boundary, points[:len(points)-1]...)
	return boundary
}

// boundaryLength sums the Euclidean steps along a closed contour,
// including the closing segment back to the first point. Contours of
// fewer than two points have zero length.
func boundaryLength(boundary []image.Point) float64 {
	if len(boundary) < 2 {
		return 0
	}
	length := 0.0
	for i := range boundary {
		a := boundary[i]
		b := boundary[(i+1)%len(boundary)]
		length += math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
	}
	return length
}
