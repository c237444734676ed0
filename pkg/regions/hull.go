package regions

import (
	"image"
	"sort"
)

// convexHull computes the convex hull of a point set with the
// Andrew monotone-chain algorithm. The result is in counterclockwise
// order without the closing point. Fewer than three distinct
// non-collinear points yield the degenerate hull as-is.
func convexHull(points []image.Point) []image.Point {
	if len(points) < 3 {
		return points
	}
	pts := make([]image.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []image.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []image.Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// convexPixelCount counts the pixels of the filled convex hull of a
// region's pixel set, scanning only the bounding box. This is the
// ConvexArea that Solidity divides by.
func convexPixelCount(pixels []int, width int, bbox image.Rectangle) int {
	if len(pixels) == 0 {
		return 0
	}
	points := make([]image.Point, len(pixels))
	for i, idx := range pixels {
		points[i] = image.Point{X: idx % width, Y: idx / width}
	}
	hull := convexHull(points)
	if len(hull) < 3 {
		// Collinear region: the hull is the region itself.
		return len(pixels)
	}

	count := 0
	for y := bbox.Min.Y; y < bbox.Max.Y; y++ {
		for x := bbox.Min.X; x < bbox.Max.X; x++ {
			if insideConvex(hull, x, y) {
				count++
			}
		}
	}
	return count
}

// insideConvex reports whether pixel center (x, y) lies inside or on a
// counterclockwise convex polygon.
func insideConvex(hull []image.Point, x, y int) bool {
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if cross < 0 {
			return false
		}
	}
	return true
}
