package regions

import (
	"image"
)

// Point is a continuous pixel coordinate (x right, y down).
type Point struct {
	X float64
	Y float64
}

// RegionRecord is one detected object with the fixed property schema.
// A record is created once by property extraction and then enriched in
// place by later stages (intensity sampling, nucleus assignment); it is
// never merged or split after creation.
type RegionRecord struct {
	// ID is the label value in the originating LabelMap.
	ID int

	// Centroid is the intensity-unweighted center of mass in pixel
	// coordinates.
	Centroid Point

	// Area is the pixel count.
	Area int

	// Perimeter is the length of the traced outer boundary.
	Perimeter float64

	// Eccentricity of the ellipse with matching second moments,
	// 0 for a circle approaching 1 for a line segment.
	Eccentricity float64

	// Solidity is Area / ConvexArea.
	Solidity float64

	// Extent is Area / bounding-box area.
	Extent float64

	// EquivDiameter is the diameter of the circle with the same area.
	EquivDiameter float64

	// MajorAxisLength and MinorAxisLength are the axes of the
	// matching-moments ellipse.
	MajorAxisLength float64
	MinorAxisLength float64

	// BBox is the tight bounding box of the region pixels.
	BBox image.Rectangle

	// ConvexArea is the pixel count of the filled convex hull.
	ConvexArea int

	// Pixels are the flat row-major indices owned exclusively by this
	// record; downstream intensity and overlay computation reads them.
	Pixels []int

	// AssignedNucleusID is the parent nucleus id, set by the assignment
	// stage. Zero means unassigned.
	AssignedNucleusID int

	// MeanIntensity holds per-channel mean raw intensities over the
	// region pixels, keyed by channel name ("red", "green", "blue").
	MeanIntensity map[string]float64
}

// NucleusRecord extends RegionRecord with the polar boundary profile
// used for diagnostic shape inspection. The profile never feeds back
// into pipeline decisions.
type NucleusRecord struct {
	RegionRecord

	// BoundaryRadius and BoundaryAngle describe each traced boundary
	// point relative to the centroid: distance in pixels and angle in
	// radians.
	BoundaryRadius []float64
	BoundaryAngle  []float64
}

// Grouping maps nucleus ids 1..NumNuclei to the objects assigned to
// them, in assignment order. Objects without a valid assignment are
// absent, never kept with a dangling reference.
type Grouping struct {
	// NumNuclei fixes the id range; ByNucleus has exactly NumNuclei
	// entries, index i holding the objects of nucleus i+1.
	NumNuclei int
	ByNucleus [][]*RegionRecord
}
