package regions

import (
	"image"
	"math"

	"cellquant/pkg/imgproc"
)

// Extract computes the full property schema for every component of a
// label map, in label order. The returned records own their pixel
// index lists.
func Extract(lm *LabelMap) []*RegionRecord {
	if lm.N == 0 {
		return nil
	}

	records := make([]*RegionRecord, lm.N)
	for i := range records {
		// The seed box is inverted so the first pixel snaps both corners;
		// image.Rect would canonicalize it away, hence the struct literal.
		records[i] = &RegionRecord{
			ID:            i + 1,
			BBox:          image.Rectangle{Min: image.Point{X: lm.Width, Y: lm.Height}},
			MeanIntensity: make(map[string]float64),
		}
	}

	// First pass: areas, centroids, bounding boxes, pixel ownership.
	for idx, label := range lm.Labels {
		if label == 0 {
			continue
		}
		r := records[label-1]
		x, y := idx%lm.Width, idx/lm.Width
		r.Area++
		r.Centroid.X += float64(x)
		r.Centroid.Y += float64(y)
		r.Pixels = append(r.Pixels, idx)
		if x < r.BBox.Min.X {
			r.BBox.Min.X = x
		}
		if y < r.BBox.Min.Y {
			r.BBox.Min.Y = y
		}
		if x+1 > r.BBox.Max.X {
			r.BBox.Max.X = x + 1
		}
		if y+1 > r.BBox.Max.Y {
			r.BBox.Max.Y = y + 1
		}
	}

	for _, r := range records {
		n := float64(r.Area)
		r.Centroid.X /= n
		r.Centroid.Y /= n

		// Central second moments with the 1/12 per-pixel correction, so
		// a single pixel behaves like a unit square rather than a point.
		var mu20, mu02, mu11 float64
		for _, idx := range r.Pixels {
			dx := float64(idx%lm.Width) - r.Centroid.X
			dy := float64(idx/lm.Width) - r.Centroid.Y
			mu20 += dx * dx
			mu02 += dy * dy
			mu11 += dx * dy
		}
		mu20 = mu20/n + 1.0/12.0
		mu02 = mu02/n + 1.0/12.0
		mu11 /= n

		common := math.Sqrt((mu20-mu02)*(mu20-mu02) + 4*mu11*mu11)
		l1 := (mu20 + mu02 + common) / 2
		l2 := (mu20 + mu02 - common) / 2
		r.MajorAxisLength = 4 * math.Sqrt(l1)
		r.MinorAxisLength = 4 * math.Sqrt(l2)
		if l1 > 0 {
			ratio := l2 / l1
			if ratio < 0 {
				ratio = 0
			}
			r.Eccentricity = math.Sqrt(1 - ratio)
		}

		r.EquivDiameter = math.Sqrt(4 * n / math.Pi)
		bboxArea := float64(r.BBox.Dx() * r.BBox.Dy())
		if bboxArea > 0 {
			r.Extent = n / bboxArea
		}

		boundary := TraceBoundary(lm, r.ID)
		r.Perimeter = boundaryLength(boundary)

		r.ConvexArea = convexPixelCount(r.Pixels, lm.Width, r.BBox)
		if r.ConvexArea < r.Area {
			r.ConvexArea = r.Area
		}
		r.Solidity = n / float64(r.ConvexArea)
	}
	return records
}

// ExtractNuclei extracts records and attaches the polar boundary
// profile of each nucleus: per boundary point, the radius and angle
// relative to the centroid. The profile is diagnostic output only.
func ExtractNuclei(lm *LabelMap) []*NucleusRecord {
	base := Extract(lm)
	nuclei := make([]*NucleusRecord, len(base))
	for i, r := range base {
		nr := &NucleusRecord{RegionRecord: *r}
		boundary := TraceBoundary(lm, r.ID)
		nr.BoundaryRadius = make([]float64, len(boundary))
		nr.BoundaryAngle = make([]float64, len(boundary))
		for j, p := range boundary {
			dx := float64(p.X) - r.Centroid.X
			dy := float64(p.Y) - r.Centroid.Y
			nr.BoundaryRadius[j] = math.Hypot(dx, dy)
			nr.BoundaryAngle[j] = math.Atan2(dy, dx)
		}
		nuclei[i] = nr
	}
	return nuclei
}

// AddMeanIntensity enriches each record with the mean of the given raw
// channel over the record's pixels, stored under the channel name.
func AddMeanIntensity(records []*RegionRecord, channel *imgproc.Field, name string) {
	for _, r := range records {
		if len(r.Pixels) == 0 {
			continue
		}
		sum := 0.0
		for _, idx := range r.Pixels {
			sum += channel.Pix[idx]
		}
		r.MeanIntensity[name] = sum / float64(len(r.Pixels))
	}
}

// MeanPixelIntensity returns the mean raw intensity of an arbitrary
// pixel index set. An empty set reads as NaN.
func MeanPixelIntensity(pixels []int, channel *imgproc.Field) float64 {
	if len(pixels) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, idx := range pixels {
		sum += channel.Pix[idx]
	}
	return sum / float64(len(pixels))
}
