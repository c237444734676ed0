package imgproc

// claheBins is the histogram resolution used for the tile mappings.
const claheBins = 256

// AdaptiveEqualize applies contrast-limited adaptive histogram
// equalization to a field in [0,1]. The raster is divided into a
// tilesX x tilesY grid; each tile gets a clip-limited equalization
// mapping and output pixels bilinearly interpolate between the four
// surrounding tile mappings, which avoids visible tile seams.
//
// clipLimit is the normalized clip fraction: each histogram bin is
// limited to clipLimit * tileArea counts and the clipped excess is
// redistributed uniformly. Typical microscopy values are 0.01-0.03.
func AdaptiveEqualize(f *Field, tilesX, tilesY int, clipLimit float64) *Field {
	if tilesX < 1 {
		tilesX = 1
	}
	if tilesY < 1 {
		tilesY = 1
	}
	if clipLimit <= 0 {
		clipLimit = 0.01
	}

	tileW := (f.Width + tilesX - 1) / tilesX
	tileH := (f.Height + tilesY - 1) / tilesY
	if tileW < 1 || tileH < 1 {
		return f.Clone()
	}

	// Build one clip-limited CDF mapping per tile.
	mappings := make([][]float64, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := x0 + tileW
			y1 := y0 + tileH
			if x1 > f.Width {
				x1 = f.Width
			}
			if y1 > f.Height {
				y1 = f.Height
			}
			mappings[ty*tilesX+tx] = tileMapping(f, x0, y0, x1, y1, clipLimit)
		}
	}

	out := NewField(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			bin := sampleBin(f.Pix[y*f.Width+x])

			// Position relative to tile centers.
			fx := (float64(x)-float64(tileW)/2 + 0.5) / float64(tileW)
			fy := (float64(y)-float64(tileH)/2 + 0.5) / float64(tileH)
			tx0 := int(fx)
			ty0 := int(fy)
			if fx < 0 {
				tx0 = -1
			}
			if fy < 0 {
				ty0 = -1
			}
			wx := fx - float64(tx0)
			wy := fy - float64(ty0)

			m00 := tileAt(mappings, tilesX, tilesY, tx0, ty0)
			m10 := tileAt(mappings, tilesX, tilesY, tx0+1, ty0)
			m01 := tileAt(mappings, tilesX, tilesY, tx0, ty0+1)
			m11 := tileAt(mappings, tilesX, tilesY, tx0+1, ty0+1)

			top := (1-wx)*m00[bin] + wx*m10[bin]
			bottom := (1-wx)*m01[bin] + wx*m11[bin]
			out.Pix[y*f.Width+x] = (1-wy)*top + wy*bottom
		}
	}
	return out
}

// tileMapping computes the clip-limited equalization mapping for one
// tile, returning a bin -> [0,1] lookup table.
func tileMapping(f *Field, x0, y0, x1, y1 int, clipLimit float64) []float64 {
	hist := make([]float64, claheBins)
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[sampleBin(f.Pix[y*f.Width+x])]++
			n++
		}
	}
	mapping := make([]float64, claheBins)
	if n == 0 {
		for i := range mapping {
			mapping[i] = float64(i) / float64(claheBins-1)
		}
		return mapping
	}

	// Clip the histogram and redistribute the excess uniformly.
	clip := clipLimit * float64(n)
	if clip < 1 {
		clip = 1
	}
	excess := 0.0
	for i, c := range hist {
		if c > clip {
			excess += c - clip
			hist[i] = clip
		}
	}
	redist := excess / float64(claheBins)
	for i := range hist {
		hist[i] += redist
	}

	cdf := 0.0
	for i, c := range hist {
		cdf += c
		mapping[i] = cdf / float64(n)
	}
	return mapping
}

// tileAt returns the mapping of tile (tx, ty), clamping to the grid so
// border pixels extrapolate from the nearest tile.
func tileAt(mappings [][]float64, tilesX, tilesY, tx, ty int) []float64 {
	if tx < 0 {
		tx = 0
	} else if tx >= tilesX {
		tx = tilesX - 1
	}
	if ty < 0 {
		ty = 0
	} else if ty >= tilesY {
		ty = tilesY - 1
	}
	return mappings[ty*tilesX+tx]
}

// sampleBin quantizes a [0,1] sample into one of claheBins bins,
// clamping values that drift outside the range.
func sampleBin(v float64) int {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return claheBins - 1
	}
	return int(v * float64(claheBins))
}
