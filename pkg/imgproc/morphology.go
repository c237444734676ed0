package imgproc

// DiskKernel returns the neighborhood offsets of a disk-shaped
// structuring element with the given radius. Radius 1 yields the
// 3x3 cross (diagonals fall outside the disk) used for small-gap
// closing.
func DiskKernel(radius int) [][2]int {
	if radius < 0 {
		radius = 0
	}
	var offsets [][2]int
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				offsets = append(offsets, [2]int{dx, dy})
			}
		}
	}
	return offsets
}

// Dilate sets every pixel whose disk neighborhood contains a set pixel.
func Dilate(m *Mask, radius int) *Mask {
	if radius <= 0 {
		return m.Clone()
	}
	offsets := DiskKernel(radius)
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Pix[y*m.Width+x] {
				continue
			}
			for _, off := range offsets {
				out.Set(x+off[0], y+off[1], true)
			}
		}
	}
	return out
}

// Erode clears every pixel whose disk neighborhood is not fully set.
// Neighborhoods reaching outside the raster count as unset, so objects
// touching the border erode from the border inward.
func Erode(m *Mask, radius int) *Mask {
	if radius <= 0 {
		return m.Clone()
	}
	offsets := DiskKernel(radius)
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Pix[y*m.Width+x] {
				continue
			}
			keep := true
			for _, off := range offsets {
				if !m.At(x+off[0], y+off[1]) {
					keep = false
					break
				}
			}
			out.Pix[y*m.Width+x] = keep
		}
	}
	return out
}

// Open erodes then dilates, removing thin protrusions and specks.
func Open(m *Mask, radius int) *Mask {
	return Dilate(Erode(m, radius), radius)
}

// Close dilates then erodes, fusing narrow breaks and closing small gaps.
func Close(m *Mask, radius int) *Mask {
	return Erode(Dilate(m, radius), radius)
}

// GrayDilate replaces each sample with the maximum over its disk
// neighborhood; out-of-range neighbors are ignored.
func GrayDilate(f *Field, radius int) *Field {
	if radius <= 0 {
		return f.Clone()
	}
	offsets := DiskKernel(radius)
	out := NewField(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			max := f.Pix[y*f.Width+x]
			for _, off := range offsets {
				sx, sy := x+off[0], y+off[1]
				if sx < 0 || sx >= f.Width || sy < 0 || sy >= f.Height {
					continue
				}
				if v := f.Pix[sy*f.Width+sx]; v > max {
					max = v
				}
			}
			out.Pix[y*f.Width+x] = max
		}
	}
	return out
}

// GrayErode replaces each sample with the minimum over its disk
// neighborhood; out-of-range neighbors are ignored.
func GrayErode(f *Field, radius int) *Field {
	if radius <= 0 {
		return f.Clone()
	}
	offsets := DiskKernel(radius)
	out := NewField(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			min := f.Pix[y*f.Width+x]
			for _, off := range offsets {
				sx, sy := x+off[0], y+off[1]
				if sx < 0 || sx >= f.Width || sy < 0 || sy >= f.Height {
					continue
				}
				if v := f.Pix[sy*f.Width+sx]; v < min {
					min = v
				}
			}
			out.Pix[y*f.Width+x] = min
		}
	}
	return out
}

// GrayOpen performs a grayscale opening (erosion then dilation). With a
// large radius this estimates the smooth background of a channel.
func GrayOpen(f *Field, radius int) *Field {
	return GrayDilate(GrayErode(f, radius), radius)
}

// eightNeighbors is the 8-connectivity offset table shared by the
// flood-fill operations. The raster order of these offsets does not
// affect results, only traversal order.
var eightNeighbors = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// FillHoles sets every background pixel not reachable from the raster
// border through 4-connected background. Foreground-enclosed cavities
// become foreground; the background connectivity is deliberately
// 4-connected, the complement of 8-connected foreground.
func FillHoles(m *Mask) *Mask {
	w, h := m.Width, m.Height
	reached := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))

	push := func(x, y int) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		idx := y*w + x
		if m.Pix[idx] || reached[idx] {
			return
		}
		reached[idx] = true
		queue = append(queue, idx)
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		x, y := idx%w, idx/w
		push(x-1, y)
		push(x+1, y)
		push(x, y-1)
		push(x, y+1)
	}

	out := NewMask(w, h)
	for i := range out.Pix {
		out.Pix[i] = m.Pix[i] || !reached[i]
	}
	return out
}

// RemoveSmallObjects clears 8-connected components with fewer than
// minArea pixels.
func RemoveSmallObjects(m *Mask, minArea int) *Mask {
	if minArea <= 1 {
		return m.Clone()
	}
	w, h := m.Width, m.Height
	out := m.Clone()
	visited := make([]bool, w*h)
	queue := make([]int, 0, 256)
	component := make([]int, 0, 256)

	for start := range m.Pix {
		if !m.Pix[start] || visited[start] {
			continue
		}
		queue = append(queue[:0], start)
		component = append(component[:0], start)
		visited[start] = true

		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			x, y := idx%w, idx/w
			for _, off := range eightNeighbors {
				nx, ny := x+off[0], y+off[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if m.Pix[ni] && !visited[ni] {
					visited[ni] = true
					queue = append(queue, ni)
					component = append(component, ni)
				}
			}
		}

		if len(component) < minArea {
			for _, idx := range component {
				out.Pix[idx] = false
			}
		}
	}
	return out
}

// ClearBorder removes every 8-connected component that touches the
// raster border.
func ClearBorder(m *Mask) *Mask {
	w, h := m.Width, m.Height
	out := m.Clone()
	queue := make([]int, 0, 2*(w+h))

	push := func(x, y int) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		idx := y*w + x
		if !out.Pix[idx] {
			return
		}
		out.Pix[idx] = false
		queue = append(queue, idx)
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		x, y := idx%w, idx/w
		for _, off := range eightNeighbors {
			push(x+off[0], y+off[1])
		}
	}
	return out
}
