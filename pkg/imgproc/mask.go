package imgproc

// Mask is a binary raster stored in row-major order. It represents
// candidate or final region indicators between detector stages.
type Mask struct {
	// Pix holds the on/off samples in row-major order, length Width*Height.
	Pix []bool

	// Width and Height are the raster dimensions in pixels.
	Width  int
	Height int
}

// NewMask allocates an all-false mask of the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{
		Pix:    make([]bool, width*height),
		Width:  width,
		Height: height,
	}
}

// At reports whether the pixel at (x, y) is set. Out-of-range
// coordinates read as false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = on
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Pix, m.Pix)
	return out
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, on := range m.Pix {
		if on {
			n++
		}
	}
	return n
}

// Empty reports whether no pixel is set.
func (m *Mask) Empty() bool {
	return m.Count() == 0
}

func sameMaskSize(a, b *Mask) bool {
	return a.Width == b.Width && a.Height == b.Height
}

// And returns the intersection of two masks of equal size.
func And(a, b *Mask) *Mask {
	if !sameMaskSize(a, b) {
		return nil
	}
	out := NewMask(a.Width, a.Height)
	for i := range a.Pix {
		out.Pix[i] = a.Pix[i] && b.Pix[i]
	}
	return out
}

// Xor returns the symmetric difference of two masks of equal size:
// pixels set in exactly one of the inputs.
func Xor(a, b *Mask) *Mask {
	if !sameMaskSize(a, b) {
		return nil
	}
	out := NewMask(a.Width, a.Height)
	for i := range a.Pix {
		out.Pix[i] = a.Pix[i] != b.Pix[i]
	}
	return out
}

// AndNot returns a with every pixel of b cleared.
func AndNot(a, b *Mask) *Mask {
	if !sameMaskSize(a, b) {
		return nil
	}
	out := NewMask(a.Width, a.Height)
	for i := range a.Pix {
		out.Pix[i] = a.Pix[i] && !b.Pix[i]
	}
	return out
}
