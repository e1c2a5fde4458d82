package leafimage

// Mask marks which pixels of an image of the same size belong to the leaf.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask returns a mask with every pixel unset.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Coverage returns the fraction of set pixels, 0 for an empty mask.
func (m *Mask) Coverage() float64 {
	if len(m.Bits) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.Bits))
}
