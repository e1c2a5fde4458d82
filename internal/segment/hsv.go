package segment

import "math"

// Fixed-point RGB->HSV in OpenCV's 8-bit convention: H in [0,180),
// S and V in [0,255]. The tables reproduce OpenCV's rounding so thresholds
// tuned against cv2 select the same pixels here.
const hsvShift = 12

var (
	sdivTable [256]int
	hdivTable [256]int
)

func init() {
	for i := 1; i < 256; i++ {
		sdivTable[i] = int(math.Round(float64(255<<hsvShift) / float64(i)))
		hdivTable[i] = int(math.Round(float64(180<<hsvShift) / (6 * float64(i))))
	}
}

// RGBToHSV converts one 8-bit pixel.
func RGBToHSV(r, g, b uint8) (h, s, v uint8) {
	ri, gi, bi := int(r), int(g), int(b)

	maxC := ri
	if gi > maxC {
		maxC = gi
	}
	if bi > maxC {
		maxC = bi
	}
	minC := ri
	if gi < minC {
		minC = gi
	}
	if bi < minC {
		minC = bi
	}
	diff := maxC - minC

	sat := (diff*sdivTable[maxC] + (1 << (hsvShift - 1))) >> hsvShift

	var hue int
	switch {
	case maxC == ri:
		hue = gi - bi
	case maxC == gi:
		hue = bi - ri + 2*diff
	default:
		hue = ri - gi + 4*diff
	}
	hue = (hue*hdivTable[diff] + (1 << (hsvShift - 1))) >> hsvShift
	if hue < 0 {
		hue += 180
	}

	return uint8(hue), uint8(sat), uint8(maxC)
}
