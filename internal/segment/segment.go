// Package segment isolates leaf tissue from the background of a photo by
// thresholding each pixel in HSV space.
package segment

import (
	"errors"
	"fmt"

	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
)

const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

var (
	ErrEmptyImage     = errors.New("image has no pixels")
	ErrOpenCVDisabled = errors.New("gocv build tag is not enabled")
)

// Thresholds are inclusive HSV bounds (H 0-180, S and V 0-255).
type Thresholds struct {
	HueMin, HueMax int
	SatMin, SatMax int
	ValMin, ValMax int
}

// DefaultThresholds selects green plant tissue and rejects near-white,
// near-black and washed-out background.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HueMin: 25, HueMax: 95,
		SatMin: 40, SatMax: 255,
		ValMin: 40, ValMax: 255,
	}
}

// Validate checks ranges are ordered and inside the 8-bit HSV domain.
func (t Thresholds) Validate() error {
	check := func(name string, lo, hi, limit int) error {
		if lo < 0 || hi > limit || lo > hi {
			return fmt.Errorf("invalid %s range [%d, %d]", name, lo, hi)
		}
		return nil
	}
	if err := check("hue", t.HueMin, t.HueMax, 180); err != nil {
		return err
	}
	if err := check("saturation", t.SatMin, t.SatMax, 255); err != nil {
		return err
	}
	return check("value", t.ValMin, t.ValMax, 255)
}

// Contains reports whether an HSV triple lies inside every range.
func (t Thresholds) Contains(h, s, v uint8) bool {
	return int(h) >= t.HueMin && int(h) <= t.HueMax &&
		int(s) >= t.SatMin && int(s) <= t.SatMax &&
		int(v) >= t.ValMin && int(v) <= t.ValMax
}

// Segmenter produces a new image where background pixels are black.
type Segmenter interface {
	Segment(img *leafimage.Image) (*leafimage.Image, error)
}

// New returns the segmenter for backend ("native" or "opencv").
func New(backend string, t Thresholds) (Segmenter, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	switch backend {
	case "", BackendNative:
		return NewNative(t), nil
	case BackendOpenCV:
		return newOpenCV(t)
	default:
		return nil, fmt.Errorf("unknown segmentation backend %q", backend)
	}
}

// Native is the pure Go segmenter.
type Native struct {
	Thresholds Thresholds
}

func NewNative(t Thresholds) *Native {
	return &Native{Thresholds: t}
}

// Mask marks pixels whose HSV value falls inside the thresholds.
func (n *Native) Mask(img *leafimage.Image) *leafimage.Mask {
	m := leafimage.NewMask(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			h, s, v := RGBToHSV(img.At(x, y))
			if n.Thresholds.Contains(h, s, v) {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// Segment keeps masked-in pixels and zeroes the rest. When nothing matches
// the result is all black; that is not an error here.
func (n *Native) Segment(img *leafimage.Image) (*leafimage.Image, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}
	return img.Apply(n.Mask(img)), nil
}
