// Package leafimage holds the 8-bit RGB image and boolean mask types the
// classification pipeline works on, plus decoding and staging helpers.
package leafimage

import (
	"image"
	"image/color"
)

// Image is a packed 8-bit RGB raster. Pix holds 3 bytes per pixel in R, G, B
// order, row-major. An Image is treated as immutable once built; every
// transform in this module returns a new one.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns an all-zero (black) image.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 3*width*height),
	}
}

// Uniform returns an image where every pixel has the given color.
func Uniform(width, height int, r, g, b uint8) *Image {
	img := New(width, height)
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	return img
}

func (img *Image) offset(x, y int) int {
	return 3 * (y*img.Width + x)
}

// At returns the channels of pixel (x, y).
func (img *Image) At(x, y int) (r, g, b uint8) {
	i := img.offset(x, y)
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// Set writes pixel (x, y). Only used while an image is being built.
func (img *Image) Set(x, y int, r, g, b uint8) {
	i := img.offset(x, y)
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
}

// Empty reports whether the image has no pixels.
func (img *Image) Empty() bool {
	return img == nil || img.Width <= 0 || img.Height <= 0
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	out := &Image{Width: img.Width, Height: img.Height, Pix: make([]uint8, len(img.Pix))}
	copy(out.Pix, img.Pix)
	return out
}

// Equal reports whether both images have the same size and pixels.
func (img *Image) Equal(other *Image) bool {
	if img.Width != other.Width || img.Height != other.Height || len(img.Pix) != len(other.Pix) {
		return false
	}
	for i := range img.Pix {
		if img.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether every channel of every pixel is 0.
func (img *Image) IsZero() bool {
	for _, v := range img.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

// Apply returns a copy of img with every pixel outside the mask set to black.
func (img *Image) Apply(m *Mask) *Image {
	out := New(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if !m.At(x, y) {
				continue
			}
			i := img.offset(x, y)
			copy(out.Pix[i:i+3], img.Pix[i:i+3])
		}
	}
	return out
}

// FromImage converts any decoded image to packed RGB. Alpha is dropped
// without premultiplication, so transparent regions keep their stored color.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	img := New(bounds.Dx(), bounds.Dy())

	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < img.Height; y++ {
			row := s.Pix[s.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < img.Width; x++ {
				img.Set(x, y, row[4*x], row[4*x+1], row[4*x+2])
			}
		}
		return img
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			img.Set(x, y, c.R, c.G, c.B)
		}
	}
	return img
}

// ToRGBA converts the image to an opaque *image.RGBA for encoding.
func (img *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b := img.At(x, y)
			j := out.PixOffset(x, y)
			out.Pix[j], out.Pix[j+1], out.Pix[j+2], out.Pix[j+3] = r, g, b, 255
		}
	}
	return out
}

// BGR returns the pixels in OpenCV's B, G, R byte order.
func (img *Image) BGR() []byte {
	out := make([]byte, len(img.Pix))
	for i := 0; i < len(img.Pix); i += 3 {
		out[i], out[i+1], out[i+2] = img.Pix[i+2], img.Pix[i+1], img.Pix[i]
	}
	return out
}

// FromBGR builds an image from OpenCV-ordered bytes.
func FromBGR(width, height int, data []byte) *Image {
	img := New(width, height)
	for i := 0; i+2 < len(data) && i+2 < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = data[i+2], data[i+1], data[i]
	}
	return img
}
