package leafimage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when the input bytes are not a decodable image.
var ErrDecode = errors.New("cannot decode image")

// DefaultMaxPixels bounds the raster Decode will allocate.
const DefaultMaxPixels = 40_000_000

// Decode reads an image in any registered format (JPEG, PNG, GIF, BMP,
// TIFF, WebP), applying the EXIF orientation tag the way camera uploads
// expect. Images over DefaultMaxPixels are rejected.
func Decode(r io.Reader) (*Image, error) {
	return DecodeLimit(r, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel bound. The header is checked
// before any pixel data is decoded, so a small file declaring huge
// dimensions fails without allocating its raster.
func DecodeLimit(r io.Reader, maxPixels int64) (*Image, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, maxPixels)
	}

	src, err := imaging.Decode(io.MultiReader(&header, r), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	img := FromImage(src)
	if img.Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	return img, nil
}

// DecodeFile opens and decodes path.
func DecodeFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes img as PNG, or JPEG when format is "jpg"/"jpeg".
func Encode(w io.Writer, img *Image, format string) error {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return jpeg.Encode(w, img.ToRGBA(), &jpeg.Options{Quality: 95})
	default:
		return png.Encode(w, img.ToRGBA())
	}
}

// EncodeFile writes img to path, picking the format from the extension.
func EncodeFile(path string, img *Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := Encode(f, img, strings.TrimPrefix(filepath.Ext(path), ".")); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return f.Close()
}

// Downscale shrinks img so its longer side is at most maxSide, keeping the
// aspect ratio. Images already within bounds, or maxSide 0, are returned as is.
func Downscale(img *Image, maxSide uint) *Image {
	if maxSide == 0 || (uint(img.Width) <= maxSide && uint(img.Height) <= maxSide) {
		return img
	}
	resized := resize.Thumbnail(maxSide, maxSide, img.ToRGBA(), resize.Lanczos3)
	return FromImage(resized)
}
