//go:build gocv
// +build gocv

package segment

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
)

// OpenCV segments with the same thresholds through OpenCV's inRange.
type OpenCV struct {
	Thresholds Thresholds
}

func NewOpenCV(t Thresholds) *OpenCV {
	return &OpenCV{Thresholds: t}
}

func newOpenCV(t Thresholds) (Segmenter, error) {
	return NewOpenCV(t), nil
}

func (o *OpenCV) Segment(img *leafimage.Image) (*leafimage.Image, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	src, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.BGR())
	if err != nil {
		return nil, fmt.Errorf("failed to wrap image: %w", err)
	}
	defer src.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	t := o.Thresholds
	lower := gocv.NewMatFromScalar(gocv.NewScalar(float64(t.HueMin), float64(t.SatMin), float64(t.ValMin), 0), gocv.MatTypeCV8UC3)
	defer lower.Close()
	upper := gocv.NewMatFromScalar(gocv.NewScalar(float64(t.HueMax), float64(t.SatMax), float64(t.ValMax), 0), gocv.MatTypeCV8UC3)
	defer upper.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRange(hsv, lower, upper, &mask)

	out := gocv.NewMatWithSize(img.Height, img.Width, gocv.MatTypeCV8UC3)
	defer out.Close()
	out.SetTo(gocv.NewScalar(0, 0, 0, 0))
	gocv.BitwiseAndWithMask(src, src, &out, mask)

	return leafimage.FromBGR(img.Width, img.Height, out.ToBytes()), nil
}
