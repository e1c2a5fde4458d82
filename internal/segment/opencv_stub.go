//go:build !gocv
// +build !gocv

package segment

import "github.com/aliffadillah/durian-leaf-classification/internal/leafimage"

// OpenCV is unavailable without the gocv build tag.
type OpenCV struct {
	Thresholds Thresholds
}

func NewOpenCV(t Thresholds) *OpenCV {
	return &OpenCV{Thresholds: t}
}

// newOpenCV refuses the backend so a misconfigured build fails at startup.
func newOpenCV(Thresholds) (Segmenter, error) {
	return nil, ErrOpenCVDisabled
}

// Segment always fails in builds without OpenCV.
func (o *OpenCV) Segment(*leafimage.Image) (*leafimage.Image, error) {
	return nil, ErrOpenCVDisabled
}
