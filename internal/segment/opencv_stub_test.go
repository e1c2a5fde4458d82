//go:build !gocv
// +build !gocv

package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
)

func TestOpenCVStubFails(t *testing.T) {
	_, err := NewOpenCV(DefaultThresholds()).Segment(leafimage.Uniform(2, 2, 0, 255, 0))
	assert.ErrorIs(t, err, ErrOpenCVDisabled)
}

func TestNewRejectsOpenCVWithoutTag(t *testing.T) {
	s, err := New(BackendOpenCV, DefaultThresholds())
	assert.ErrorIs(t, err, ErrOpenCVDisabled)
	assert.Nil(t, s)
}
