//go:build gocv
// +build gocv

package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
)

func TestNewSelectsOpenCV(t *testing.T) {
	s, err := New(BackendOpenCV, DefaultThresholds())
	require.NoError(t, err)
	assert.IsType(t, &OpenCV{}, s)
}

func TestOpenCVMatchesNative(t *testing.T) {
	img := leafimage.New(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, uint8(x*16), uint8(y*16), uint8((x+y)*8))
		}
	}

	want, err := NewNative(DefaultThresholds()).Segment(img)
	require.NoError(t, err)
	got, err := NewOpenCV(DefaultThresholds()).Segment(img)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}
