package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
)

func TestRGBToHSV(t *testing.T) {
	cases := []struct {
		name    string
		r, g, b uint8
		h, s, v uint8
	}{
		{"black", 0, 0, 0, 0, 0, 0},
		{"white", 255, 255, 255, 0, 0, 255},
		{"red", 255, 0, 0, 0, 255, 255},
		{"green", 0, 255, 0, 60, 255, 255},
		{"blue", 0, 0, 255, 120, 255, 255},
		{"yellow", 255, 255, 0, 30, 255, 255},
		{"leaf", 50, 150, 40, 57, 187, 150},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h, s, v := RGBToHSV(c.r, c.g, c.b)
			assert.Equal(t, [3]uint8{c.h, c.s, c.v}, [3]uint8{h, s, v})
		})
	}
}

func TestThresholdsContainsIsInclusive(t *testing.T) {
	th := DefaultThresholds()
	assert.True(t, th.Contains(25, 40, 40))
	assert.True(t, th.Contains(95, 255, 255))
	assert.False(t, th.Contains(24, 200, 200))
	assert.False(t, th.Contains(96, 200, 200))
	assert.False(t, th.Contains(60, 39, 200))
	assert.False(t, th.Contains(60, 200, 39))
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.HueMin, bad.HueMax = 100, 50
	assert.Error(t, bad.Validate())

	bad = DefaultThresholds()
	bad.HueMax = 200
	assert.Error(t, bad.Validate())
}

func TestNewBackends(t *testing.T) {
	s, err := New("", DefaultThresholds())
	require.NoError(t, err)
	assert.IsType(t, &Native{}, s)

	_, err = New("sobel", DefaultThresholds())
	assert.Error(t, err)
}

func TestSegmentKeepsAllGreenImage(t *testing.T) {
	img := leafimage.Uniform(8, 6, 50, 150, 40)
	out, err := NewNative(DefaultThresholds()).Segment(img)
	require.NoError(t, err)
	assert.True(t, out.Equal(img))
	assert.NotSame(t, img, out)
}

func TestSegmentZeroesAllRedImage(t *testing.T) {
	img := leafimage.Uniform(8, 6, 255, 0, 0)
	out, err := NewNative(DefaultThresholds()).Segment(img)
	require.NoError(t, err)
	assert.True(t, out.IsZero())
	// source untouched
	r, g, b := img.At(3, 3)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
}

func TestSegmentMixedImage(t *testing.T) {
	img := leafimage.New(4, 1)
	img.Set(0, 0, 50, 150, 40)  // leaf
	img.Set(1, 0, 250, 250, 250) // white paper
	img.Set(2, 0, 10, 20, 10)    // shadow
	img.Set(3, 0, 0, 255, 0)     // pure green

	n := NewNative(DefaultThresholds())
	m := n.Mask(img)
	assert.Equal(t, []bool{true, false, false, true}, m.Bits)

	out, err := n.Segment(img)
	require.NoError(t, err)
	r, g, b := out.At(1, 0)
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
	r, g, b = out.At(0, 0)
	assert.Equal(t, [3]uint8{50, 150, 40}, [3]uint8{r, g, b})
}

func TestSegmentEmpty(t *testing.T) {
	_, err := NewNative(DefaultThresholds()).Segment(leafimage.New(0, 0))
	assert.ErrorIs(t, err, ErrEmptyImage)
}
