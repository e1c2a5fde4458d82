package leafimage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checker(w, h int) *Image {
	img := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, 30, 160, 40)
			}
		}
	}
	return img
}

func TestApplyZeroesOutsideMask(t *testing.T) {
	img := Uniform(3, 2, 10, 20, 30)
	m := NewMask(3, 2)
	m.Set(1, 0, true)
	m.Set(2, 1, true)

	out := img.Apply(m)

	assert.Equal(t, 2, m.Count())
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			r, g, b := out.At(x, y)
			if m.At(x, y) {
				assert.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{r, g, b})
			} else {
				assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
			}
		}
	}
	// input untouched
	assert.True(t, img.Equal(Uniform(3, 2, 10, 20, 30)))
}

func TestBGRRoundTrip(t *testing.T) {
	img := New(2, 1)
	img.Set(0, 0, 1, 2, 3)
	img.Set(1, 0, 4, 5, 6)

	bgr := img.BGR()
	assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, bgr)
	assert.True(t, img.Equal(FromBGR(2, 1, bgr)))
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	src.Set(2, 1, color.NRGBA{R: 12, G: 200, B: 7, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	r, g, b := img.At(2, 1)
	assert.Equal(t, [3]uint8{12, 200, 7}, [3]uint8{r, g, b})
}

// hugePNG is a valid 1x1 PNG whose IHDR is rewritten to claim w x h.
func hugePNG(t *testing.T, w, h uint32) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	_, err := Decode(bytes.NewReader(hugePNG(t, 100000, 100000)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Contains(t, err.Error(), "exceeds")
}

func TestDecodeLimit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, checker(10, 10), "png"))

	_, err := DecodeLimit(bytes.NewReader(buf.Bytes()), 99)
	assert.ErrorIs(t, err, ErrDecode)

	img, err := DecodeLimit(bytes.NewReader(buf.Bytes()), 100)
	require.NoError(t, err)
	assert.True(t, img.Equal(checker(10, 10)))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not an image")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDownscale(t *testing.T) {
	img := Uniform(40, 20, 50, 150, 50)

	assert.Same(t, img, Downscale(img, 0))
	assert.Same(t, img, Downscale(img, 64))

	small := Downscale(img, 10)
	assert.Equal(t, 10, small.Width)
	assert.Equal(t, 5, small.Height)
}

func TestStageLoadRelease(t *testing.T) {
	dir := t.TempDir()
	img := checker(5, 4)

	st, err := NewStaging(dir, 0).Stage(img)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(st.Path()))

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.True(t, img.Equal(loaded), "png staging must be lossless")

	require.NoError(t, st.Release())
	_, err = os.Stat(st.Path())
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, st.Release())
}

func TestReleaseRetriesOnce(t *testing.T) {
	st, err := NewStaging(t.TempDir(), 0).Stage(checker(2, 2))
	require.NoError(t, err)

	calls := 0
	removeFile = func(name string) error {
		calls++
		if calls == 1 {
			return errors.New("file in use")
		}
		return os.Remove(name)
	}
	defer func() { removeFile = os.Remove }()

	require.NoError(t, st.Release())
	assert.Equal(t, 2, calls)
}

func TestReleaseGivesUpAfterRetry(t *testing.T) {
	st, err := NewStaging(t.TempDir(), 0).Stage(checker(2, 2))
	require.NoError(t, err)

	calls := 0
	removeFile = func(string) error {
		calls++
		return errors.New("file in use")
	}
	defer func() {
		removeFile = os.Remove
		os.Remove(st.Path())
	}()

	assert.Error(t, st.Release())
	assert.Equal(t, 2, calls)
}
