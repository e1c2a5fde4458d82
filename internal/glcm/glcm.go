// Package glcm computes gray-level co-occurrence texture statistics.
//
// The co-occurrence matrix uses offset 1 at angle 0 (each pixel paired with
// its right neighbour), 256 gray levels, is made symmetric and normalized to
// a joint distribution. Four statistics are derived from it and returned as
// a feature.Vector in the fixed descriptor order.
package glcm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
)

// Levels is the number of gray levels.
const Levels = 256

// ErrDegenerate is returned when the texture statistics are undefined,
// typically because segmentation left nothing but black pixels.
var ErrDegenerate = errors.New("degenerate texture")

// minStd mirrors the cutoff below which a marginal is treated as constant.
const minStd = 1e-15

// Gray converts to 8-bit luminance with OpenCV's fixed-point weights
// (0.299 R + 0.587 G + 0.114 B, rounded).
func Gray(img *leafimage.Image) []uint8 {
	const (
		shift = 14
		rw    = 4899 // 0.299 * 2^14
		gw    = 9617 // 0.587 * 2^14
		bw    = 1868 // 0.114 * 2^14
	)
	out := make([]uint8, img.Width*img.Height)
	for i := range out {
		r, g, b := int(img.Pix[3*i]), int(img.Pix[3*i+1]), int(img.Pix[3*i+2])
		out[i] = uint8((r*rw + g*gw + b*bw + (1 << (shift - 1))) >> shift)
	}
	return out
}

// CoOccurrence builds the symmetric, normalized matrix for horizontal
// neighbours. It fails when the image has no horizontal pixel pairs.
func CoOccurrence(gray []uint8, width, height int) (*mat.SymDense, error) {
	if width < 2 || height < 1 || len(gray) < width*height {
		return nil, fmt.Errorf("%w: %dx%d image has no horizontal pixel pairs", ErrDegenerate, width, height)
	}

	var counts [Levels * Levels]uint64
	for y := 0; y < height; y++ {
		row := gray[y*width : (y+1)*width]
		for x := 0; x+1 < width; x++ {
			counts[int(row[x])*Levels+int(row[x+1])]++
		}
	}

	// each oriented pair counts once in both directions
	total := float64(2 * (width - 1) * height)
	p := mat.NewSymDense(Levels, nil)
	for i := 0; i < Levels; i++ {
		for j := i; j < Levels; j++ {
			c := counts[i*Levels+j] + counts[j*Levels+i]
			if c != 0 {
				p.SetSym(i, j, float64(c)/total)
			}
		}
	}
	return p, nil
}

// Props are the statistics derived from a co-occurrence distribution.
type Props struct {
	Contrast    float64
	Correlation float64
	Energy      float64
	ASM         float64 // angular second moment, Energy squared
	Homogeneity float64
}

// Vector returns the descriptor in the fixed feature order.
func (p Props) Vector() feature.Vector {
	return feature.Vector{p.Contrast, p.Correlation, p.Energy, p.Homogeneity}
}

// Compute derives the texture statistics from a normalized matrix.
// Correlation is undefined when either marginal has zero variance; that
// case is reported as ErrDegenerate.
func Compute(p mat.Symmetric) (Props, error) {
	n := p.SymmetricDim()

	var props Props
	var muI, muJ float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := p.At(i, j)
			if v == 0 {
				continue
			}
			d := float64(i - j)
			props.Contrast += v * d * d
			props.Homogeneity += v / (1 + d*d)
			props.ASM += v * v
			muI += float64(i) * v
			muJ += float64(j) * v
		}
	}
	props.Energy = math.Sqrt(props.ASM)

	var varI, varJ, cov float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := p.At(i, j)
			if v == 0 {
				continue
			}
			di, dj := float64(i)-muI, float64(j)-muJ
			varI += v * di * di
			varJ += v * dj * dj
			cov += v * di * dj
		}
	}
	stdI, stdJ := math.Sqrt(varI), math.Sqrt(varJ)
	if stdI < minStd || stdJ < minStd {
		return props, fmt.Errorf("%w: gray levels have zero variance, correlation undefined", ErrDegenerate)
	}
	props.Correlation = cov / (stdI * stdJ)

	if !props.Vector().Finite() {
		return props, fmt.Errorf("%w: non-finite statistic", ErrDegenerate)
	}
	return props, nil
}

// Extract computes the texture descriptor of a (segmented) image.
func Extract(img *leafimage.Image) (feature.Vector, error) {
	if img.Empty() {
		return feature.Vector{}, fmt.Errorf("%w: empty image", ErrDegenerate)
	}
	p, err := CoOccurrence(Gray(img), img.Width, img.Height)
	if err != nil {
		return feature.Vector{}, err
	}
	props, err := Compute(p)
	if err != nil {
		return feature.Vector{}, err
	}
	return props.Vector(), nil
}

// Extractor adapts Extract to the pipeline's extractor interface.
type Extractor struct{}

func (Extractor) Extract(img *leafimage.Image) (feature.Vector, error) {
	return Extract(img)
}
