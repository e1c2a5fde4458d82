// Package feature defines the 4-dimensional texture descriptor and the
// z-score scaling applied to it before classification and ranking.
package feature

import (
	"fmt"
	"math"
)

// Len is the number of descriptor dimensions.
const Len = 4

const (
	Contrast = iota
	Correlation
	Energy
	Homogeneity
)

// Names lists the descriptor columns in their fixed order. Extraction,
// scaling, the reference CSV and the classifier all use this order.
var Names = [Len]string{"contrast", "correlation", "energy", "homogeneity"}

// Vector is a descriptor in (contrast, correlation, energy, homogeneity) order.
type Vector [Len]float64

// FromSlice copies a slice of exactly Len values.
func FromSlice(values []float64) (Vector, error) {
	var v Vector
	if len(values) != Len {
		return v, fmt.Errorf("descriptor needs %d values, got %d", Len, len(values))
	}
	copy(v[:], values)
	return v, nil
}

// Finite reports whether no component is NaN or infinite.
func (v Vector) Finite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Map returns the descriptor keyed by column name.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, Len)
	for i, name := range Names {
		m[name] = v[i]
	}
	return m
}

// Float32 converts the vector for model input tensors.
func (v Vector) Float32() []float32 {
	out := make([]float32, Len)
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
