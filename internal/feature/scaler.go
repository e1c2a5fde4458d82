package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"
)

// Scaler holds per-dimension standardization parameters fit offline.
type Scaler struct {
	Mean Vector
	Std  Vector
}

// scalerFile is the on-disk form of a Scaler.
type scalerFile struct {
	Features []string  `json:"features,omitempty"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

// NewScaler validates and builds a Scaler. A zero or non-finite deviation is
// a configuration error.
func NewScaler(mean, std Vector) (*Scaler, error) {
	if !mean.Finite() || !std.Finite() {
		return nil, errors.New("scaler parameters must be finite")
	}
	for i, s := range std {
		if s == 0 {
			return nil, fmt.Errorf("scaler deviation for %s is zero", Names[i])
		}
	}
	return &Scaler{Mean: mean, Std: std}, nil
}

// Transform standardizes v: (v[i] - Mean[i]) / Std[i].
func (s *Scaler) Transform(v Vector) Vector {
	var out Vector
	for i := range v {
		out[i] = (v[i] - s.Mean[i]) / s.Std[i]
	}
	return out
}

// TransformAll standardizes every vector, returning a new slice.
func (s *Scaler) TransformAll(vs []Vector) []Vector {
	out := make([]Vector, len(vs))
	for i, v := range vs {
		out[i] = s.Transform(v)
	}
	return out
}

// FitScaler computes population mean and standard deviation per dimension.
// Constant dimensions get a deviation of 1 so they pass through centred.
func FitScaler(vs []Vector) (*Scaler, error) {
	if len(vs) == 0 {
		return nil, errors.New("cannot fit scaler on no samples")
	}
	var mean, std Vector
	column := make([]float64, len(vs))
	for d := 0; d < Len; d++ {
		for i, v := range vs {
			column[i] = v[d]
		}
		mean[d], std[d] = stat.PopMeanStdDev(column, nil)
		if std[d] == 0 || math.IsNaN(std[d]) {
			std[d] = 1
		}
	}
	return NewScaler(mean, std)
}

// LoadScaler reads a scaler artifact written by Save.
func LoadScaler(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scaler: %w", err)
	}
	return ParseScaler(data)
}

// ParseScaler decodes the JSON scaler artifact.
func ParseScaler(data []byte) (*Scaler, error) {
	var f scalerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scaler: %w", err)
	}
	if f.Features != nil {
		if len(f.Features) != Len {
			return nil, fmt.Errorf("scaler lists %d features, want %d", len(f.Features), Len)
		}
		for i, name := range f.Features {
			if name != Names[i] {
				return nil, fmt.Errorf("scaler feature %d is %q, want %q", i, name, Names[i])
			}
		}
	}
	mean, err := FromSlice(f.Mean)
	if err != nil {
		return nil, fmt.Errorf("scaler mean: %w", err)
	}
	std, err := FromSlice(f.Scale)
	if err != nil {
		return nil, fmt.Errorf("scaler scale: %w", err)
	}
	return NewScaler(mean, std)
}

// Save writes the scaler as JSON.
func (s *Scaler) Save(path string) error {
	data, err := json.MarshalIndent(scalerFile{
		Features: Names[:],
		Mean:     s.Mean[:],
		Scale:    s.Std[:],
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scaler: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scaler: %w", err)
	}
	return nil
}
