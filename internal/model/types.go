package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
)

// DefaultSentinel is the raw class name the model emits for images that are
// not durian leaves.
const DefaultSentinel = "noclass"

// DefaultUnrecognizedMessage is what users see for the sentinel class.
const DefaultUnrecognizedMessage = "Bukan Daun Durian, Input gambar yang sesuai"

// Metadata describes the exported classifier graph.
type Metadata struct {
	Classes    []string `json:"classes"`
	Sentinel   string   `json:"sentinel"`
	InputName  string   `json:"input_name"`
	OutputName string   `json:"output_name"`
	Features   []string `json:"features,omitempty"`
}

// LoadMetadata reads and validates the metadata file.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	return ParseMetadata(data)
}

// ParseMetadata decodes metadata and fills defaults for a scikit-learn
// export (input "float_input", probability output "probabilities").
func ParseMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if m.Sentinel == "" {
		m.Sentinel = DefaultSentinel
	}
	if m.InputName == "" {
		m.InputName = "float_input"
	}
	if m.OutputName == "" {
		m.OutputName = "probabilities"
	}
	if m.Features != nil {
		if len(m.Features) != feature.Len {
			return m, fmt.Errorf("model expects %d features, descriptor has %d", len(m.Features), feature.Len)
		}
		for i, name := range m.Features {
			if name != feature.Names[i] {
				return m, fmt.Errorf("model feature %d is %q, want %q", i, name, feature.Names[i])
			}
		}
	}
	if _, err := NewLabelSet(m.Classes, m.Sentinel); err != nil {
		return m, err
	}
	return m, nil
}

// Label is a classifier decision: either one of the model's known classes
// or Unrecognized. Known labels can only be obtained from a LabelSet, so a
// real class can never be confused with the sentinel.
type Label struct {
	name         string
	unrecognized bool
}

// Unrecognized means the input is not an instance of any known class.
var Unrecognized = Label{unrecognized: true}

// IsUnrecognized reports whether l is the sentinel variant.
func (l Label) IsUnrecognized() bool {
	return l.unrecognized
}

// Name returns the class name of a known label, or "" for Unrecognized.
func (l Label) Name() string {
	return l.name
}

func (l Label) String() string {
	if l.unrecognized {
		return "unrecognized"
	}
	return l.name
}

// Describe returns the text shown to users.
func Describe(l Label, unrecognizedMessage string) string {
	if l.IsUnrecognized() {
		if unrecognizedMessage == "" {
			return DefaultUnrecognizedMessage
		}
		return unrecognizedMessage
	}
	return l.name
}

// LabelSet maps raw model outputs to Labels.
type LabelSet struct {
	classes  []string
	sentinel string
	known    map[string]bool
}

// NewLabelSet validates classes (non-empty, unique) and the sentinel name.
func NewLabelSet(classes []string, sentinel string) (*LabelSet, error) {
	if len(classes) == 0 {
		return nil, errors.New("model metadata lists no classes")
	}
	if sentinel == "" {
		return nil, errors.New("sentinel class name is empty")
	}
	known := make(map[string]bool, len(classes))
	for _, c := range classes {
		if c == "" {
			return nil, errors.New("model metadata has an empty class name")
		}
		if known[c] {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		known[c] = c != sentinel
	}
	out := make([]string, len(classes))
	copy(out, classes)
	return &LabelSet{classes: out, sentinel: sentinel, known: known}, nil
}

// Parse maps a raw class name. Names outside the set are an error.
func (s *LabelSet) Parse(raw string) (Label, error) {
	if raw == s.sentinel {
		return Unrecognized, nil
	}
	if !s.known[raw] {
		return Label{}, fmt.Errorf("model produced unknown class %q", raw)
	}
	return Label{name: raw}, nil
}

// At maps the class at output position i.
func (s *LabelSet) At(i int) (Label, error) {
	if i < 0 || i >= len(s.classes) {
		return Label{}, fmt.Errorf("class index %d out of range", i)
	}
	return s.Parse(s.classes[i])
}

// Len returns the number of model output classes, sentinel included.
func (s *LabelSet) Len() int {
	return len(s.classes)
}

// Known returns the non-sentinel class names in model order.
func (s *LabelSet) Known() []string {
	var out []string
	for _, c := range s.classes {
		if c != s.sentinel {
			out = append(out, c)
		}
	}
	return out
}

// Prediction is the full classifier output for one descriptor.
type Prediction struct {
	Label       Label
	Confidence  float32
	Predictions map[string]float32
}

// Predictor maps a scaled descriptor to a label.
type Predictor interface {
	Predict(v feature.Vector) (Label, error)
}
