// Package dataset holds the reference corpus of labelled texture
// descriptors that queries are ranked against.
package dataset

import (
	"fmt"
	"sort"

	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
)

// Record is one reference sample. Index is its position in load order and
// is reported back to callers unchanged.
type Record struct {
	Descriptor feature.Vector
	Label      string
	Index      int
}

// Dataset is an ordered, read-only collection of records.
type Dataset struct {
	records []Record
}

// New builds a dataset, checking indices are 0..n-1 in order.
func New(records []Record) (*Dataset, error) {
	for i, r := range records {
		if r.Index != i {
			return nil, fmt.Errorf("record %d has index %d", i, r.Index)
		}
		if r.Label == "" {
			return nil, fmt.Errorf("record %d has an empty label", i)
		}
	}
	out := make([]Record, len(records))
	copy(out, records)
	return &Dataset{records: out}, nil
}

// FromSamples numbers descriptors and labels in the given order.
func FromSamples(descriptors []feature.Vector, labels []string) (*Dataset, error) {
	if len(descriptors) != len(labels) {
		return nil, fmt.Errorf("%d descriptors but %d labels", len(descriptors), len(labels))
	}
	records := make([]Record, len(descriptors))
	for i := range descriptors {
		records[i] = Record{Descriptor: descriptors[i], Label: labels[i], Index: i}
	}
	return New(records)
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records exposes the records in index order. The slice is shared and must
// not be modified.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

// Descriptors returns a copy of every descriptor in index order.
func (d *Dataset) Descriptors() []feature.Vector {
	out := make([]feature.Vector, d.Len())
	for i, r := range d.Records() {
		out[i] = r.Descriptor
	}
	return out
}

// Scaled returns a new dataset whose descriptors went through s. Labels and
// indices are unchanged.
func (d *Dataset) Scaled(s *feature.Scaler) *Dataset {
	out := make([]Record, d.Len())
	for i, r := range d.Records() {
		out[i] = Record{Descriptor: s.Transform(r.Descriptor), Label: r.Label, Index: r.Index}
	}
	return &Dataset{records: out}
}

// LabelCounts returns how many records carry each label.
func (d *Dataset) LabelCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Records() {
		counts[r.Label]++
	}
	return counts
}

// Labels returns the distinct labels, sorted.
func (d *Dataset) Labels() []string {
	counts := d.LabelCounts()
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
