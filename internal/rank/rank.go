// Package rank orders reference records by Euclidean distance to a query
// descriptor.
package rank

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/aliffadillah/durian-leaf-classification/internal/dataset"
	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
)

// DefaultTopK is the size of the short list shown to users.
const DefaultTopK = 5

// ErrEmptyDataset is returned when there is nothing to rank against.
var ErrEmptyDataset = errors.New("reference dataset is empty")

// Match is the distance from the query to one reference record.
type Match struct {
	Label    string  `json:"label"`
	Distance float64 `json:"distance"`
	Index    int     `json:"index"`
}

// Ranking is the full, sorted list of matches for one query.
type Ranking struct {
	matches []Match
}

// Distance is the Euclidean distance between two descriptors.
func Distance(a, b feature.Vector) float64 {
	return floats.Distance(a[:], b[:], 2)
}

// Rank computes one match per record and sorts ascending by distance,
// breaking ties by the smaller record index. Query and records must already
// be in the same (scaled) space.
func Rank(query feature.Vector, records []dataset.Record) (*Ranking, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	matches := make([]Match, len(records))
	for i, r := range records {
		matches[i] = Match{
			Label:    r.Label,
			Distance: Distance(query, r.Descriptor),
			Index:    r.Index,
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Index < matches[j].Index
	})
	return &Ranking{matches: matches}, nil
}

// Len returns the number of matches, one per reference record.
func (r *Ranking) Len() int {
	return len(r.matches)
}

// All returns every match in rank order.
func (r *Ranking) All() []Match {
	out := make([]Match, len(r.matches))
	copy(out, r.matches)
	return out
}

// TopK returns the k closest matches, or all of them when fewer exist.
func (r *Ranking) TopK(k int) []Match {
	if k < 0 {
		k = 0
	}
	if k > len(r.matches) {
		k = len(r.matches)
	}
	out := make([]Match, k)
	copy(out, r.matches[:k])
	return out
}

// Closest returns the best match.
func (r *Ranking) Closest() (Match, bool) {
	if len(r.matches) == 0 {
		return Match{}, false
	}
	return r.matches[0], true
}
