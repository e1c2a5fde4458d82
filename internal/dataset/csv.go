package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
)

// LabelColumn is the header of the last CSV column.
const LabelColumn = "label"

// Header returns the expected CSV header.
func Header() []string {
	return append(append([]string{}, feature.Names[:]...), LabelColumn)
}

// LoadCSV reads the reference dataset from path.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a header row followed by one row per sample. Row order
// defines the record index.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = feature.Len + 1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	want := Header()
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if col != want[i] {
			return nil, fmt.Errorf("dataset column %d is %q, want %q", i, col, want[i])
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset: %w", err)
		}

		var v feature.Vector
		for i := 0; i < feature.Len; i++ {
			v[i], err = strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset line %d, %s: %w", line, feature.Names[i], err)
			}
		}
		if !v.Finite() {
			return nil, fmt.Errorf("dataset line %d: non-finite descriptor", line)
		}
		records = append(records, Record{
			Descriptor: v,
			Label:      strings.TrimSpace(row[feature.Len]),
			Index:      len(records),
		})
	}
	return New(records)
}

// WriteCSV writes descriptors and labels with the standard header.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	row := make([]string, feature.Len+1)
	for _, r := range d.Records() {
		for i, x := range r.Descriptor {
			row[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		row[feature.Len] = r.Label
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
