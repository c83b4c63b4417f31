// Package dataset builds labeled feature-vector datasets from a sample store
// and serializes them for training.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ayusman/gesturenote/internal/feature"
)

// Dataset holds parallel feature vectors and labels. Vectors[i] belongs to
// Labels[i]; every vector has feature.Length values.
type Dataset struct {
	Vectors [][]float64 `json:"data"`
	Labels  []string    `json:"labels"`
}

// Len returns the number of (vector, label) pairs.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Add appends a pair after validating the vector.
func (d *Dataset) Add(v feature.Vector, label string) error {
	if err := feature.Validate(v); err != nil {
		return err
	}
	d.Vectors = append(d.Vectors, append([]float64(nil), v...))
	d.Labels = append(d.Labels, label)
	return nil
}

// Classes returns the distinct labels sorted by name.
func (d *Dataset) Classes() []string {
	seen := make(map[string]struct{})
	for _, l := range d.Labels {
		seen[l] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for l := range seen {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	return classes
}

// ClassCounts returns the number of samples per label.
func (d *Dataset) ClassCounts() map[string]int {
	counts := make(map[string]int)
	for _, l := range d.Labels {
		counts[l]++
	}
	return counts
}

// Validate checks that both collections line up and every vector has the
// required cardinality.
func (d *Dataset) Validate() error {
	if len(d.Vectors) != len(d.Labels) {
		return fmt.Errorf("dataset has %d vectors but %d labels", len(d.Vectors), len(d.Labels))
	}
	for i, v := range d.Vectors {
		if err := feature.Validate(v); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return nil
}

// Encode writes the dataset as a single JSON blob.
func (d *Dataset) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(d)
}

// Decode reads a dataset blob written by Encode and validates it.
func Decode(r io.Reader) (*Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &d, nil
}
