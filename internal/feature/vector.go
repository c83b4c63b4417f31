// Package feature turns detected hand landmarks into fixed-length feature
// vectors for the gesture classifier.
package feature

import (
	"errors"
	"fmt"

	"github.com/ayusman/gesturenote/internal/detector"
)

// Length is the only valid feature vector length: x and y for every landmark.
const Length = 2 * detector.NumLandmarks

var (
	// ErrNoHand is returned when the detector finds no hand in the image.
	ErrNoHand = errors.New("no hand detected")

	// ErrWrongCardinality matches any CardinalityError.
	ErrWrongCardinality = errors.New("wrong feature cardinality")
)

// Vector is a flat feature vector: (v[2i], v[2i+1]) = (x_i, y_i).
type Vector []float64

// CardinalityError reports a vector whose length is not Length.
type CardinalityError struct {
	Got int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("feature vector has %d values, expected %d", e.Got, Length)
}

// Is makes errors.Is(err, ErrWrongCardinality) hold.
func (e *CardinalityError) Is(target error) bool {
	return target == ErrWrongCardinality
}

// FromLandmarks appends (x, y) of every point in detector order. No centering,
// scaling, or rotation is applied.
func FromLandmarks(h *detector.HandLandmarks) Vector {
	if h == nil {
		return nil
	}
	v := make(Vector, 0, 2*len(h.Points))
	for _, p := range h.Points {
		v = append(v, p.X, p.Y)
	}
	return v
}

// Validate rejects vectors whose length is not exactly Length. Vectors are
// never padded or truncated.
func Validate(v Vector) error {
	if len(v) != Length {
		return &CardinalityError{Got: len(v)}
	}
	return nil
}
