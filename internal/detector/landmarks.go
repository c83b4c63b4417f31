// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

import (
	"image"

	"gonum.org/v1/gonum/floats"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized to [0,1] relative to
// the image width and height; Z is the detector's relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand. A complete hand has NumLandmarks points,
// but detectors may report fewer when part of the hand is filtered out, so
// callers must check Len before relying on the topology.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Len returns the number of landmark points.
func (h *HandLandmarks) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Points)
}

// Complete reports whether the hand carries exactly NumLandmarks points.
func (h *HandLandmarks) Complete() bool {
	return h.Len() == NumLandmarks
}

// Bounds returns the pixel-space bounding box of the landmarks for a frame of
// the given size: (min x·width, min y·height)-(max x·width, max y·height),
// truncated toward zero. An empty hand yields the zero rectangle.
func (h *HandLandmarks) Bounds(width, height int) image.Rectangle {
	if h.Len() == 0 {
		return image.Rectangle{}
	}

	xs := make([]float64, len(h.Points))
	ys := make([]float64, len(h.Points))
	for i, p := range h.Points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	w := float64(width)
	hgt := float64(height)

	return image.Rectangle{
		Min: image.Point{X: int(floats.Min(xs) * w), Y: int(floats.Min(ys) * hgt)},
		Max: image.Point{X: int(floats.Max(xs) * w), Y: int(floats.Max(ys) * hgt)},
	}
}
