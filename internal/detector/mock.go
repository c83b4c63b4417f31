package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// DetectFunc computes the detection result for a single frame.
type DetectFunc func(frame *gocv.Mat) ([]HandLandmarks, error)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	err    error
	fn     DetectFunc
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDetectFunc makes Detect derive its result from the frame contents.
// It takes precedence over SetHands.
func (m *MockDetector) SetDetectFunc(fn DetectFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.fn != nil {
		return m.fn(frame)
	}
	return m.hands, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// UniformLandmarks returns a hand with n points all placed at (v, v, 0).
func UniformLandmarks(n int, v float64) HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, n),
		Handedness: "Right",
		Score:      1.0,
	}
	for i := range h.Points {
		h.Points[i] = Point3D{X: v, Y: v}
	}
	return h
}

// Shifted returns a copy of h translated by (dx, dy).
func Shifted(h HandLandmarks, dx, dy float64) HandLandmarks {
	out := HandLandmarks{
		Points:     make([]Point3D, len(h.Points)),
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		out.Points[i] = Point3D{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
	}
	return out
}

// Preset poses as (x, y) positions in landmark index order: wrist, thumb
// CMC..tip, then MCP, PIP, DIP and tip of the index, middle, ring and pinky
// fingers.
var (
	thumbsUpPose = [NumLandmarks][2]float64{
		{0.50, 0.80},
		{0.55, 0.75}, {0.58, 0.65}, {0.58, 0.50}, {0.58, 0.35},
		{0.55, 0.70}, {0.55, 0.68}, {0.52, 0.70}, {0.50, 0.72},
		{0.50, 0.68}, {0.50, 0.66}, {0.47, 0.68}, {0.45, 0.70},
		{0.45, 0.70}, {0.45, 0.68}, {0.42, 0.70}, {0.40, 0.72},
		{0.40, 0.72}, {0.40, 0.70}, {0.37, 0.72}, {0.35, 0.74},
	}
	openPalmPose = [NumLandmarks][2]float64{
		{0.50, 0.80},
		{0.55, 0.75}, {0.62, 0.70}, {0.68, 0.65}, {0.73, 0.60},
		{0.55, 0.68}, {0.57, 0.55}, {0.58, 0.45}, {0.58, 0.35},
		{0.50, 0.66}, {0.50, 0.52}, {0.50, 0.40}, {0.50, 0.28},
		{0.45, 0.68}, {0.43, 0.55}, {0.42, 0.45}, {0.42, 0.35},
		{0.40, 0.70}, {0.37, 0.60}, {0.35, 0.50}, {0.34, 0.42},
	}
)

func pose(xy [NumLandmarks][2]float64) HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}
	for i, p := range xy {
		h.Points[i] = Point3D{X: p[0], Y: p[1]}
	}
	return h
}

// ThumbsUpLandmarks returns a complete right hand with the thumb raised and
// the other fingers curled.
func ThumbsUpLandmarks() HandLandmarks {
	return pose(thumbsUpPose)
}

// OpenPalmLandmarks returns a complete right hand with all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return pose(openPalmPose)
}
