package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes an RGB frame and returns detected hand landmarks in
	// detector order. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// StaticImageMode disables cross-frame tracking inside the detector so
	// every frame is detected independently.
	StaticImageMode bool

	// ScriptPath overrides the location of the MediaPipe service script.
	ScriptPath string

	// PythonPath overrides the interpreter used to run the service script.
	PythonPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.3,
		StaticImageMode: true,
	}
}
