package feature

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/gesturenote/internal/detector"
)

// Extractor converts camera images into feature vectors using a hand detector.
//
// Only the first detected hand is used. Frames with several hands are
// classified by whichever hand the detector reports first.
type Extractor struct {
	detector detector.Detector
}

// NewExtractor creates an Extractor backed by d.
func NewExtractor(d detector.Detector) *Extractor {
	return &Extractor{detector: d}
}

// Extract runs detection on a BGR frame and returns the feature vector of the
// first hand together with that hand. It returns ErrNoHand when no hand is
// found. The vector is not validated; see Validate.
func (e *Extractor) Extract(frame *gocv.Mat) (Vector, *detector.HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil, fmt.Errorf("extract: empty frame")
	}

	rgb := gocv.NewMat()
	defer rgb.Close()

	switch frame.Channels() {
	case 1:
		gocv.CvtColor(*frame, &rgb, gocv.ColorGrayToRGB)
	case 4:
		gocv.CvtColor(*frame, &rgb, gocv.ColorBGRAToRGB)
	default:
		gocv.CvtColor(*frame, &rgb, gocv.ColorBGRToRGB)
	}

	hands, err := e.detector.Detect(&rgb)
	if err != nil {
		return nil, nil, fmt.Errorf("detect hands: %w", err)
	}
	if len(hands) == 0 {
		return nil, nil, ErrNoHand
	}

	hand := hands[0]
	return FromLandmarks(&hand), &hand, nil
}
