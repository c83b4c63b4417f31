package app

import (
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/gesturenote/internal/gesture"
)

var (
	overlayBox   = color.RGBA{R: 0, G: 0, B: 0, A: 0}
	overlayLabel = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// Overlay draws the bounding box and predicted label of result onto frame.
// Frames without a prediction are left untouched.
func Overlay(frame *gocv.Mat, result gesture.Result) {
	if frame == nil || frame.Empty() || result.Outcome != gesture.OutcomePrediction {
		return
	}

	gocv.Rectangle(frame, result.Box, overlayBox, 4)
	gocv.PutText(frame, result.Label, result.Box.Min, gocv.FontHersheySimplex, 1.3, overlayLabel, 3)
}
