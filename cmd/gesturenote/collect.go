package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"io"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/gesturenote/internal/capture"
	"github.com/ayusman/gesturenote/internal/config"
)

const windowName = "frame"

var promptColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// runCollect records SAMPLES_PER_CLASS frames for every configured class.
func runCollect(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	fs.SetOutput(stdout)
	cameraID := fs.Int("camera", cfg.CameraID, "camera device id")
	perClass := fs.Int("samples", cfg.SamplesPerClass, "samples per class")
	dataDir := fs.String("data", cfg.DataDir, "sample root directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	camera := capture.NewCamera(*cameraID)
	collector := capture.NewCollector(camera, capture.NewSampleStore(*dataDir))

	if cfg.ShowWindow {
		window := gocv.NewWindow(windowName)
		defer window.Close()

		collector.Ready = func(ctx context.Context, class string) error {
			return waitReady(ctx, camera, window)
		}
		collector.Preview = func(frame *gocv.Mat) {
			window.IMShow(*frame)
			window.WaitKey(1)
		}
	}

	if err := collector.Collect(ctx, cfg.Classes, *perClass); err != nil {
		return err
	}
	log.Info().Str("data", *dataDir).Int("classes", len(cfg.Classes)).Msg("collection finished")
	return nil
}

// waitReady shows the live feed with a prompt until the operator presses R.
func waitReady(ctx context.Context, camera capture.Camera, window *gocv.Window) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := camera.ReadFrame()
		if err != nil {
			log.Warn().Err(err).Msg("failed to capture image")
		} else {
			gocv.PutText(frame, `Ready? Press "R"! `, image.Pt(100, 50),
				gocv.FontHersheySimplex, 1.3, promptColor, 3)
			window.IMShow(*frame)
			frame.Close()
		}

		if window.WaitKey(25) == 'r' {
			return nil
		}
	}
}
