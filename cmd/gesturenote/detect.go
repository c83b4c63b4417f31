package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/gesturenote/internal/app"
	"github.com/ayusman/gesturenote/internal/capture"
	"github.com/ayusman/gesturenote/internal/config"
	"github.com/ayusman/gesturenote/internal/feature"
	"github.com/ayusman/gesturenote/internal/gesture"
	"github.com/ayusman/gesturenote/internal/metrics"
	"github.com/ayusman/gesturenote/internal/server"
	"github.com/ayusman/gesturenote/internal/store"
)

// runDetect classifies the live camera feed and prints one label per
// recognized frame.
func runDetect(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(stdout)
	modelID := fs.String("model", "", "model id (default: latest)")
	in := fs.String("in", "", "read the model blob from this file instead of the store")
	cameraID := fs.Int("camera", cfg.CameraID, "camera device id")
	video := fs.String("video", "", "classify a video file instead of a camera")
	addr := fs.String("addr", cfg.ListenAddr, "HTTP listen address, empty to disable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Detecting Gestures")

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	blob, rec, err := loadModelBlob(st, *modelID, *in)
	if err != nil {
		return err
	}

	d, err := newDetector(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	predictor, err := gesture.LoadPredictor(bytes.NewReader(blob), feature.NewExtractor(d))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if rec != nil {
		m.SetAccuracy(rec.Accuracy)
	}

	camera := capture.NewCamera(*cameraID)
	if *video != "" {
		camera = capture.NewVideoFile(*video)
	}

	a, err := app.New(app.Config{
		Camera:        camera,
		Predictor:     predictor,
		FrameInterval: cfg.FrameInterval,
		Metrics:       m,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.OnResult(func(_ *gocv.Mat, r gesture.Result) {
		switch r.Outcome {
		case gesture.OutcomePrediction:
			fmt.Fprintln(stdout, r.Label)
		case gesture.OutcomeRejected:
			fmt.Fprintf(stdout, "%d features\n", r.Features)
		}
	})

	if cfg.ShowWindow {
		window := gocv.NewWindow(windowName)
		defer window.Close()
		a.OnResult(func(frame *gocv.Mat, r gesture.Result) {
			app.Overlay(frame, r)
			window.IMShow(*frame)
			if window.WaitKey(1) == 'q' {
				cancel()
			}
		})
	}

	serverErr := make(chan error, 1)
	if *addr != "" {
		hub := server.NewPredictionsHandler()
		a.OnResult(func(_ *gocv.Mat, r gesture.Result) { hub.Publish(r) })

		srv := server.New(server.Config{Store: st, Predictions: hub, Gatherer: reg})
		go func() {
			serverErr <- srv.ListenAndServe(ctx, *addr)
		}()
	} else {
		serverErr <- nil
	}

	runErr := a.Run(ctx)
	cancel()
	if err := <-serverErr; err != nil {
		log.Error().Err(err).Msg("http server failed")
	}
	return runErr
}

// loadModelBlob returns the model blob from file, by id, or the latest stored
// model. A missing model is reported as gesture.ErrModelLoad.
func loadModelBlob(st *store.Store, id, file string) ([]byte, *store.Model, error) {
	if file != "" {
		blob, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", gesture.ErrModelLoad, err)
		}
		return blob, nil, nil
	}

	var (
		rec *store.Model
		err error
	)
	if id == "" {
		rec, err = st.Models().Latest()
	} else {
		rec, err = st.Models().GetByID(id)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: no trained model, run 'gesturenote train' first", gesture.ErrModelLoad)
	}
	if err != nil {
		return nil, nil, err
	}

	log.Info().Str("id", rec.ID).Float64("accuracy", rec.Accuracy).Msg("model loaded")
	return rec.Data, rec, nil
}
