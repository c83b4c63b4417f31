package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/gesturenote/internal/capture"
)

// ErrAlreadyRunning is returned by Run when the loop is already active.
var ErrAlreadyRunning = errors.New("inference loop already running")

// Run opens the camera and classifies frames until ctx is cancelled or a
// finite source is exhausted. Camera read failures and detector failures are
// logged and the loop moves on to the next frame.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	camera := a.config.Camera
	if !camera.IsOpen() {
		if err := camera.Open(); err != nil {
			return err
		}
		defer func() {
			if err := camera.Close(); err != nil {
				log.Error().Err(err).Msg("error closing camera")
			}
		}()
	}

	log.Info().Dur("interval", a.config.FrameInterval).Msg("inference loop started")
	defer log.Info().Msg("inference loop stopped")

	var tick <-chan time.Time
	if a.config.FrameInterval > 0 {
		ticker := time.NewTicker(a.config.FrameInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		done, err := a.step()
		if done {
			return err
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}

// step processes one frame. done reports that the loop must stop.
func (a *App) step() (done bool, err error) {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrEndOfStream):
			log.Info().Msg("end of stream")
			return true, nil
		case errors.Is(err, capture.ErrCameraNotOpen):
			return true, err
		}
		log.Warn().Err(err).Msg("error reading frame")
		a.failed()
		return false, nil
	}
	defer frame.Close()

	result, err := a.config.Predictor.Predict(frame)
	if err != nil {
		log.Warn().Err(err).Msg("error classifying frame")
		a.failed()
		return false, nil
	}

	if a.config.Metrics != nil {
		a.config.Metrics.Observe(result)
	}
	log.Debug().
		Str("outcome", result.Outcome.String()).
		Str("label", result.Label).
		Msg("frame classified")

	a.publish(frame, result)
	return false, nil
}

func (a *App) failed() {
	if a.config.Metrics != nil {
		a.config.Metrics.Failed()
	}
}
