// Package app runs the live gesture inference loop: camera frames go through
// the predictor and every result is handed to the registered listeners.
package app

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gesturenote/internal/capture"
	"github.com/ayusman/gesturenote/internal/gesture"
	"github.com/ayusman/gesturenote/internal/metrics"
)

// DefaultFrameInterval is the pause between frames of the live loop.
const DefaultFrameInterval = 800 * time.Millisecond

// Listener receives every frame result. The frame is only valid for the
// duration of the call.
type Listener func(frame *gocv.Mat, result gesture.Result)

// Config holds the collaborators of the inference loop.
type Config struct {
	Camera    capture.Camera
	Predictor *gesture.Predictor
	// FrameInterval throttles the loop. Zero reads frames back to back.
	FrameInterval time.Duration
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// App is the live inference loop.
type App struct {
	config    Config
	mu        sync.RWMutex
	listeners []Listener
	running   bool
}

// New creates an App with the given configuration.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("camera is required")
	}
	if config.Predictor == nil {
		return nil, errors.New("predictor is required")
	}
	if config.FrameInterval < 0 {
		config.FrameInterval = DefaultFrameInterval
	}
	return &App{config: config}, nil
}

// OnResult registers a listener. Listeners run synchronously inside the loop
// in registration order.
func (a *App) OnResult(fn Listener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// IsRunning returns whether Run is currently active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

func (a *App) publish(frame *gocv.Mat, result gesture.Result) {
	a.mu.RLock()
	listeners := a.listeners
	a.mu.RUnlock()

	for _, fn := range listeners {
		fn(frame, result)
	}
}
