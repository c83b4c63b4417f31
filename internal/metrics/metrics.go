// Package metrics exposes Prometheus collectors for the inference loop and
// the trainer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ayusman/gesturenote/internal/gesture"
)

const namespace = "gesturenote"

// Metrics holds the collectors. Create one per process and register it with a
// registry of the caller's choosing.
type Metrics struct {
	Frames        *prometheus.CounterVec
	Predictions   *prometheus.CounterVec
	FrameErrors   prometheus.Counter
	TrainAccuracy prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Frames processed by the inference loop, by outcome.",
			}, []string{"outcome"}),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Predicted gesture labels.",
			}, []string{"label"}),
		FrameErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frame_errors_total",
				Help:      "Frames dropped because of camera or detector failures.",
			}),
		TrainAccuracy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "train_accuracy",
				Help:      "Held-out accuracy of the most recently trained or loaded model.",
			}),
	}
	reg.MustRegister(m.Frames, m.Predictions, m.FrameErrors, m.TrainAccuracy)
	return m
}

// Observe records one frame result.
func (m *Metrics) Observe(r gesture.Result) {
	m.Frames.WithLabelValues(r.Outcome.String()).Inc()
	if r.Outcome == gesture.OutcomePrediction {
		m.Predictions.WithLabelValues(r.Label).Inc()
	}
}

// Failed records a frame that produced no result.
func (m *Metrics) Failed() {
	m.FrameErrors.Inc()
}

// SetAccuracy records a model's held-out accuracy.
func (m *Metrics) SetAccuracy(accuracy float64) {
	m.TrainAccuracy.Set(accuracy)
}
