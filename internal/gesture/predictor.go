package gesture

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/gesturenote/internal/detector"
	"github.com/ayusman/gesturenote/internal/feature"
)

// Outcome is the per-frame result category.
type Outcome int

const (
	// OutcomeNoHand means the detector found no hand in the frame.
	OutcomeNoHand Outcome = iota
	// OutcomeRejected means the feature vector did not have the required length.
	OutcomeRejected
	// OutcomePrediction means the model produced a label.
	OutcomePrediction
)

// ReasonWrongCardinality is the rejection reason for vectors of the wrong length.
const ReasonWrongCardinality = "wrong_cardinality"

func (o Outcome) String() string {
	switch o {
	case OutcomeNoHand:
		return "no_hand"
	case OutcomeRejected:
		return "rejected"
	case OutcomePrediction:
		return "prediction"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is what the predictor emits for one frame.
type Result struct {
	Outcome  Outcome         `json:"outcome"`
	Label    string          `json:"label,omitempty"`
	Box      image.Rectangle `json:"box"`
	Features int             `json:"features"`
	Reason   string          `json:"reason,omitempty"`
}

// Predictor classifies frames with a loaded model. It keeps no state between
// frames; run one Predictor per stream.
type Predictor struct {
	model     *Model
	extractor *feature.Extractor
}

// NewPredictor creates a Predictor for m using ex for feature extraction.
func NewPredictor(m *Model, ex *feature.Extractor) *Predictor {
	return &Predictor{model: m, extractor: ex}
}

// LoadPredictor decodes a model artifact and builds a Predictor around it.
// Failures wrap ErrModelLoad.
func LoadPredictor(r io.Reader, ex *feature.Extractor) (*Predictor, error) {
	m, err := DecodeModel(r)
	if err != nil {
		return nil, err
	}
	return NewPredictor(m, ex), nil
}

// Model returns the loaded model.
func (p *Predictor) Model() *Model {
	return p.model
}

// Predict classifies a single BGR frame. Detector failures are returned as
// errors; missing hands and wrong cardinality are reported in the Result.
func (p *Predictor) Predict(frame *gocv.Mat) (Result, error) {
	_, hand, err := p.extractor.Extract(frame)
	if errors.Is(err, feature.ErrNoHand) {
		return Result{Outcome: OutcomeNoHand}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return p.Classify(hand, frame.Cols(), frame.Rows()), nil
}

// Classify runs the cardinality check and the model on a known hand for a
// frame of width x height pixels.
func (p *Predictor) Classify(hand *detector.HandLandmarks, width, height int) Result {
	if hand == nil {
		return Result{Outcome: OutcomeNoHand}
	}

	v := feature.FromLandmarks(hand)
	if err := feature.Validate(v); err != nil {
		log.Debug().Int("features", len(v)).Msg("frame rejected")
		return Result{
			Outcome:  OutcomeRejected,
			Features: len(v),
			Reason:   ReasonWrongCardinality,
		}
	}

	return Result{
		Outcome:  OutcomePrediction,
		Label:    p.model.classify(v),
		Box:      hand.Bounds(width, height),
		Features: len(v),
	}
}
