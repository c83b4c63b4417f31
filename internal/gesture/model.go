// Package gesture trains and runs the gesture classifier.
package gesture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	randomforest "github.com/malaschitz/randomForest"

	"github.com/ayusman/gesturenote/internal/feature"
)

// ErrModelLoad is returned when a model artifact is missing or corrupt.
var ErrModelLoad = errors.New("model load failed")

// Model is a fitted random forest over feature vectors. Class i of the forest
// is Labels[i]. A Model is read-only once trained.
type Model struct {
	Labels []string
	forest *randomforest.Forest
}

// Predict returns the label with the highest vote share for v.
func (m *Model) Predict(v feature.Vector) (string, error) {
	if err := feature.Validate(v); err != nil {
		return "", err
	}
	return m.classify(v), nil
}

// Probabilities returns the vote share of every label for v.
func (m *Model) Probabilities(v feature.Vector) (map[string]float64, error) {
	if err := feature.Validate(v); err != nil {
		return nil, err
	}
	votes := m.forest.Vote(v)
	probs := make(map[string]float64, len(m.Labels))
	for i, label := range m.Labels {
		if i < len(votes) {
			probs[label] = votes[i]
		}
	}
	return probs, nil
}

// classify assumes v has already been validated. Ties go to the label that
// sorts first.
func (m *Model) classify(v []float64) string {
	votes := m.forest.Vote(v)
	best := 0
	for i := 1; i < len(votes) && i < len(m.Labels); i++ {
		if votes[i] > votes[best] {
			best = i
		}
	}
	return m.Labels[best]
}

// Trees returns the number of trees in the forest.
func (m *Model) Trees() int {
	return len(m.forest.Trees)
}

type modelBlob struct {
	Labels []string             `json:"labels"`
	Forest *randomforest.Forest `json:"forest"`
}

type modelEnvelope struct {
	Model *modelBlob `json:"model"`
}

// Encode writes the model as a single JSON blob with the classifier under the
// "model" key. Training data held by the forest is not written.
func (m *Model) Encode(w io.Writer) error {
	forest := *m.forest
	forest.Data = randomforest.ForestData{}

	return json.NewEncoder(w).Encode(modelEnvelope{
		Model: &modelBlob{Labels: m.Labels, Forest: &forest},
	})
}

// DecodeModel reads a blob written by Encode. Every failure wraps ErrModelLoad.
func DecodeModel(r io.Reader) (*Model, error) {
	var env modelEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	blob := env.Model
	switch {
	case blob == nil || blob.Forest == nil:
		return nil, fmt.Errorf("%w: no model in artifact", ErrModelLoad)
	case len(blob.Labels) < 2:
		return nil, fmt.Errorf("%w: model has %d labels", ErrModelLoad, len(blob.Labels))
	case len(blob.Forest.Trees) == 0:
		return nil, fmt.Errorf("%w: forest has no trees", ErrModelLoad)
	case blob.Forest.NTrees != len(blob.Forest.Trees):
		return nil, fmt.Errorf("%w: forest declares %d trees, has %d", ErrModelLoad, blob.Forest.NTrees, len(blob.Forest.Trees))
	case blob.Forest.Classes != len(blob.Labels):
		return nil, fmt.Errorf("%w: forest has %d classes for %d labels", ErrModelLoad, blob.Forest.Classes, len(blob.Labels))
	case blob.Forest.Features != feature.Length:
		return nil, fmt.Errorf("%w: forest expects %d features, want %d", ErrModelLoad, blob.Forest.Features, feature.Length)
	}

	for i := range blob.Forest.Trees {
		if err := checkBranch(&blob.Forest.Trees[i].Root, blob.Forest); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrModelLoad, i, err)
		}
	}

	return &Model{Labels: blob.Labels, forest: blob.Forest}, nil
}

// checkBranch verifies that every path through b ends in a leaf carrying one
// vote per class and that every split reads an existing feature.
func checkBranch(b *randomforest.Branch, forest *randomforest.Forest) error {
	if b.IsLeaf {
		if len(b.LeafValue) != forest.Classes {
			return fmt.Errorf("leaf has %d votes for %d classes", len(b.LeafValue), forest.Classes)
		}
		return nil
	}
	if b.Branch0 == nil || b.Branch1 == nil {
		return errors.New("split without both children")
	}
	if b.Attribute < 0 || b.Attribute >= forest.Features {
		return fmt.Errorf("split on feature %d out of range", b.Attribute)
	}
	if err := checkBranch(b.Branch0, forest); err != nil {
		return err
	}
	return checkBranch(b.Branch1, forest)
}

// scrubForest replaces the NaN scores the forest leaves behind. A tree with no
// out-of-bag samples has a NaN validation score. A split that sends every
// sample one way leaves an empty leaf whose gini and votes are 0/0; such a
// leaf casts no vote.
func scrubForest(forest *randomforest.Forest) {
	for i := range forest.Trees {
		if math.IsNaN(forest.Trees[i].Validation) {
			forest.Trees[i].Validation = 0
		}
		scrubBranch(&forest.Trees[i].Root)
	}
}

func scrubBranch(b *randomforest.Branch) {
	if b == nil {
		return
	}
	b.Gini = zeroNaN(b.Gini)
	b.GiniGain = zeroNaN(b.GiniGain)
	for i, v := range b.LeafValue {
		b.LeafValue[i] = zeroNaN(v)
	}
	scrubBranch(b.Branch0)
	scrubBranch(b.Branch1)
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
