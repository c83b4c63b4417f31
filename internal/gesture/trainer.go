package gesture

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/gesturenote/internal/dataset"
)

// ErrIllDefinedDataset is returned when a dataset cannot be split or fitted:
// it is empty, has fewer than two classes, or a class too small to split.
var ErrIllDefinedDataset = errors.New("ill-defined dataset")

// TrainConfig controls the split and the forest.
type TrainConfig struct {
	// TestFraction is the share of every class held out for evaluation.
	TestFraction float64
	// Trees is the number of bagged trees in the forest.
	Trees int
	// Seed fixes the train/test split. Zero picks a time-based seed.
	Seed int64
}

// DefaultTrainConfig returns the production defaults.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		TestFraction: 0.2,
		Trees:        100,
	}
}

// Evaluation describes how a freshly trained model scored on the held-out
// partition.
type Evaluation struct {
	Accuracy  float64            `json:"accuracy"`
	TrainSize int                `json:"train_size"`
	TestSize  int                `json:"test_size"`
	PerClass  map[string]float64 `json:"per_class"`
	Seed      int64              `json:"seed"`
}

// Trainer fits gesture models from datasets.
type Trainer struct {
	config TrainConfig
}

// NewTrainer creates a new Trainer. Zero fields fall back to the defaults.
func NewTrainer(config TrainConfig) *Trainer {
	def := DefaultTrainConfig()
	if config.TestFraction == 0 {
		config.TestFraction = def.TestFraction
	}
	if config.Trees <= 0 {
		config.Trees = def.Trees
	}
	return &Trainer{config: config}
}

// Train splits ds, fits a forest on the train partition and scores it on the
// test partition. ds is not modified.
//
// The seed only fixes the split; the forest draws its bootstrap samples from
// the process-wide random source.
func (t *Trainer) Train(ds *dataset.Dataset) (*Model, Evaluation, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, Evaluation{}, fmt.Errorf("%w: no samples", ErrIllDefinedDataset)
	}
	if err := ds.Validate(); err != nil {
		return nil, Evaluation{}, fmt.Errorf("%w: %v", ErrIllDefinedDataset, err)
	}

	labels := ds.Classes()
	if len(labels) < 2 {
		return nil, Evaluation{}, fmt.Errorf("%w: need at least 2 classes, got %d", ErrIllDefinedDataset, len(labels))
	}

	seed := t.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	trainIdx, testIdx, err := StratifiedSplit(ds.Labels, t.config.TestFraction, rng)
	if err != nil {
		return nil, Evaluation{}, err
	}

	classOf := make(map[string]int, len(labels))
	for i, l := range labels {
		classOf[l] = i
	}

	x := make([][]float64, len(trainIdx))
	y := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		x[i] = append([]float64(nil), ds.Vectors[idx]...)
		y[i] = classOf[ds.Labels[idx]]
	}

	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: x, Class: y}
	forest.Train(t.config.Trees)
	forest.Data = randomforest.ForestData{}
	scrubForest(forest)

	model := &Model{Labels: labels, forest: forest}
	eval := evaluate(model, ds, testIdx)
	eval.TrainSize = len(trainIdx)
	eval.Seed = seed

	log.Info().
		Int("train", eval.TrainSize).
		Int("test", eval.TestSize).
		Int("trees", t.config.Trees).
		Float64("accuracy", eval.Accuracy).
		Msg("model trained")

	return model, eval, nil
}

// evaluate computes exact-match accuracy over the given samples, overall and
// per label.
func evaluate(m *Model, ds *dataset.Dataset, idx []int) Evaluation {
	hits := make([]float64, len(idx))
	perHits := make(map[string][]float64)
	for i, j := range idx {
		label := ds.Labels[j]
		if m.classify(ds.Vectors[j]) == label {
			hits[i] = 1
		}
		perHits[label] = append(perHits[label], hits[i])
	}

	eval := Evaluation{
		TestSize: len(idx),
		PerClass: make(map[string]float64, len(perHits)),
	}
	if len(idx) > 0 {
		eval.Accuracy = floats.Sum(hits) / float64(len(idx))
	}

	for l, h := range perHits {
		eval.PerClass[l] = floats.Sum(h) / float64(len(h))
	}

	return eval
}
