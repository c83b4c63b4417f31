package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/gesturenote/internal/dataset"
	"github.com/ayusman/gesturenote/internal/feature"
)

func TestTrainer_Train(t *testing.T) {
	ds := syntheticDataset(t, 30, testClasses...)
	before := &dataset.Dataset{
		Vectors: make([][]float64, len(ds.Vectors)),
		Labels:  append([]string(nil), ds.Labels...),
	}
	for i, v := range ds.Vectors {
		before.Vectors[i] = append([]float64(nil), v...)
	}

	model, eval, err := NewTrainer(TrainConfig{Trees: 25, Seed: 3}).Train(ds)
	require.NoError(t, err)

	assert.Equal(t, testClasses, model.Labels)
	assert.Equal(t, 25, model.Trees())
	assert.Equal(t, 36, eval.TestSize)
	assert.Equal(t, 144, eval.TrainSize)
	assert.Equal(t, int64(3), eval.Seed)
	assert.GreaterOrEqual(t, eval.Accuracy, 0.0)
	assert.LessOrEqual(t, eval.Accuracy, 1.0)
	assert.Greater(t, eval.Accuracy, 0.8, "synthetic classes are well separated")
	assert.Len(t, eval.PerClass, len(testClasses))

	assert.Equal(t, before, ds, "training must not modify the dataset")
}

func TestTrainer_DefaultsAndRandomSeed(t *testing.T) {
	tr := NewTrainer(TrainConfig{})
	assert.Equal(t, 0.2, tr.config.TestFraction)
	assert.Equal(t, 100, tr.config.Trees)

	ds := syntheticDataset(t, 5, "zoom in", "zoom out")
	_, eval, err := NewTrainer(TrainConfig{Trees: 5}).Train(ds)
	require.NoError(t, err)
	assert.NotZero(t, eval.Seed)
	assert.Equal(t, 2, eval.TestSize)
}

func TestTrainer_IllDefinedDatasets(t *testing.T) {
	single := syntheticDataset(t, 10, "zoom in")
	tiny := syntheticDataset(t, 10, "zoom in")
	require.NoError(t, tiny.Add(make(feature.Vector, feature.Length), "zoom out"))
	broken := syntheticDataset(t, 3, "zoom in", "zoom out")
	broken.Vectors[0] = broken.Vectors[0][:10]

	tests := []struct {
		name string
		ds   *dataset.Dataset
	}{
		{"nil", nil},
		{"empty", &dataset.Dataset{}},
		{"single class", single},
		{"class with one sample", tiny},
		{"wrong cardinality", broken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, _, err := NewTrainer(TrainConfig{Trees: 5, Seed: 1}).Train(tt.ds)

			assert.ErrorIs(t, err, ErrIllDefinedDataset)
			assert.Nil(t, model)
		})
	}
}
