package gesture

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayusman/gesturenote/internal/dataset"
	"github.com/ayusman/gesturenote/internal/detector"
	"github.com/ayusman/gesturenote/internal/feature"
)

var testClasses = []string{"next note", "prev note", "scroll down", "scroll up", "zoom in", "zoom out"}

// classHand returns a well separated synthetic hand for class i with a small
// amount of jitter.
func classHand(i int, rng *rand.Rand) detector.HandLandmarks {
	base := detector.OpenPalmLandmarks()
	if i%2 == 1 {
		base = detector.ThumbsUpLandmarks()
	}
	hand := detector.Shifted(base, -0.15+0.06*float64(i), 0)
	for j := range hand.Points {
		hand.Points[j].X += rng.NormFloat64() * 0.004
		hand.Points[j].Y += rng.NormFloat64() * 0.004
	}
	return hand
}

func syntheticDataset(t *testing.T, perClass int, classes ...string) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	ds := &dataset.Dataset{}
	for i, class := range classes {
		for n := 0; n < perClass; n++ {
			hand := classHand(i, rng)
			require.NoError(t, ds.Add(feature.FromLandmarks(&hand), class))
		}
	}
	return ds
}

func trainTestModel(t *testing.T) (*Model, *dataset.Dataset) {
	t.Helper()
	ds := syntheticDataset(t, 30, testClasses...)
	model, _, err := NewTrainer(TrainConfig{Trees: 25, Seed: 42}).Train(ds)
	require.NoError(t, err)
	return model, ds
}
