package gesture

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelsOf(counts map[string]int) []string {
	var labels []string
	names := make([]string, 0, len(counts))
	for l := range counts {
		names = append(names, l)
	}
	sort.Strings(names)
	for _, l := range names {
		for i := 0; i < counts[l]; i++ {
			labels = append(labels, l)
		}
	}
	return labels
}

func TestStratifiedSplit_PreservesProportions(t *testing.T) {
	counts := map[string]int{"zoom in": 200, "zoom out": 37, "next note": 11, "prev note": 2, "scroll up": 5}
	labels := labelsOf(counts)

	train, test, err := StratifiedSplit(labels, 0.2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, len(labels), len(train)+len(test))

	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i], "index %d appears twice", i)
		seen[i] = true
	}

	testCounts := make(map[string]int)
	for _, i := range test {
		testCounts[labels[i]]++
	}
	for l, n := range counts {
		expected := 0.2 * float64(n)
		assert.LessOrEqual(t, math.Abs(float64(testCounts[l])-expected), 1.0, "class %q", l)
		assert.GreaterOrEqual(t, testCounts[l], 1, "class %q needs a test sample", l)
		assert.Less(t, testCounts[l], n, "class %q needs a train sample", l)
	}
	assert.Equal(t, 40, testCounts["zoom in"])
}

func TestStratifiedSplit_Reproducible(t *testing.T) {
	labels := labelsOf(map[string]int{"a": 30, "b": 20})

	train1, test1, err := StratifiedSplit(labels, 0.2, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	train2, test2, err := StratifiedSplit(labels, 0.2, rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
}

func TestStratifiedSplit_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, _, err := StratifiedSplit([]string{"a", "a", "b"}, 0.2, rng)
	assert.ErrorIs(t, err, ErrIllDefinedDataset)

	for _, fraction := range []float64{0, 1, -0.5, 1.5} {
		_, _, err := StratifiedSplit([]string{"a", "a", "b", "b"}, fraction, rng)
		assert.ErrorIs(t, err, ErrIllDefinedDataset, "fraction %v", fraction)
	}
}
