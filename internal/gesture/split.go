package gesture

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions sample indices into train and test sets so that
// every label keeps its share in both. Each label contributes
// round(fraction·n) test samples, clamped to [1, n-1]. Labels with fewer than
// two samples cannot be split.
func StratifiedSplit(labels []string, fraction float64, rng *rand.Rand) (train, test []int, err error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, fmt.Errorf("%w: test fraction %v outside (0, 1)", ErrIllDefinedDataset, fraction)
	}

	byLabel := make(map[string][]int)
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
	}

	names := make([]string, 0, len(byLabel))
	for l := range byLabel {
		names = append(names, l)
	}
	sort.Strings(names)

	for _, l := range names {
		idx := byLabel[l]
		n := len(idx)
		if n < 2 {
			return nil, nil, fmt.Errorf("%w: class %q has %d sample", ErrIllDefinedDataset, l, n)
		}

		nTest := int(math.Round(fraction * float64(n)))
		if nTest < 1 {
			nTest = 1
		}
		if nTest > n-1 {
			nTest = n - 1
		}

		rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}

	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })

	return train, test, nil
}
