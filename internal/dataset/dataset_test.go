package dataset

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/gesturenote/internal/capture"
	"github.com/ayusman/gesturenote/internal/detector"
	"github.com/ayusman/gesturenote/internal/feature"
)

// Pixel values that steer the fake detector.
const (
	pixelNoHand  = 10
	pixelPartial = 20
	pixelBroken  = 30
	pixelHand    = 100
)

// pixelDetector derives the detection result from the first pixel so test
// images can encode what the detector should see.
func pixelDetector() *detector.MockDetector {
	mock := detector.NewMockDetector()
	mock.SetDetectFunc(func(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
		v := frame.GetUCharAt(0, 0)
		switch {
		case v == pixelNoHand:
			return nil, nil
		case v == pixelPartial:
			return []detector.HandLandmarks{detector.UniformLandmarks(20, 0.5)}, nil
		case v == pixelBroken:
			return nil, errors.New("detector crashed")
		default:
			pos := float64(v) / 255
			return []detector.HandLandmarks{detector.UniformLandmarks(detector.NumLandmarks, pos)}, nil
		}
	})
	return mock
}

func writeSamples(t *testing.T, s *capture.SampleStore, class string, pixels ...uint8) {
	t.Helper()
	n, err := s.Count(class)
	require.NoError(t, err)

	for i, p := range pixels {
		m := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
		m.SetTo(gocv.NewScalar(float64(p), float64(p), float64(p), 0))
		_, err := s.Save(class, n+i, &m)
		m.Close()
		require.NoError(t, err)
	}
}

func newStore(t *testing.T) *capture.SampleStore {
	s := capture.NewSampleStore(t.TempDir())
	s.Ext = ".png"
	return s
}

func TestBuilder_Build(t *testing.T) {
	s := newStore(t)
	writeSamples(t, s, "scroll up", pixelHand, pixelHand, pixelNoHand)
	writeSamples(t, s, "scroll down", pixelHand+50, pixelPartial, pixelBroken, pixelHand+50)

	ds, report, err := NewBuilder(s, feature.NewExtractor(pixelDetector())).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, report.Samples)
	assert.Equal(t, 4, report.Retained)
	assert.Equal(t, 1, report.NoHand)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 3, report.Skipped())
	assert.Equal(t, map[string]int{"scroll up": 2, "scroll down": 2}, report.PerClass)

	require.Equal(t, 4, ds.Len())
	assert.LessOrEqual(t, ds.Len(), report.Samples)
	// classes are visited in name order
	assert.Equal(t, []string{"scroll down", "scroll down", "scroll up", "scroll up"}, ds.Labels)
	for _, v := range ds.Vectors {
		assert.Len(t, v, feature.Length)
	}
	assert.InDelta(t, 150.0/255, ds.Vectors[0][0], 1e-9)
	assert.NoError(t, ds.Validate())
}

func TestBuilder_Deterministic(t *testing.T) {
	s := newStore(t)
	writeSamples(t, s, "zoom in", 40, 50, 60, 70, 80, 90, 110, 120, 130, 140, 150)
	writeSamples(t, s, "zoom out", 160, 170, 180)

	b := NewBuilder(s, feature.NewExtractor(pixelDetector()))
	first, _, err := b.Build(context.Background())
	require.NoError(t, err)
	second, _, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuilder_AllSkipped(t *testing.T) {
	s := newStore(t)
	writeSamples(t, s, "next note", pixelNoHand, pixelNoHand)

	ds, report, err := NewBuilder(s, feature.NewExtractor(pixelDetector())).Build(context.Background())
	require.NoError(t, err)

	assert.Zero(t, ds.Len())
	assert.Equal(t, 2, report.NoHand)
}

func TestBuilder_Cancelled(t *testing.T) {
	s := newStore(t)
	writeSamples(t, s, "prev note", pixelHand)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewBuilder(s, feature.NewExtractor(pixelDetector())).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilder_MissingRoot(t *testing.T) {
	s := capture.NewSampleStore(t.TempDir() + "/missing")

	_, _, err := NewBuilder(s, feature.NewExtractor(pixelDetector())).Build(context.Background())
	assert.Error(t, err)
}

func TestDataset_Add(t *testing.T) {
	var ds Dataset

	require.NoError(t, ds.Add(make(feature.Vector, feature.Length), "zoom in"))
	err := ds.Add(make(feature.Vector, feature.Length-2), "zoom in")

	assert.ErrorIs(t, err, feature.ErrWrongCardinality)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, []string{"zoom in"}, ds.Classes())
	assert.Equal(t, map[string]int{"zoom in": 1}, ds.ClassCounts())
}

func TestDataset_AddCopiesVector(t *testing.T) {
	var ds Dataset
	buf := make(feature.Vector, feature.Length)

	for i := 0; i < 3; i++ {
		for j := range buf {
			buf[j] = float64(i)
		}
		require.NoError(t, ds.Add(buf, "scroll up"))
	}

	for i, v := range ds.Vectors {
		assert.Equal(t, float64(i), v[0], "vector %d", i)
		assert.Equal(t, float64(i), v[feature.Length-1], "vector %d", i)
	}
}

func TestDataset_EncodeDecode(t *testing.T) {
	var ds Dataset
	hand := detector.OpenPalmLandmarks()
	require.NoError(t, ds.Add(feature.FromLandmarks(&hand), "next note"))
	require.NoError(t, ds.Add(make(feature.Vector, feature.Length), "prev note"))

	var buf bytes.Buffer
	require.NoError(t, ds.Encode(&buf))
	assert.Contains(t, buf.String(), `"data":`)
	assert.Contains(t, buf.String(), `"labels":["next note","prev note"]`)

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, &ds, got)
}

func TestDecode_Invalid(t *testing.T) {
	tests := map[string]string{
		"garbage":         `{"data":`,
		"length mismatch": `{"data":[],"labels":["a"]}`,
		"short vector":    `{"data":[[0.1,0.2]],"labels":["a"]}`,
	}
	for name, blob := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(blob))
			assert.Error(t, err)
		})
	}
}
