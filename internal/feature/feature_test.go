package feature

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/gesturenote/internal/detector"
)

func newFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return &frame
}

func TestFromLandmarks_UniformHand(t *testing.T) {
	hand := detector.UniformLandmarks(detector.NumLandmarks, 0.5)

	v := FromLandmarks(&hand)

	require.Len(t, v, 42)
	for i, x := range v {
		assert.Equal(t, 0.5, x, "value %d", i)
	}
	assert.NoError(t, Validate(v))
}

func TestFromLandmarks_PreservesOrder(t *testing.T) {
	hand := detector.OpenPalmLandmarks()

	v := FromLandmarks(&hand)

	require.Len(t, v, Length)
	for i, p := range hand.Points {
		assert.Equal(t, p.X, v[2*i])
		assert.Equal(t, p.Y, v[2*i+1])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"empty", 0},
		{"twenty points", 40},
		{"twenty two points", 44},
		{"two hands", 2 * Length},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(make(Vector, tt.n))

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrWrongCardinality))

			var ce *CardinalityError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.n, ce.Got)
		})
	}

	t.Run("content does not matter", func(t *testing.T) {
		v := make(Vector, Length-1)
		for i := range v {
			v[i] = 0.5
		}
		assert.ErrorIs(t, Validate(v), ErrWrongCardinality)
	})
}

func TestExtractor_Extract(t *testing.T) {
	t.Run("no hands", func(t *testing.T) {
		mock := detector.NewMockDetector()
		ex := NewExtractor(mock)

		v, hand, err := ex.Extract(newFrame(t))

		assert.ErrorIs(t, err, ErrNoHand)
		assert.Nil(t, v)
		assert.Nil(t, hand)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("first hand only", func(t *testing.T) {
		first := detector.UniformLandmarks(detector.NumLandmarks, 0.25)
		second := detector.UniformLandmarks(detector.NumLandmarks, 0.75)
		mock := detector.NewMockDetector()
		mock.SetHands([]detector.HandLandmarks{first, second})

		v, hand, err := NewExtractor(mock).Extract(newFrame(t))

		require.NoError(t, err)
		require.Len(t, v, Length)
		assert.Equal(t, 0.25, v[0])
		assert.Equal(t, 0.25, v[Length-1])
		assert.Equal(t, 0.25, hand.Points[0].X)
	})

	t.Run("partial hand is returned unvalidated", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetHands([]detector.HandLandmarks{detector.UniformLandmarks(20, 0.5)})

		v, _, err := NewExtractor(mock).Extract(newFrame(t))

		require.NoError(t, err)
		assert.Len(t, v, 40)
		assert.ErrorIs(t, Validate(v), ErrWrongCardinality)
	})

	t.Run("detector error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		mock := detector.NewMockDetector()
		mock.SetError(boom)

		_, _, err := NewExtractor(mock).Extract(newFrame(t))

		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNoHand)
	})

	t.Run("empty frame", func(t *testing.T) {
		mock := detector.NewMockDetector()
		empty := gocv.NewMat()
		defer empty.Close()

		_, _, err := NewExtractor(mock).Extract(&empty)

		assert.Error(t, err)
		assert.Equal(t, 0, mock.Calls())
	})

	t.Run("detector receives RGB frame", func(t *testing.T) {
		frame := newFrame(t)
		frame.SetTo(gocv.NewScalar(255, 0, 0, 0)) // pure blue in BGR

		mock := detector.NewMockDetector()
		var first []uint8
		mock.SetDetectFunc(func(m *gocv.Mat) ([]detector.HandLandmarks, error) {
			first = []uint8{m.GetUCharAt(0, 0), m.GetUCharAt(0, 1), m.GetUCharAt(0, 2)}
			return nil, nil
		})

		_, _, err := NewExtractor(mock).Extract(frame)

		assert.ErrorIs(t, err, ErrNoHand)
		assert.Equal(t, []uint8{0, 0, 255}, first)
	})
}
