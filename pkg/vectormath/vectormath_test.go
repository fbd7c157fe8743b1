package vectormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a       []float32
		b       []float32
		want    float32
		wantErr error
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1.0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0.0,
		},
		{
			name: "zero vector left",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0.0,
		},
		{
			name: "zero vector right",
			a:    []float32{1, 2, 3},
			b:    []float32{0, 0, 0},
			want: 0.0,
		},
		{
			name:    "dimension mismatch",
			a:       []float32{1, 2},
			b:       []float32{1, 2, 3},
			wantErr: ErrDimensionMismatch,
		},
		{
			name:    "empty left",
			a:       []float32{},
			b:       []float32{1},
			wantErr: ErrEmptyVector,
		},
		{
			name:    "empty right",
			a:       []float32{1},
			b:       nil,
			wantErr: ErrEmptyVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.7, -3.3, 1.9}

	ab, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	ba, err := CosineSimilarity(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.GreaterOrEqual(t, ab, float32(-1.0))
	assert.LessOrEqual(t, ab, float32(1.0))
}

func TestCosineSimilarityDeterministic(t *testing.T) {
	a := []float32{0.123, 0.456, 0.789, -0.321, 0.654}
	b := []float32{-0.987, 0.246, 0.135, 0.864, -0.579}

	first, err := CosineSimilarity(a, b)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		got, err := CosineSimilarity(a, b)
		require.NoError(t, err)
		// Bit-identical, not just approximately equal.
		assert.Equal(t, first, got)
	}
}

func TestEuclideanDistance(t *testing.T) {
	got, err := EuclideanDistance([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-6)

	got, err = EuclideanDistance([]float32{1, 2, 3}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, float32(0), got)

	_, err = EuclideanDistance([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = EuclideanDistance(nil, []float32{1})
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestManhattanDistance(t *testing.T) {
	got, err := ManhattanDistance([]float32{1, 2}, []float32{4, -2})
	require.NoError(t, err)
	assert.InDelta(t, 7.0, got, 1e-6)

	_, err = ManhattanDistance([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = ManhattanDistance([]float32{}, []float32{})
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit magnitude", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		var mag float64
		for _, x := range v {
			mag += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)
	})

	t.Run("idempotent", func(t *testing.T) {
		v := []float32{0.5, -2.5, 1.25}
		once := NormalizeVector(v)
		twice := NormalizeVector(once)
		for i := range once {
			assert.InDelta(t, once[i], twice[i], 1e-6)
		}
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		v := []float32{0, 0, 0}
		got := NormalizeVector(v)
		assert.Equal(t, v, got)
	})

	t.Run("empty vector unchanged", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		v := []float32{3, 4}
		_ = NormalizeVector(v)
		assert.Equal(t, []float32{3, 4}, v)
	})
}

func TestCentroid(t *testing.T) {
	t.Run("mean of three vectors", func(t *testing.T) {
		got, err := Centroid([][]float32{
			{1, 2, 3},
			{4, 5, 6},
			{7, 8, 9},
		})
		require.NoError(t, err)
		assert.InDelta(t, 4.0, got[0], 1e-6)
		assert.InDelta(t, 5.0, got[1], 1e-6)
		assert.InDelta(t, 6.0, got[2], 1e-6)
	})

	t.Run("single member", func(t *testing.T) {
		got, err := Centroid([][]float32{{0.5, -0.5}})
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, -0.5}, got)
	})

	t.Run("empty set yields nil", func(t *testing.T) {
		got, err := Centroid(nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("mismatched members", func(t *testing.T) {
		_, err := Centroid([][]float32{{1, 2}, {1, 2, 3}})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}
