// Package vectormath provides the pure numeric primitives used by semantic
// search and topic classification: cosine similarity, distance metrics and
// vector normalization.
//
// All functions are deterministic and side-effect free. Summation is always
// left-to-right so identical inputs produce bit-identical results.
package vectormath

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch is returned when two vectors have different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyVector is returned when a vector has length zero.
	ErrEmptyVector = errors.New("empty vector")
)

func validatePair(a, b []float32) error {
	if len(a) == 0 || len(b) == 0 {
		return ErrEmptyVector
	}
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1.0, 1.0]. If either vector has zero magnitude the result is 0.0 by
// convention (orthogonal), not an error. Freshly zeroed embeddings rank last
// because of this.
func CosineSimilarity(a, b []float32) (float32, error) {
	if err := validatePair(a, b); err != nil {
		return 0, err
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Guard against float drift pushing the result out of range.
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}

	return float32(sim), nil
}

// EuclideanDistance returns the L2 distance between a and b.
// Lower values mean more similar; there is no upper bound.
func EuclideanDistance(a, b []float32) (float32, error) {
	if err := validatePair(a, b); err != nil {
		return 0, err
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum)), nil
}

// ManhattanDistance returns the L1 distance between a and b.
func ManhattanDistance(a, b []float32) (float32, error) {
	if err := validatePair(a, b); err != nil {
		return 0, err
	}

	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return float32(sum), nil
}

// NormalizeVector scales v to unit length and returns a new slice.
// A zero-magnitude vector is returned unchanged, not treated as an error.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sum)

	if magnitude == 0 {
		return v
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// Centroid returns the element-wise arithmetic mean of the given vectors.
// All vectors must share the same dimensionality. An empty input yields nil,
// which callers store as "no centroid".
func Centroid(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, nil
	}

	dims := len(vectors[0])
	if dims == 0 {
		return nil, ErrEmptyVector
	}

	sums := make([]float64, dims)
	for _, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(v), dims)
		}
		for i, val := range v {
			sums[i] += float64(val)
		}
	}

	mean := make([]float32, dims)
	n := float64(len(vectors))
	for i, s := range sums {
		mean[i] = float32(s / n)
	}
	return mean, nil
}
