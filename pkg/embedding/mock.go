package embedding

import (
	"context"

	"knowledgebase-engine/pkg/vectormath"
)

// MockProvider is a deterministic test double. The default behavior derives a
// unit-length vector from the text via an LCG seeded with the text bytes, so
// the same text always embeds to the same vector without any network access.
type MockProvider struct {
	// GenerateFunc overrides the default behavior when set.
	GenerateFunc func(ctx context.Context, text string, taskType string) ([]float32, error)

	// Dims is the vector dimensionality; defaults to 8 for readable tests.
	Dims int

	calls int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Dims: 8}
}

func (m *MockProvider) Model() string {
	return "mock-embedder"
}

func (m *MockProvider) Dimensions() int {
	if m.Dims == 0 {
		return 8
	}
	return m.Dims
}

func (m *MockProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	m.calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, text, taskType)
	}
	return DeterministicVector(text, m.Dimensions()), nil
}

// Calls returns how many times Generate was invoked.
func (m *MockProvider) Calls() int {
	return m.calls
}

// DeterministicVector produces a reproducible unit vector from text.
func DeterministicVector(text string, dims int) []float32 {
	var seed uint32
	for _, b := range []byte(text) {
		seed = seed*31 + uint32(b)
	}

	v := make([]float32, dims)
	for i := range v {
		seed = seed*1664525 + 1013904223 // LCG constants
		// Map to [-1, 1).
		v[i] = float32(seed)/float32(1<<31) - 1
	}
	return vectormath.NormalizeVector(v)
}
