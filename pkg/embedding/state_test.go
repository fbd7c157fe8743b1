package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderStateLifecycle(t *testing.T) {
	s := NewProviderState()
	assert.False(t, s.Ready())
	assert.Equal(t, "", s.Model())
	assert.Equal(t, 0, s.Dimensions())

	s.Init("mock-embedder", 8)
	assert.True(t, s.Ready())
	assert.Equal(t, "mock-embedder", s.Model())
	assert.Equal(t, 8, s.Dimensions())

	s.Shutdown()
	assert.False(t, s.Ready())
	assert.Equal(t, "", s.Model())
}

func TestProviderStateRecordFailure(t *testing.T) {
	s := NewProviderState()
	s.Init("mock-embedder", 8)

	genErr := errors.New("boom")
	s.RecordFailure(genErr)

	// Transient failures do not flip readiness.
	assert.True(t, s.Ready())
	assert.Equal(t, genErr, s.LastError())
}

func TestMockProviderDeterministic(t *testing.T) {
	m := NewMockProvider()

	a, err := m.Generate(context.Background(), "hello world", TaskRetrievalDocument)
	require.NoError(t, err)
	b, err := m.Generate(context.Background(), "hello world", TaskRetrievalDocument)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, m.Dimensions())
	assert.Equal(t, 2, m.Calls())

	c, err := m.Generate(context.Background(), "something else", TaskRetrievalDocument)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
