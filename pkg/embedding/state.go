package embedding

import "sync"

// ProviderState is the process-wide readiness flag for the embedding backend.
// It is set once on provider construction and cleared on shutdown; every
// reader consults it instead of inferring readiness from side effects.
type ProviderState struct {
	mu      sync.RWMutex
	ready   bool
	model   string
	dims    int
	lastErr error
}

// NewProviderState returns a not-ready state.
func NewProviderState() *ProviderState {
	return &ProviderState{}
}

// Init marks the provider ready and records its model identity.
func (s *ProviderState) Init(model string, dimensions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.model = model
	s.dims = dimensions
	s.lastErr = nil
}

// Shutdown marks the provider unavailable.
func (s *ProviderState) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
}

// Ready reports whether the provider can serve embedding requests.
func (s *ProviderState) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Model returns the active model identifier, or "" when not ready.
func (s *ProviderState) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return ""
	}
	return s.model
}

// Dimensions returns the active model's dimensionality, or 0 when not ready.
func (s *ProviderState) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return 0
	}
	return s.dims
}

// RecordFailure stores the most recent generation error for diagnostics.
// It does not flip readiness; transient provider errors are expected.
func (s *ProviderState) RecordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// LastError returns the most recent recorded generation error, if any.
func (s *ProviderState) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
