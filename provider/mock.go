package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockProvider is a mock translation provider for testing.
type MockProvider struct {
	ProviderName string            // Name reported by Name (default: "mock")
	Translations map[string]string // Map of "target:text" to translation
	Err          error             // Returned from every call when set
	Delay        time.Duration     // Simulated latency, interrupted by ctx
	Panic        bool              // Panic instead of answering

	mu          sync.Mutex
	callCount   int
	lastRequest *TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"az:Hello":       "Salam",
			"ru:Hello":       "Привет",
			"az:Hello World": "Salam Dünya",
			"ru:Hello World": "Привет мир",
			"en:Salam":       "Hello",
		},
	}
}

// Name returns the provider name.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Translate returns mock translations. Unknown texts come back as
// "[target] text".
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if m.Panic {
		panic("mock provider panic")
	}
	if m.Err != nil {
		return "", m.Err
	}

	if translation, ok := m.Translations[req.TargetLang+":"+req.Text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s] %s", req.TargetLang, req.Text), nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the last request received, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
