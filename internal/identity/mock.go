package identity

import (
	"sync"
	"time"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	mu sync.Mutex

	VerifyFunc func(token string) (*Principal, error)
	IssueFunc  func(p Principal, ttl time.Duration) (string, error)

	VerifyCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Verify(token string) (*Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyCalls = append(m.VerifyCalls, token)
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	return nil, ErrInvalidToken
}

func (m *MockProvider) Issue(p Principal, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IssueFunc != nil {
		return m.IssueFunc(p, ttl)
	}
	return "", nil
}
