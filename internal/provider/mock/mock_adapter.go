// Package mock provides a configurable provider.Adapter for tests.
package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payment-router/internal/payment"
	"github.com/yourorg/payment-router/internal/provider"
)

// Adapter is a test double for provider.Adapter. ProcessFunc, when set,
// fully controls the outcome; otherwise every call is approved with a
// fresh synthetic external id.
type Adapter struct {
	AdapterName string
	ProcessFunc func(ctx context.Context, req payment.Request) (provider.Result, error)

	mu    sync.Mutex
	calls []payment.Request
}

// New creates a mock adapter with the given name.
func New(name string) *Adapter {
	return &Adapter{AdapterName: name}
}

// Name implements provider.Adapter.
func (m *Adapter) Name() string { return m.AdapterName }

// Process implements provider.Adapter.
func (m *Adapter) Process(ctx context.Context, req payment.Request) (provider.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, req)
	}
	return provider.Result{Approved: true, ExternalID: "mock-" + uuid.NewString()}, nil
}

// Calls returns every request processed so far, in order.
func (m *Adapter) Calls() []payment.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]payment.Request, len(m.calls))
	copy(out, m.calls)
	return out
}
