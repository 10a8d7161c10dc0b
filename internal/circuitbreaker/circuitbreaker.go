// Package circuitbreaker tracks per-provider transport health and stops
// sending requests to a provider that has failed repeatedly, reopening
// after a cooldown. In-memory only; state resets with the process.
package circuitbreaker

import (
	"sync"
	"time"
)

// State of one provider's circuit.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

const (
	defaultFailureThreshold         = 5
	defaultOpenStateTimeout         = 30 * time.Second
	defaultHalfOpenSuccessThreshold = 2
)

type providerState struct {
	state                State
	consecutiveFailures  int
	consecutiveSuccesses int
	openUntil            time.Time
}

// CircuitBreaker monitors provider transport health. All methods are
// safe for concurrent use.
type CircuitBreaker struct {
	mu                       sync.RWMutex
	providers                map[string]*providerState
	failureThreshold         int
	openStateTimeout         time.Duration
	halfOpenSuccessThreshold int
}

// New creates a CircuitBreaker with default thresholds.
func New() *CircuitBreaker {
	return NewWithSettings(defaultFailureThreshold, defaultOpenStateTimeout, defaultHalfOpenSuccessThreshold)
}

// NewWithSettings creates a CircuitBreaker with custom thresholds.
func NewWithSettings(failThreshold int, openTimeout time.Duration, halfOpenSuccess int) *CircuitBreaker {
	return &CircuitBreaker{
		providers:                make(map[string]*providerState),
		failureThreshold:         failThreshold,
		openStateTimeout:         openTimeout,
		halfOpenSuccessThreshold: halfOpenSuccess,
	}
}

// Holds lock.
func (cb *CircuitBreaker) getProviderState(providerName string) *providerState {
	ps, exists := cb.providers[providerName]
	if !exists {
		ps = &providerState{state: Closed}
		cb.providers[providerName] = ps
	}
	return ps
}

// Allow reports whether requests may be sent to the provider. An Open
// circuit whose cooldown has expired transitions to HalfOpen and lets
// probe requests through.
func (cb *CircuitBreaker) Allow(providerName string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ps := cb.getProviderState(providerName)
	switch ps.state {
	case Closed:
		return true
	case Open:
		if time.Now().After(ps.openUntil) {
			ps.state = HalfOpen
			ps.consecutiveSuccesses = 0
			return true
		}
		return false
	case HalfOpen:
		return true
	default:
		ps.state = Closed
		return true
	}
}

// RecordFailure records a transport failure for the provider. Reaching
// the failure threshold opens the circuit; any failure while HalfOpen
// re-opens it immediately.
func (cb *CircuitBreaker) RecordFailure(providerName string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ps := cb.getProviderState(providerName)
	switch ps.state {
	case Closed:
		ps.consecutiveFailures++
		if ps.consecutiveFailures >= cb.failureThreshold {
			ps.state = Open
			ps.openUntil = time.Now().Add(cb.openStateTimeout)
		}
	case HalfOpen:
		ps.state = Open
		ps.openUntil = time.Now().Add(cb.openStateTimeout)
		ps.consecutiveFailures = 0
		ps.consecutiveSuccesses = 0
	case Open:
		// Already open; cooldown is not extended.
	}
}

// RecordSuccess records a successful call. Enough successes while
// HalfOpen close the circuit again.
func (cb *CircuitBreaker) RecordSuccess(providerName string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ps := cb.getProviderState(providerName)
	switch ps.state {
	case Closed:
		ps.consecutiveFailures = 0
	case HalfOpen:
		ps.consecutiveSuccesses++
		if ps.consecutiveSuccesses >= cb.halfOpenSuccessThreshold {
			ps.state = Closed
			ps.consecutiveFailures = 0
			ps.consecutiveSuccesses = 0
		}
	case Open:
		// Allow should have blocked the call; success while Open does
		// not transition on its own.
	}
}

// GetState returns the provider's current circuit state without
// triggering any transition. Intended for tests and monitoring.
func (cb *CircuitBreaker) GetState(providerName string) State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	ps, exists := cb.providers[providerName]
	if !exists {
		return Closed
	}
	return ps.state
}
