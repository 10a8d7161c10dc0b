// Package provider defines the interface for payment provider adapters
// and the fixed registry the orchestrator routes through. Adapters handle
// all provider-specific API calls, including serialization, retry with
// backoff, and error mapping, normalizing raw provider responses into a
// common Result.
package provider

import (
	"context"
	"errors"

	"github.com/yourorg/payment-router/internal/payment"
)

// Failure classes surfaced by adapters. A business decline is NOT an
// error: it comes back as Result{Approved: false} with a nil error.
var (
	// ErrUnavailable marks transport-level failures: endpoint
	// unreachable, exhausted retries, 5xx responses, open circuit.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrProvider marks hard provider-side failures that are not plain
	// unavailability, e.g. an unparseable response body.
	ErrProvider = errors.New("provider error")
)

// Result holds the outcome of a payment attempt that reached the
// provider and got a well-formed answer back.
type Result struct {
	// Approved is true only when the provider's own result field equals
	// its success sentinel. A reachable provider saying "no" yields
	// Approved=false with a nil error.
	Approved bool

	// ExternalID is the provider-issued transaction identifier, empty
	// if the provider did not return one.
	ExternalID string
}

// Adapter is implemented by each payment provider integration.
type Adapter interface {
	// Name returns the stable provider identity used for routing, fee
	// lookup and display (e.g. "FastPay").
	Name() string

	// Process attempts the payment with this provider. ctx cancellation
	// aborts the in-flight attempt and is returned as ctx.Err().
	Process(ctx context.Context, req payment.Request) (Result, error)
}
