// Package payment defines the normalized request and response values
// exchanged between the HTTP layer and the orchestrator, plus the
// process-wide sequence used to stamp responses with a local id.
package payment

import (
	"sync/atomic"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are serialized as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Status values carried on a Response.
const (
	StatusApproved = "approved"
	StatusFailed   = "failed"
)

// Request is the validated, normalized payment request handed to the
// orchestrator. The calling layer guarantees Amount > 0 and a non-empty
// Currency before a Request is ever constructed.
type Request struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Response is the consolidated outcome of one processed payment.
//
// On approval, Provider names the provider that actually processed the
// payment (the fallback one, if fallback occurred) and Fee/NetAmount are
// computed from that provider's fee rule. On total failure, Provider is
// the comma-joined list of every provider attempted, ExternalID is empty
// and Fee/NetAmount are zero.
type Response struct {
	ID          int64           `json:"id"`
	ExternalID  string          `json:"externalId"`
	Status      string          `json:"status"`
	Provider    string          `json:"provider"`
	GrossAmount decimal.Decimal `json:"grossAmount"`
	Fee         decimal.Decimal `json:"fee"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// Sequence issues process-wide monotonically increasing ids. Ids are a
// correlation aid only: they are not persisted and restart from 1 with
// the process.
type Sequence struct {
	n atomic.Int64
}

// NewSequence creates a Sequence whose first issued id is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next atomically allocates the next id. Safe for concurrent use; no two
// calls ever observe the same value.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}
