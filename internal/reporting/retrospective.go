// Package reporting aggregates processed payments into a retrospective
// summary: volumes, approval/failure counts, fee totals, and provider
// usage. Entries live in memory for the process lifetime only.
package reporting

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-router/internal/payment"
)

// Entry is one processed payment as seen at the orchestrator boundary.
type Entry struct {
	Timestamp time.Time
	Response  payment.Response
	Currency  string
}

// RetrospectiveReport summarizes a window of processed payments.
type RetrospectiveReport struct {
	TotalRequests      int                        `json:"totalRequests"`
	ApprovedPayments   int                        `json:"approvedPayments"`
	FailedPayments     int                        `json:"failedPayments"`
	TotalGrossApproved decimal.Decimal            `json:"totalGrossApproved"`
	TotalFees          decimal.Decimal            `json:"totalFees"`
	GrossByCurrency    map[string]decimal.Decimal `json:"grossByCurrency"`
	ProviderUsage      map[string]int             `json:"providerUsage"`
	DateFrom           time.Time                  `json:"dateFrom"`
	DateTo             time.Time                  `json:"dateTo"`
}

// Recorder collects entries from concurrent Process calls and produces
// retrospective reports. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record stores one processed payment.
func (r *Recorder) Record(resp payment.Response, currency string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Timestamp: time.Now(),
		Response:  resp,
		Currency:  currency,
	})
}

// Retrospective aggregates everything recorded so far.
func (r *Recorder) Retrospective() RetrospectiveReport {
	r.mu.Lock()
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()

	report := RetrospectiveReport{
		TotalGrossApproved: decimal.Zero,
		TotalFees:          decimal.Zero,
		GrossByCurrency:    make(map[string]decimal.Decimal),
		ProviderUsage:      make(map[string]int),
	}
	for i, e := range entries {
		if i == 0 {
			report.DateFrom = e.Timestamp
			report.DateTo = e.Timestamp
		}
		if e.Timestamp.Before(report.DateFrom) {
			report.DateFrom = e.Timestamp
		}
		if e.Timestamp.After(report.DateTo) {
			report.DateTo = e.Timestamp
		}

		report.TotalRequests++
		switch e.Response.Status {
		case payment.StatusApproved:
			report.ApprovedPayments++
			report.TotalGrossApproved = report.TotalGrossApproved.Add(e.Response.GrossAmount)
			report.TotalFees = report.TotalFees.Add(e.Response.Fee)
			report.ProviderUsage[e.Response.Provider]++
			existing, ok := report.GrossByCurrency[e.Currency]
			if !ok {
				existing = decimal.Zero
			}
			report.GrossByCurrency[e.Currency] = existing.Add(e.Response.GrossAmount)
		case payment.StatusFailed:
			report.FailedPayments++
		}
	}
	return report
}
