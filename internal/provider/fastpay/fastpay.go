// Package fastpay implements the provider.Adapter for FastPay. FastPay
// takes amounts in decimal major units with a payer sub-object and an
// installment count, and reports outcomes through a "status" field.
package fastpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-router/internal/payment"
	"github.com/yourorg/payment-router/internal/provider"
	"github.com/yourorg/payment-router/internal/provider/transport"
)

// Name is the stable provider identity used for routing and fee lookup.
const Name = "FastPay"

const (
	statusApproved  = "approved"
	defaultSimDelay = 50 * time.Millisecond
	defaultEmail    = "payer@example.com"
)

// Config holds the per-provider settings owned by the configuration
// layer. An empty BaseURL puts the adapter in simulation mode.
type Config struct {
	BaseURL  string
	APIKey   string
	SimDelay time.Duration
}

// Adapter calls the FastPay payments API, or simulates it when no
// endpoint is configured. Stateless aside from its shared transport;
// safe for concurrent use.
type Adapter struct {
	cfg    Config
	client *transport.Client
}

// New creates a FastPay adapter. client may be nil only in simulation
// mode (empty cfg.BaseURL).
func New(cfg Config, client *transport.Client) *Adapter {
	if cfg.BaseURL != "" && client == nil {
		panic("fastpay: transport client required for live mode")
	}
	if cfg.SimDelay <= 0 {
		cfg.SimDelay = defaultSimDelay
	}
	return &Adapter{cfg: cfg, client: client}
}

// Name implements provider.Adapter.
func (a *Adapter) Name() string { return Name }

type payer struct {
	Email string `json:"email"`
}

// chargeRequest is FastPay's wire shape: decimal major units.
type chargeRequest struct {
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	Currency          string          `json:"currency"`
	Payer             payer           `json:"payer"`
	Installments      int             `json:"installments"`
	Description       string          `json:"description"`
}

type chargeResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// Process implements provider.Adapter.
func (a *Adapter) Process(ctx context.Context, req payment.Request) (provider.Result, error) {
	if a.cfg.BaseURL == "" {
		return a.simulate(ctx)
	}

	body, err := json.Marshal(chargeRequest{
		TransactionAmount: req.Amount,
		Currency:          req.Currency,
		Payer:             payer{Email: defaultEmail},
		Installments:      1,
		Description:       "payment-router charge",
	})
	if err != nil {
		return provider.Result{}, fmt.Errorf("%w: marshal charge request: %v", provider.ErrProvider, err)
	}

	status, respBody, err := a.client.Do(ctx, Name, func(ctx context.Context) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/payments", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
		httpReq.Header.Set("Idempotency-Key", uuid.NewString())
		return httpReq, nil
	})
	if err != nil {
		return provider.Result{}, err
	}
	if status < 200 || status >= 300 {
		return provider.Result{}, fmt.Errorf("%w: FastPay returned HTTP %d", provider.ErrProvider, status)
	}

	var resp chargeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return provider.Result{}, fmt.Errorf("%w: decode FastPay response: %v", provider.ErrProvider, err)
	}
	return provider.Result{
		Approved:   resp.Status == statusApproved,
		ExternalID: resp.ID,
	}, nil
}

// simulate mimics a successful FastPay call after a short processing
// delay. Kept so the orchestrator can be exercised end to end without
// network dependencies.
func (a *Adapter) simulate(ctx context.Context) (provider.Result, error) {
	select {
	case <-ctx.Done():
		return provider.Result{}, ctx.Err()
	case <-time.After(a.cfg.SimDelay):
	}
	return provider.Result{
		Approved:   true,
		ExternalID: fmt.Sprintf("FP-%d", time.Now().UnixNano()),
	}, nil
}
