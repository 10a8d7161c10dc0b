// Package securepay implements the provider.Adapter for SecurePay.
// SecurePay takes amounts in integer minor units (cents) with a
// client-generated reference, and reports outcomes through a "result"
// field.
package securepay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-router/internal/payment"
	"github.com/yourorg/payment-router/internal/provider"
	"github.com/yourorg/payment-router/internal/provider/transport"
)

// Name is the stable provider identity used for routing and fee lookup.
const Name = "SecurePay"

const (
	resultSuccess   = "success"
	defaultSimDelay = 50 * time.Millisecond
)

var decimalHundred = decimal.NewFromInt(100)

// Config holds the per-provider settings owned by the configuration
// layer. An empty BaseURL puts the adapter in simulation mode.
type Config struct {
	BaseURL  string
	APIKey   string
	SimDelay time.Duration
}

// Adapter calls the SecurePay charges API, or simulates it when no
// endpoint is configured. Stateless aside from its shared transport;
// safe for concurrent use.
type Adapter struct {
	cfg    Config
	client *transport.Client
}

// New creates a SecurePay adapter. client may be nil only in simulation
// mode (empty cfg.BaseURL).
func New(cfg Config, client *transport.Client) *Adapter {
	if cfg.BaseURL != "" && client == nil {
		panic("securepay: transport client required for live mode")
	}
	if cfg.SimDelay <= 0 {
		cfg.SimDelay = defaultSimDelay
	}
	return &Adapter{cfg: cfg, client: client}
}

// Name implements provider.Adapter.
func (a *Adapter) Name() string { return Name }

// chargeRequest is SecurePay's wire shape: integer minor units and a
// generated client reference.
type chargeRequest struct {
	AmountCents     int64  `json:"amount_cents"`
	CurrencyCode    string `json:"currency_code"`
	ClientReference string `json:"client_reference"`
}

type chargeResponse struct {
	Result        string `json:"result"`
	TransactionID string `json:"transaction_id"`
}

// clientReference generates SecurePay's required per-request reference,
// a timestamp-derived string.
func clientReference() string {
	return "ref-" + strconv.FormatInt(time.Now().UnixNano(), 10)
}

// Process implements provider.Adapter.
func (a *Adapter) Process(ctx context.Context, req payment.Request) (provider.Result, error) {
	if a.cfg.BaseURL == "" {
		return a.simulate(ctx)
	}

	body, err := json.Marshal(chargeRequest{
		AmountCents:     req.Amount.Mul(decimalHundred).IntPart(),
		CurrencyCode:    req.Currency,
		ClientReference: clientReference(),
	})
	if err != nil {
		return provider.Result{}, fmt.Errorf("%w: marshal charge request: %v", provider.ErrProvider, err)
	}

	status, respBody, err := a.client.Do(ctx, Name, func(ctx context.Context) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/charges", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
		return httpReq, nil
	})
	if err != nil {
		return provider.Result{}, err
	}
	if status < 200 || status >= 300 {
		return provider.Result{}, fmt.Errorf("%w: SecurePay returned HTTP %d", provider.ErrProvider, status)
	}

	var resp chargeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return provider.Result{}, fmt.Errorf("%w: decode SecurePay response: %v", provider.ErrProvider, err)
	}
	return provider.Result{
		Approved:   resp.Result == resultSuccess,
		ExternalID: resp.TransactionID,
	}, nil
}

// simulate mimics a successful SecurePay call after a short processing
// delay.
func (a *Adapter) simulate(ctx context.Context) (provider.Result, error) {
	select {
	case <-ctx.Done():
		return provider.Result{}, ctx.Err()
	case <-time.After(a.cfg.SimDelay):
	}
	return provider.Result{
		Approved:   true,
		ExternalID: fmt.Sprintf("SP-%d", time.Now().UnixNano()),
	}, nil
}
