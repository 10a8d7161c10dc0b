// Package orchestrator coordinates a single payment: it selects the
// preferred provider through the routing policy, attempts providers
// strictly in order until one approves, computes the fee and net amount
// from the provider that actually succeeded, and stamps the response
// with the next local sequence id.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/payment-router/internal/fee"
	"github.com/yourorg/payment-router/internal/metrics"
	"github.com/yourorg/payment-router/internal/payment"
	"github.com/yourorg/payment-router/internal/provider"
	"github.com/yourorg/payment-router/internal/routing"
)

// Orchestrator holds the fixed collaborators for payment processing.
// All fields are immutable after construction; concurrent Process calls
// share nothing mutable except the sequence counter, which is atomic.
type Orchestrator struct {
	registry *provider.Registry
	policy   *routing.Policy
	fees     *fee.Calculator
	seq      *payment.Sequence
	logger   zerolog.Logger
}

// New creates an Orchestrator. Nil collaborators are wiring bugs.
func New(
	reg *provider.Registry,
	policy *routing.Policy,
	fees *fee.Calculator,
	seq *payment.Sequence,
	logger zerolog.Logger,
) *Orchestrator {
	if reg == nil {
		panic("orchestrator: registry cannot be nil")
	}
	if policy == nil {
		panic("orchestrator: routing policy cannot be nil")
	}
	if fees == nil {
		panic("orchestrator: fee calculator cannot be nil")
	}
	if seq == nil {
		panic("orchestrator: sequence cannot be nil")
	}
	return &Orchestrator{
		registry: reg,
		policy:   policy,
		fees:     fees,
		seq:      seq,
		logger:   logger,
	}
}

// Process runs one payment through the provider fallback chain.
//
// Provider failures never propagate: a transport failure or a business
// decline moves on to the next provider, and exhausting every provider
// yields a well-formed "failed" response. The only error returns are
// context cancellation, which aborts the in-flight attempt and skips
// the remaining providers, and routing configuration errors, which are
// programming errors rather than provider outcomes.
func (o *Orchestrator) Process(ctx context.Context, req payment.Request) (payment.Response, error) {
	tracer := otel.Tracer("orchestrator")
	ctx, span := tracer.Start(ctx, "Orchestrator.Process")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.ProcessDurationSeconds().Observe(time.Since(start).Seconds())
	}()

	order, err := o.policy.AttemptOrder(req.Amount, o.registry)
	if err != nil {
		return payment.Response{}, err
	}

	var tried []string
	for _, adapter := range order {
		if ctx.Err() != nil {
			return payment.Response{}, ctx.Err()
		}
		name := adapter.Name()
		if len(tried) > 0 {
			metrics.FallbackAttemptsTotal().Inc()
		}
		tried = append(tried, name)

		res, err := adapter.Process(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// Caller gave up; not a provider failure.
				return payment.Response{}, err
			}
			metrics.ProviderFailuresTotal().WithLabelValues(name, "error").Inc()
			o.logger.Warn().Str("provider", name).Err(err).
				Msg("provider attempt failed, moving to next provider")
			continue
		}
		if !res.Approved {
			metrics.ProviderFailuresTotal().WithLabelValues(name, "declined").Inc()
			o.logger.Info().Str("provider", name).
				Msg("provider declined payment, moving to next provider")
			continue
		}

		// Fee reflects the provider that actually processed the
		// payment, not the originally preferred one.
		feeAmount := o.fees.Fee(name, req.Amount)
		resp := payment.Response{
			ID:          o.seq.Next(),
			ExternalID:  res.ExternalID,
			Status:      payment.StatusApproved,
			Provider:    name,
			GrossAmount: req.Amount,
			Fee:         feeAmount,
			NetAmount:   req.Amount.Sub(feeAmount).RoundBank(2),
		}
		span.SetAttributes(
			attribute.String("payment.provider", name),
			attribute.Int64("payment.id", resp.ID),
		)
		metrics.PaymentsTotal().WithLabelValues(payment.StatusApproved, name).Inc()
		return resp, nil
	}

	attempted := strings.Join(tried, ",")
	o.logger.Error().Str("providers", attempted).Msg("all providers failed or declined")
	metrics.PaymentsTotal().WithLabelValues(payment.StatusFailed, "none").Inc()
	span.SetAttributes(attribute.String("payment.providers_attempted", attempted))
	return payment.Response{
		ID:          o.seq.Next(),
		ExternalID:  "",
		Status:      payment.StatusFailed,
		Provider:    attempted,
		GrossAmount: req.Amount,
		Fee:         decimal.Zero,
		NetAmount:   decimal.Zero,
	}, nil
}
