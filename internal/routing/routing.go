// Package routing selects the preferred provider for a payment and
// builds the fallback attempt order. Selection rules are expressed as
// compiled govaluate expressions evaluated against the request amount;
// the rule set is fixed at construction.
package routing

import (
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-router/internal/provider"
)

// Rule routes to Provider when Expression evaluates to true. Rules are
// evaluated in order; the first match wins.
type Rule struct {
	ID         string
	Expression string
	Provider   string
}

type compiledRule struct {
	id       string
	expr     *govaluate.EvaluableExpression
	provider string
}

// Policy is an ordered set of compiled routing rules plus the provider
// chosen when no rule matches. Immutable after construction and safe
// for concurrent use.
type Policy struct {
	rules           []compiledRule
	defaultProvider string
}

// NewPolicy compiles the given rules. A rule that fails to compile or
// has an empty expression is a configuration error.
func NewPolicy(rules []Rule, defaultProvider string) (*Policy, error) {
	if defaultProvider == "" {
		return nil, fmt.Errorf("routing: default provider cannot be empty")
	}
	p := &Policy{defaultProvider: defaultProvider}
	for _, r := range rules {
		if r.Expression == "" {
			return nil, fmt.Errorf("routing: rule %q has an empty expression", r.ID)
		}
		expr, err := govaluate.NewEvaluableExpression(r.Expression)
		if err != nil {
			return nil, fmt.Errorf("routing: failed to compile rule %q: %w", r.ID, err)
		}
		p.rules = append(p.rules, compiledRule{id: r.ID, expr: expr, provider: r.Provider})
	}
	return p, nil
}

// DefaultPolicy returns the fixed business rule: amounts under 100 go
// to FastPay, everything else (boundary included) to SecurePay.
func DefaultPolicy() *Policy {
	p, err := NewPolicy([]Rule{
		{ID: "small-amount", Expression: "amount < 100", Provider: "FastPay"},
	}, "SecurePay")
	if err != nil {
		panic(fmt.Sprintf("routing: default policy failed to compile: %v", err))
	}
	return p
}

// Preferred evaluates the rules against the request amount and returns
// the preferred provider name. An evaluation error is a programming
// error in the rule set, not a provider failure.
func (p *Policy) Preferred(amount decimal.Decimal) (string, error) {
	params := map[string]interface{}{
		"amount": amount.InexactFloat64(),
	}
	for _, r := range p.rules {
		out, err := r.expr.Evaluate(params)
		if err != nil {
			return "", fmt.Errorf("routing: evaluating rule %q: %w", r.id, err)
		}
		if matched, ok := out.(bool); ok && matched {
			return r.provider, nil
		}
	}
	return p.defaultProvider, nil
}

// AttemptOrder returns the adapters to try, preferred provider first and
// the rest in registration order. A preferred name missing from the
// registry is a configuration error.
func (p *Policy) AttemptOrder(amount decimal.Decimal, reg *provider.Registry) ([]provider.Adapter, error) {
	preferred, err := p.Preferred(amount)
	if err != nil {
		return nil, err
	}
	first, ok := reg.Get(preferred)
	if !ok {
		return nil, fmt.Errorf("routing: preferred provider %q is not registered", preferred)
	}
	order := make([]provider.Adapter, 0, len(reg.Ordered()))
	order = append(order, first)
	for _, a := range reg.Ordered() {
		if a.Name() != preferred {
			order = append(order, a)
		}
	}
	return order, nil
}
