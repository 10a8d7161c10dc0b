// Package fee computes provider-specific processing fees. The calculator
// is a pure function of (provider name, gross amount); it holds no state
// and has no failure modes besides being asked about a provider that was
// never registered, which is a wiring bug and panics.
package fee

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Schedule describes one provider's fee rule: a percentage of the gross
// amount plus a fixed component, rounded to 2 fractional digits with
// banker's rounding (round-half-to-even).
type Schedule struct {
	Rate  decimal.Decimal
	Fixed decimal.Decimal
}

// Calculator maps provider names to fee schedules. The schedule set is
// fixed at construction, mirroring the fixed provider registry.
type Calculator struct {
	schedules map[string]Schedule
}

// NewCalculator creates a Calculator for the given schedules.
func NewCalculator(schedules map[string]Schedule) *Calculator {
	if len(schedules) == 0 {
		panic("fee: schedules cannot be empty")
	}
	return &Calculator{schedules: schedules}
}

// DefaultSchedules returns the fee rules for the registered providers:
// FastPay charges 3.49% of gross, SecurePay 2.99% plus a 0.40 fixed fee.
func DefaultSchedules() map[string]Schedule {
	return map[string]Schedule{
		"FastPay": {
			Rate:  decimal.NewFromFloat(0.0349),
			Fixed: decimal.Zero,
		},
		"SecurePay": {
			Rate:  decimal.NewFromFloat(0.0299),
			Fixed: decimal.NewFromFloat(0.40),
		},
	}
}

// Fee returns the fee the named provider charges on gross, rounded
// half-to-even to 2 digits. Panics on an unknown provider name: the
// provider set is fixed at startup, so an unknown name here means the
// registry and the schedule table disagree.
func (c *Calculator) Fee(providerName string, gross decimal.Decimal) decimal.Decimal {
	sched, ok := c.schedules[providerName]
	if !ok {
		panic(fmt.Sprintf("fee: no schedule for provider %q", providerName))
	}
	return gross.Mul(sched.Rate).Add(sched.Fixed).RoundBank(2)
}

// Net returns gross minus the named provider's fee, with the same
// rounding rule applied to the result.
func (c *Calculator) Net(providerName string, gross decimal.Decimal) decimal.Decimal {
	return gross.Sub(c.Fee(providerName, gross)).RoundBank(2)
}
