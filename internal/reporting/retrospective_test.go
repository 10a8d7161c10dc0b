package reporting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-router/internal/payment"
	"github.com/yourorg/payment-router/internal/reporting"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func TestRecorder_EmptyRetrospective(t *testing.T) {
	report := reporting.NewRecorder().Retrospective()

	assert.Zero(t, report.TotalRequests)
	assert.Zero(t, report.ApprovedPayments)
	assert.Zero(t, report.FailedPayments)
	assert.Empty(t, report.GrossByCurrency)
	assert.Empty(t, report.ProviderUsage)
}

func TestRecorder_Retrospective(t *testing.T) {
	rec := reporting.NewRecorder()

	rec.Record(payment.Response{
		ID: 1, Status: payment.StatusApproved, Provider: "FastPay",
		GrossAmount: d(t, "50.00"), Fee: d(t, "1.74"), NetAmount: d(t, "48.26"),
	}, "BRL")
	rec.Record(payment.Response{
		ID: 2, Status: payment.StatusApproved, Provider: "SecurePay",
		GrossAmount: d(t, "120.50"), Fee: d(t, "4.00"), NetAmount: d(t, "116.50"),
	}, "BRL")
	rec.Record(payment.Response{
		ID: 3, Status: payment.StatusApproved, Provider: "SecurePay",
		GrossAmount: d(t, "200.00"), Fee: d(t, "6.38"), NetAmount: d(t, "193.62"),
	}, "USD")
	rec.Record(payment.Response{
		ID: 4, Status: payment.StatusFailed, Provider: "FastPay,SecurePay",
		GrossAmount: d(t, "75.00"),
	}, "BRL")

	report := rec.Retrospective()

	assert.Equal(t, 4, report.TotalRequests)
	assert.Equal(t, 3, report.ApprovedPayments)
	assert.Equal(t, 1, report.FailedPayments)
	assert.True(t, d(t, "370.50").Equal(report.TotalGrossApproved), "gross = %s", report.TotalGrossApproved)
	assert.True(t, d(t, "12.12").Equal(report.TotalFees), "fees = %s", report.TotalFees)
	assert.True(t, d(t, "170.50").Equal(report.GrossByCurrency["BRL"]))
	assert.True(t, d(t, "200.00").Equal(report.GrossByCurrency["USD"]))
	assert.Equal(t, map[string]int{"FastPay": 1, "SecurePay": 2}, report.ProviderUsage)
	assert.False(t, report.DateTo.Before(report.DateFrom))
}
