package orchestrator_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-router/internal/fee"
	"github.com/yourorg/payment-router/internal/metrics"
	"github.com/yourorg/payment-router/internal/orchestrator"
	"github.com/yourorg/payment-router/internal/payment"
	"github.com/yourorg/payment-router/internal/provider"
	"github.com/yourorg/payment-router/internal/provider/mock"
	"github.com/yourorg/payment-router/internal/routing"
)

func newOrchestrator(t *testing.T, fast, secure *mock.Adapter) *orchestrator.Orchestrator {
	t.Helper()
	reg, err := provider.NewRegistry(fast, secure)
	require.NoError(t, err)
	return orchestrator.New(
		reg,
		routing.DefaultPolicy(),
		fee.NewCalculator(fee.DefaultSchedules()),
		payment.NewSequence(),
		zerolog.Nop(),
	)
}

func request(t *testing.T, amount string) payment.Request {
	t.Helper()
	v, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	return payment.Request{Amount: v, Currency: "BRL"}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	expected, err := decimal.NewFromString(want)
	require.NoError(t, err)
	assert.True(t, expected.Equal(got), "%s: got %s, want %s", msg, got, want)
}

func declining(name string) *mock.Adapter {
	a := mock.New(name)
	a.ProcessFunc = func(ctx context.Context, req payment.Request) (provider.Result, error) {
		return provider.Result{Approved: false}, nil
	}
	return a
}

func failing(name string) *mock.Adapter {
	a := mock.New(name)
	a.ProcessFunc = func(ctx context.Context, req payment.Request) (provider.Result, error) {
		return provider.Result{}, fmt.Errorf("%w: connection refused", provider.ErrUnavailable)
	}
	return a
}

func TestProcess_PreferredProviderSucceeds(t *testing.T) {
	t.Run("small amount routed to FastPay", func(t *testing.T) {
		fast, secure := mock.New("FastPay"), mock.New("SecurePay")
		orch := newOrchestrator(t, fast, secure)

		resp, err := orch.Process(context.Background(), request(t, "50.00"))
		require.NoError(t, err)

		assert.Equal(t, payment.StatusApproved, resp.Status)
		assert.Equal(t, "FastPay", resp.Provider)
		assert.Equal(t, int64(1), resp.ID)
		assert.NotEmpty(t, resp.ExternalID)
		assertDecimal(t, "50.00", resp.GrossAmount, "gross")
		assertDecimal(t, "1.74", resp.Fee, "fee")
		assertDecimal(t, "48.26", resp.NetAmount, "net")
		assert.Empty(t, secure.Calls(), "fallback must not run when the preferred provider succeeds")
	})

	t.Run("boundary amount routed to SecurePay", func(t *testing.T) {
		fast, secure := mock.New("FastPay"), mock.New("SecurePay")
		orch := newOrchestrator(t, fast, secure)

		resp, err := orch.Process(context.Background(), request(t, "120.50"))
		require.NoError(t, err)

		assert.Equal(t, payment.StatusApproved, resp.Status)
		assert.Equal(t, "SecurePay", resp.Provider)
		assertDecimal(t, "4.00", resp.Fee, "fee")
		assertDecimal(t, "116.50", resp.NetAmount, "net")
		assert.Empty(t, fast.Calls())
	})
}

func TestProcess_FallbackOnProviderError(t *testing.T) {
	fast := failing("FastPay")
	secure := mock.New("SecurePay")
	secure.ProcessFunc = func(ctx context.Context, req payment.Request) (provider.Result, error) {
		return provider.Result{Approved: true, ExternalID: "SP-99999"}, nil
	}
	orch := newOrchestrator(t, fast, secure)

	resp, err := orch.Process(context.Background(), request(t, "50.00"))
	require.NoError(t, err)

	assert.Equal(t, payment.StatusApproved, resp.Status)
	assert.Equal(t, "SecurePay", resp.Provider)
	assert.Equal(t, "SP-99999", resp.ExternalID)
	// Fee follows the provider that actually processed the payment:
	// 50 * 0.0299 + 0.40 = 1.895, banker's rounding to 1.90.
	assertDecimal(t, "1.90", resp.Fee, "fee")
	assertDecimal(t, "48.10", resp.NetAmount, "net")
	assert.Len(t, fast.Calls(), 1, "preferred provider attempted exactly once")
}

func TestProcess_FallbackOnBusinessDecline(t *testing.T) {
	fast := declining("FastPay")
	secure := mock.New("SecurePay")
	orch := newOrchestrator(t, fast, secure)

	resp, err := orch.Process(context.Background(), request(t, "50.00"))
	require.NoError(t, err)

	assert.Equal(t, payment.StatusApproved, resp.Status)
	assert.Equal(t, "SecurePay", resp.Provider)
	assert.Len(t, fast.Calls(), 1)
	assert.Len(t, secure.Calls(), 1)
}

func TestProcess_AllProvidersExhausted(t *testing.T) {
	t.Run("failed response enumerates attempt order", func(t *testing.T) {
		orch := newOrchestrator(t, failing("FastPay"), declining("SecurePay"))

		resp, err := orch.Process(context.Background(), request(t, "50.00"))
		require.NoError(t, err, "exhaustion is a business failure, not an error")

		assert.Equal(t, payment.StatusFailed, resp.Status)
		assert.Equal(t, "FastPay,SecurePay", resp.Provider)
		assert.Empty(t, resp.ExternalID)
		assert.True(t, resp.Fee.IsZero(), "fee = %s", resp.Fee)
		assert.True(t, resp.NetAmount.IsZero(), "net = %s", resp.NetAmount)
		assert.Equal(t, int64(1), resp.ID, "id is allocated even on total failure")
	})

	t.Run("attempt order follows the preferred provider", func(t *testing.T) {
		orch := newOrchestrator(t, failing("FastPay"), failing("SecurePay"))

		resp, err := orch.Process(context.Background(), request(t, "150.00"))
		require.NoError(t, err)
		assert.Equal(t, "SecurePay,FastPay", resp.Provider)
	})

	t.Run("counter still advances after a failed payment", func(t *testing.T) {
		fast := failing("FastPay")
		secure := declining("SecurePay")
		orch := newOrchestrator(t, fast, secure)

		first, err := orch.Process(context.Background(), request(t, "50.00"))
		require.NoError(t, err)

		secure.ProcessFunc = nil // approve from now on
		second, err := orch.Process(context.Background(), request(t, "50.00"))
		require.NoError(t, err)

		assert.Equal(t, first.ID+1, second.ID)
	})
}

func TestProcess_Cancellation(t *testing.T) {
	t.Run("canceled before processing", func(t *testing.T) {
		fast, secure := mock.New("FastPay"), mock.New("SecurePay")
		orch := newOrchestrator(t, fast, secure)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := orch.Process(ctx, request(t, "50.00"))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, fast.Calls())
		assert.Empty(t, secure.Calls())
	})

	t.Run("canceled mid-attempt skips remaining providers", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		fast := mock.New("FastPay")
		fast.ProcessFunc = func(ctx context.Context, req payment.Request) (provider.Result, error) {
			cancel()
			return provider.Result{}, ctx.Err()
		}
		secure := mock.New("SecurePay")
		orch := newOrchestrator(t, fast, secure)

		_, err := orch.Process(ctx, request(t, "50.00"))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, secure.Calls(), "cancellation must not trigger fallback")
	})
}

func TestProcess_ConcurrentIDsAreDistinct(t *testing.T) {
	const goroutines = 40

	orch := newOrchestrator(t, mock.New("FastPay"), mock.New("SecurePay"))

	var wg sync.WaitGroup
	ids := make(chan int64, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			amount := "50.00"
			if n%2 == 0 {
				amount = "150.00"
			}
			resp, err := orch.Process(context.Background(), request(t, amount))
			assert.NoError(t, err)
			ids <- resp.ID
		}(g)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, goroutines)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, goroutines)
}

func TestProcess_RecordsMetrics(t *testing.T) {
	// Metrics are registered globally via promauto, so measure the
	// increment rather than the absolute value.
	approved := metrics.PaymentsTotal().WithLabelValues(payment.StatusApproved, "FastPay")
	before := testutil.ToFloat64(approved)

	orch := newOrchestrator(t, mock.New("FastPay"), mock.New("SecurePay"))
	_, err := orch.Process(context.Background(), request(t, "50.00"))
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(approved))
}
