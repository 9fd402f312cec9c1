package checkout_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/checkout"
	"go-printshop-storefront/internal/notify"
)

// submitQPay drives a workflow through a qpay order and returns the running
// poller.
func submitQPay(t *testing.T, a *fakeCheckoutAPI, poll checkout.PollerConfig, onPaid func()) (*fixture, *checkout.Poller) {
	t.Helper()

	f := newFixture(a, signedInSession(100000), poll, onPaid)
	f.fillCart(40000)
	assert.True(t, f.wf.SubmitShipping(validShipping()).Success)

	res := f.wf.Submit(context.Background(), api.PaymentQPay)
	assert.True(t, res.Success)
	assert.NotNil(t, res.Poller)
	return f, res.Poller
}

func pendingThenPaid(after int64) func(context.Context, string) (api.PaymentStatusResponse, error) {
	var n atomic.Int64
	return func(context.Context, string) (api.PaymentStatusResponse, error) {
		if n.Add(1) > after {
			return api.PaymentStatusResponse{PaymentStatus: api.PaymentStatePaid}, nil
		}
		return api.PaymentStatusResponse{PaymentStatus: api.PaymentStatePending}, nil
	}
}

func TestPoller_ReachesPaidExactlyOnce(t *testing.T) {
	var paidCallbacks atomic.Int64
	a := &fakeCheckoutAPI{paymentStatusFunc: pendingThenPaid(2)}

	_, p := submitQPay(t, a, checkout.PollerConfig{
		Interval:      10 * time.Millisecond,
		MaxWait:       5 * time.Second,
		RedirectDelay: 10 * time.Millisecond,
	}, func() { paidCallbacks.Add(1) })
	defer p.Cancel()

	assert.Eventually(t, func() bool {
		return p.State() == checkout.PollPaid
	}, 2*time.Second, 5*time.Millisecond)

	// The loop has stopped: no leftover tick may fire a duplicate transition
	// or another status call.
	<-p.Done()
	calls := a.statusCalls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, a.statusCalls.Load())
	assert.Equal(t, int64(3), calls, "pending, pending, paid")

	assert.Eventually(t, func() bool {
		return paidCallbacks.Load() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int64(1), paidCallbacks.Load(), "redirect callback fires once")
}

func TestPoller_TeardownStopsStatusCalls(t *testing.T) {
	a := &fakeCheckoutAPI{} // always pending

	_, p := submitQPay(t, a, checkout.PollerConfig{
		Interval: 10 * time.Millisecond,
		MaxWait:  5 * time.Second,
	}, nil)

	assert.Eventually(t, func() bool {
		return a.statusCalls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	p.Cancel()
	<-p.Done()

	calls := a.statusCalls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, a.statusCalls.Load(), "no status calls after teardown")
	assert.NotEqual(t, checkout.PollPaid, p.State())
}

func TestPoller_TimeoutThenManualCheck(t *testing.T) {
	var paid atomic.Bool
	a := &fakeCheckoutAPI{
		paymentStatusFunc: func(context.Context, string) (api.PaymentStatusResponse, error) {
			if paid.Load() {
				return api.PaymentStatusResponse{PaymentStatus: api.PaymentStatePaid}, nil
			}
			return api.PaymentStatusResponse{PaymentStatus: api.PaymentStatePending}, nil
		},
	}

	f, p := submitQPay(t, a, checkout.PollerConfig{
		Interval:      10 * time.Millisecond,
		MaxWait:       40 * time.Millisecond,
		RedirectDelay: 5 * time.Millisecond,
	}, nil)
	defer p.Cancel()

	assert.Eventually(t, func() bool {
		return p.State() == checkout.PollTimedOut
	}, 2*time.Second, 5*time.Millisecond)
	<-p.Done()

	// Automatic polling is over but the manual action still works.
	automatic := a.statusCalls.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, automatic, a.statusCalls.Load())

	assert.False(t, p.CheckNow(context.Background()), "still pending")

	paid.Store(true)
	assert.True(t, p.CheckNow(context.Background()))
	assert.Equal(t, checkout.PollPaid, p.State())

	// Exactly one "payment received" banner despite timeout + manual checks.
	success := 0
	for _, n := range f.notifier.All() {
		if n.Level == notify.LevelSuccess && n.Message == "Payment received, thank you" {
			success++
		}
	}
	assert.Equal(t, 1, success)
}

func TestPoller_ManualCheckIdempotentAfterPaid(t *testing.T) {
	a := &fakeCheckoutAPI{
		paymentStatusFunc: func(context.Context, string) (api.PaymentStatusResponse, error) {
			return api.PaymentStatusResponse{PaymentStatus: api.PaymentStatePaid}, nil
		},
	}

	// Long interval: only the manual path runs.
	_, p := submitQPay(t, a, checkout.PollerConfig{
		Interval: time.Hour,
		MaxWait:  time.Hour,
	}, nil)
	defer p.Cancel()

	ctx := context.Background()
	assert.True(t, p.CheckNow(ctx))
	assert.True(t, p.CheckNow(ctx), "repeat check converges on the same paid state")

	assert.Equal(t, int64(1), a.statusCalls.Load(), "no extra status call once paid")
	assert.Equal(t, 1, p.Checks())
}

func TestPoller_CheckCounterFeedsUI(t *testing.T) {
	a := &fakeCheckoutAPI{} // pending forever

	_, p := submitQPay(t, a, checkout.PollerConfig{
		Interval: 10 * time.Millisecond,
		MaxWait:  5 * time.Second,
	}, nil)
	defer p.Cancel()

	assert.Eventually(t, func() bool {
		return p.Checks() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}
