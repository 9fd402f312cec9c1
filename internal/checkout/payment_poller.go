package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/notify"
)

type PollState int

const (
	PollAwaiting PollState = iota
	PollPaid
	PollTimedOut
)

func (s PollState) String() string {
	switch s {
	case PollAwaiting:
		return "awaiting_payment"
	case PollPaid:
		return "paid"
	case PollTimedOut:
		return "timed_out"
	}
	return "unknown"
}

type PollerConfig struct {
	Interval time.Duration
	// MaxWait bounds the automatic polling; after it expires only the manual
	// check remains.
	MaxWait time.Duration
	// RedirectDelay is how long after a confirmed payment the OnPaid callback
	// fires.
	RedirectDelay time.Duration
}

func (c PollerConfig) withDefaults() PollerConfig {
	if c.Interval <= 0 {
		c.Interval = 3 * time.Second
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 2 * time.Minute
	}
	if c.RedirectDelay <= 0 {
		c.RedirectDelay = 2 * time.Second
	}
	return c
}

// Poller watches one order's payment status until it is paid, the wait window
// expires, or the owner cancels. It is an explicit handle: whoever leaves the
// payment screen must call Cancel, which stops the ticker, the window timer
// and the pending redirect. No status calls happen after teardown.
type Poller struct {
	api      API
	orderID  string
	cfg      PollerConfig
	notifier notify.Notifier
	logger   *zap.Logger
	onPaid   func()

	mu            sync.Mutex
	state         PollState
	checks        int
	cancelled     bool
	redirectTimer *time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

type pollerDeps struct {
	api      API
	orderID  string
	cfg      PollerConfig
	notifier notify.Notifier
	logger   *zap.Logger
	onPaid   func()
}

func startPoller(deps pollerDeps) *Poller {
	p := &Poller{
		api:      deps.api,
		orderID:  deps.orderID,
		cfg:      deps.cfg,
		notifier: deps.notifier,
		logger:   deps.logger,
		onPaid:   deps.onPaid,
		done:     make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(ctx)
	return p
}

func (p *Poller) OrderID() string { return p.orderID }

func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Checks is the number of status requests issued so far, automatic and
// manual. Shown to the user as "checking… N".
func (p *Poller) Checks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checks
}

// Done is closed once the automatic polling loop has exited (paid, timed out
// or cancelled). Manual checks may still run after that.
func (p *Poller) Done() <-chan struct{} { return p.done }

// CheckNow is the manual "check payment" action. Idempotent, safe alongside
// the automatic timer: both converge on the same paid transition, which fires
// at most once.
func (p *Poller) CheckNow(ctx context.Context) bool {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return false
	}
	if p.state == PollPaid {
		p.mu.Unlock()
		return true
	}
	p.mu.Unlock()

	return p.check(ctx)
}

// Cancel tears the poller down: automatic loop, wait window and any pending
// redirect. Safe to call more than once and after the loop has finished.
func (p *Poller) Cancel() {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	timer := p.redirectTimer
	p.mu.Unlock()

	p.cancel()
	if timer != nil {
		timer.Stop()
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	window := time.NewTimer(p.cfg.MaxWait)
	defer window.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-window.C:
			p.markTimedOut()
			return
		case <-ticker.C:
			if p.check(ctx) {
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// check issues one status request and reports whether payment is confirmed.
func (p *Poller) check(ctx context.Context) bool {
	p.mu.Lock()
	if p.state == PollPaid || p.cancelled {
		p.mu.Unlock()
		return p.state == PollPaid
	}
	p.checks++
	attempt := p.checks
	p.mu.Unlock()

	resp, err := p.api.PaymentStatus(ctx, p.orderID)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("payment status check failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return false
	}

	if resp.PaymentStatus == api.PaymentStatePaid {
		p.markPaid()
		return true
	}
	return false
}

func (p *Poller) markPaid() {
	p.mu.Lock()
	if p.state == PollPaid || p.cancelled {
		p.mu.Unlock()
		return
	}
	p.state = PollPaid
	if p.onPaid != nil {
		p.redirectTimer = time.AfterFunc(p.cfg.RedirectDelay, p.onPaid)
	}
	p.mu.Unlock()

	p.cancel()
	p.logger.Info("payment confirmed", zap.String("order_id", p.orderID))
	p.notifier.Notify(notify.LevelSuccess, "Payment received, thank you")
}

func (p *Poller) markTimedOut() {
	p.mu.Lock()
	if p.state != PollAwaiting || p.cancelled {
		p.mu.Unlock()
		return
	}
	p.state = PollTimedOut
	p.mu.Unlock()

	p.notifier.Notify(notify.LevelInfo, "Payment window expired, tap check again after paying")
}
