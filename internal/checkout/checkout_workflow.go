package checkout

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/apperror"
	"go-printshop-storefront/internal/cart"
	"go-printshop-storefront/internal/notify"
)

type State int

const (
	StateShipping State = iota
	StatePayment
	StateSubmitting
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateShipping:
		return "shipping"
	case StatePayment:
		return "payment"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	}
	return "unknown"
}

// API is the slice of the backend contract the workflow depends on.
type API interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (api.CreateOrderResponse, error)
	CreateInvoice(ctx context.Context, orderID string) (api.Invoice, error)
	PaymentStatus(ctx context.Context, orderID string) (api.PaymentStatusResponse, error)
}

// Session is what the workflow needs from the identity store.
type Session interface {
	Current() (api.User, bool)
	UpdateWalletBalance(balance decimal.Decimal)
}

type Result struct {
	Success bool
	Message string
	OrderID string
	Invoice *api.Invoice
	// Poller is non-nil only for a successful qpay submission; the caller owns
	// it and must Cancel it when the payment screen goes away.
	Poller *Poller
}

// Workflow is the two-step checkout wizard: shipping info, then payment
// method, then a single order submission. A qpay submission hands off to the
// payment poller.
type Workflow struct {
	mu         sync.Mutex
	state      State
	shipping   api.ShippingInfo
	submitting bool

	api      API
	cart     *cart.Store
	session  Session
	notifier notify.Notifier
	logger   *zap.Logger
	validate *validator.Validate
	pollCfg  PollerConfig
	onPaid   func()
}

type Deps struct {
	API      API
	Cart     *cart.Store
	Session  Session
	Notifier notify.Notifier
	Logger   *zap.Logger
	Poll     PollerConfig
	// OnPaid runs shortly after a qpay payment is confirmed, the point where
	// the UI redirects to order history.
	OnPaid func()
}

func NewWorkflow(deps Deps) *Workflow {
	if deps.API == nil {
		panic("checkout: api cannot be nil")
	}
	if deps.Cart == nil {
		panic("checkout: cart cannot be nil")
	}
	if deps.Session == nil {
		panic("checkout: session cannot be nil")
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewZapNotifier(nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Workflow{
		state:    StateShipping,
		api:      deps.API,
		cart:     deps.Cart,
		session:  deps.Session,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		validate: validator.New(),
		pollCfg:  deps.Poll.withDefaults(),
		onPaid:   deps.OnPaid,
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SubmitShipping validates the required fields and advances to the payment
// step. No network call. Re-submitting from the payment step just updates the
// stored shipping info (the wizard's back button).
func (w *Workflow) SubmitShipping(info api.ShippingInfo) Result {
	if err := w.validate.Struct(info); err != nil {
		return Result{Success: false, Message: "Please fill in all required shipping fields"}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateSucceeded {
		return Result{Success: false, Message: "Order already placed"}
	}
	if w.state == StateSubmitting {
		return Result{Success: false, Message: "Order submission already in progress"}
	}

	w.shipping = info
	w.state = StatePayment
	return Result{Success: true}
}

// Submit places the order exactly once per action. Local preconditions (empty
// cart, insufficient wallet) block before any request goes out; a re-submit
// while a call is in flight is rejected.
func (w *Workflow) Submit(ctx context.Context, method api.PaymentMethod) Result {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return Result{Success: false, Message: "Order submission already in progress"}
	}
	switch w.state {
	case StateShipping:
		w.mu.Unlock()
		return Result{Success: false, Message: "Please complete the shipping step first"}
	case StateSucceeded:
		w.mu.Unlock()
		return Result{Success: false, Message: "Order already placed"}
	}
	shipping := w.shipping
	w.submitting = true
	w.state = StateSubmitting
	w.mu.Unlock()

	res := w.submit(ctx, method, shipping)

	w.mu.Lock()
	w.submitting = false
	if res.Success {
		w.state = StateSucceeded
	} else {
		w.state = StatePayment
	}
	w.mu.Unlock()

	if res.Success {
		w.notifier.Notify(notify.LevelSuccess, res.Message)
	} else {
		w.notifier.Notify(notify.LevelError, res.Message)
	}
	return res
}

func (w *Workflow) submit(ctx context.Context, method api.PaymentMethod, shipping api.ShippingInfo) Result {
	items := w.cart.Items()
	if len(items) == 0 {
		return Result{Success: false, Message: "Your cart is empty"}
	}
	total := w.cart.Total()

	if method == api.PaymentWallet {
		user, ok := w.session.Current()
		if !ok {
			return Result{Success: false, Message: "Please sign in to pay with your wallet"}
		}
		if user.WalletBalance.LessThan(total) {
			return Result{Success: false, Message: "Insufficient wallet balance"}
		}
	}

	orderItems := make([]api.OrderItemInput, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, api.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	logger := w.logger.With(zap.String("payment_method", string(method)))

	resp, err := w.api.CreateOrder(ctx, api.CreateOrderRequest{
		Items:         orderItems,
		Shipping:      shipping,
		PaymentMethod: method,
		Total:         total,
	})
	if err != nil {
		logger.Warn("order creation failed", zap.Error(err))
		return Result{Success: false, Message: apperror.UserMessage(err)}
	}
	logger = logger.With(zap.String("order_id", resp.OrderID))

	switch method {
	case api.PaymentWallet:
		if user, ok := w.session.Current(); ok {
			w.session.UpdateWalletBalance(user.WalletBalance.Sub(total))
		}
		w.cart.Clear(ctx)
		logger.Info("order placed, wallet debited")
		return Result{Success: true, Message: "Order placed successfully", OrderID: resp.OrderID}

	case api.PaymentCash:
		// Payment is collected out of band, at delivery.
		w.cart.Clear(ctx)
		logger.Info("order placed, cash on delivery")
		return Result{Success: true, Message: "Order placed successfully", OrderID: resp.OrderID}

	case api.PaymentQPay:
		invoice, err := w.api.CreateInvoice(ctx, resp.OrderID)
		if err != nil {
			// The order exists but is unpaid. The cart stays as-is.
			logger.Warn("invoice creation failed, order remains unpaid", zap.Error(err))
			return Result{
				Success: false,
				Message: apperror.UserMessage(err),
				OrderID: resp.OrderID,
			}
		}
		w.cart.Clear(ctx)
		logger.Info("order placed, awaiting qpay payment", zap.String("invoice_id", invoice.InvoiceID))
		poller := startPoller(pollerDeps{
			api:      w.api,
			orderID:  resp.OrderID,
			cfg:      w.pollCfg,
			notifier: w.notifier,
			logger:   logger,
			onPaid:   w.onPaid,
		})
		return Result{
			Success: true,
			Message: "Order placed, waiting for payment",
			OrderID: resp.OrderID,
			Invoice: &invoice,
			Poller:  poller,
		}
	}

	return Result{Success: false, Message: "Unsupported payment method"}
}
