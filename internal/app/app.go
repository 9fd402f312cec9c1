package app

import (
	"context"

	"go.uber.org/zap"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/cart"
	"go-printshop-storefront/internal/checkout"
	"go-printshop-storefront/internal/config"
	"go-printshop-storefront/internal/notify"
	"go-printshop-storefront/internal/session"
	"go-printshop-storefront/internal/storage"
	"go-printshop-storefront/internal/wishlist"
)

// Engine is the assembled storefront client: the three stores plus the API
// client, constructed once and injected explicitly.
type Engine struct {
	API      *api.Client
	Session  *session.Store
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Notifier notify.Notifier

	cfg    config.Config
	logger *zap.Logger
}

// New wires the engine. Session changes fan out to the cart (namespace
// switch) and the wishlist (load on login, forced empty on logout).
func New(cfg config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var store storage.Store
	if cfg.RedisAddr != "" {
		rdb, err := storage.ConnectRedisWithRetry(cfg.RedisAddr, 5, logger)
		if err != nil {
			return nil, err
		}
		store = storage.NewRedis(rdb)
	} else {
		store = storage.NewMemory()
	}

	// The client asks the session store for the bearer token; the session
	// store does not exist yet at client construction, so bind it through a
	// closure.
	var sess *session.Store
	client := api.NewClient(cfg.BackendURL, api.TokenFunc(func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	}), api.WithLogger(logger))

	sess = session.NewStore(session.Deps{
		API:     client,
		Storage: store,
		Logger:  logger,
	})

	cartStore := cart.NewStore(store, logger)
	wishlistStore := wishlist.NewStore(client, logger)

	sess.OnChange(func(u *api.User) {
		ctx := context.Background()
		if u == nil {
			cartStore.SetUser(ctx, "")
		} else {
			cartStore.SetUser(ctx, u.ID)
		}
		wishlistStore.HandleSessionChange(ctx, u)
	})

	return &Engine{
		API:      client,
		Session:  sess,
		Cart:     cartStore,
		Wishlist: wishlistStore,
		Notifier: notify.NewZapNotifier(logger),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Restore picks up any persisted session at startup.
func (e *Engine) Restore(ctx context.Context) {
	e.Session.Restore(ctx)
}

// NewCheckout starts a fresh checkout wizard over the current cart and
// session. onPaid runs after a confirmed qpay payment (the order-history
// redirect in a UI).
func (e *Engine) NewCheckout(onPaid func()) *checkout.Workflow {
	return checkout.NewWorkflow(checkout.Deps{
		API:      e.API,
		Cart:     e.Cart,
		Session:  e.Session,
		Notifier: e.Notifier,
		Logger:   e.logger,
		Poll: checkout.PollerConfig{
			Interval:      e.cfg.PollInterval,
			MaxWait:       e.cfg.PollMaxWait,
			RedirectDelay: e.cfg.RedirectDelay,
		},
		OnPaid: onPaid,
	})
}
