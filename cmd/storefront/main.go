package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/app"
	"go-printshop-storefront/internal/config"
	"go-printshop-storefront/internal/mockapi"
)

// Scripted demo: sign in as the seeded customer, fill a cart, place a wallet
// order, then place a qpay order and wait for the simulated payment.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	engine, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("engine init failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	engine.Restore(ctx)

	if res := engine.Session.Login(ctx, mockapi.SeedUserEmail, mockapi.SeedPassword); !res.Success {
		logger.Fatal("login failed", zap.String("message", res.Message))
	}
	user, _ := engine.Session.Current()
	logger.Info("signed in",
		zap.String("name", user.Name),
		zap.String("wallet", user.WalletBalance.String()),
	)

	products, err := engine.API.Products(ctx)
	if err != nil || len(products) < 2 {
		logger.Fatal("catalog fetch failed", zap.Error(err))
	}

	engine.Cart.Add(ctx, products[0], 2)
	engine.Cart.Add(ctx, products[1], 1)
	logger.Info("cart ready",
		zap.Int64("count", engine.Cart.Count()),
		zap.String("total", engine.Cart.Total().String()),
	)

	shipping := api.ShippingInfo{
		Name:    user.Name,
		Phone:   "99112233",
		Email:   user.Email,
		Address: "Sukhbaatar district, Ulaanbaatar",
		Notes:   "Call on arrival",
	}

	// Wallet order.
	wf := engine.NewCheckout(nil)
	if res := wf.SubmitShipping(shipping); !res.Success {
		logger.Fatal("shipping step failed", zap.String("message", res.Message))
	}
	res := wf.Submit(ctx, api.PaymentWallet)
	if !res.Success {
		logger.Fatal("wallet order failed", zap.String("message", res.Message))
	}
	user, _ = engine.Session.Current()
	logger.Info("wallet order placed",
		zap.String("order_id", res.OrderID),
		zap.String("wallet_after", user.WalletBalance.String()),
	)

	// QPay order.
	engine.Cart.Add(ctx, products[0], 1)
	paid := make(chan struct{})
	wf = engine.NewCheckout(func() { close(paid) })
	if res := wf.SubmitShipping(shipping); !res.Success {
		logger.Fatal("shipping step failed", zap.String("message", res.Message))
	}
	res = wf.Submit(ctx, api.PaymentQPay)
	if !res.Success {
		logger.Fatal("qpay order failed", zap.String("message", res.Message))
	}
	logger.Info("qpay order placed, scan to pay",
		zap.String("order_id", res.OrderID),
		zap.String("qr", res.Invoice.QRText),
	)

	defer res.Poller.Cancel()
	select {
	case <-paid:
		logger.Info("payment confirmed",
			zap.Int("checks", res.Poller.Checks()),
		)
	case <-ctx.Done():
		logger.Warn("payment not confirmed in time")
	}
}
