package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/apperror"
)

func (s *Server) handleCreateOrder(c *gin.Context) {
	userID := currentUserID(c)

	var req api.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid order payload")
		return
	}
	if len(req.Items) == 0 {
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Order has no items")
		return
	}
	switch req.PaymentMethod {
	case api.PaymentWallet, api.PaymentQPay, api.PaymentCash:
	default:
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Unsupported payment method")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Recompute the total from the catalog; the client's figure is not
	// trusted.
	total := decimal.Zero
	for _, it := range req.Items {
		p, ok := s.products[it.ProductID]
		if !ok {
			respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Unknown product in order")
			return
		}
		if it.Quantity < 1 {
			respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid item quantity")
			return
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	if !total.Equal(req.Total) {
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Order total mismatch")
		return
	}

	u := s.usersByID[userID]

	status := api.PaymentStatePending
	if req.PaymentMethod == api.PaymentWallet {
		if u.Wallet.LessThan(total) {
			respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Insufficient wallet balance")
			return
		}
		u.Wallet = u.Wallet.Sub(total)
		status = api.PaymentStatePaid
	}

	o := &order{
		ID:            uuid.NewString(),
		Number:        fmt.Sprintf("PS-%d-%s", time.Now().Unix(), strings.ToUpper(uuid.NewString()[:4])),
		UserID:        userID,
		Items:         req.Items,
		Shipping:      req.Shipping,
		Method:        req.PaymentMethod,
		Total:         total,
		PaymentStatus: status,
		CreatedAt:     time.Now(),
	}
	s.orders[o.ID] = o

	s.logger.Info("order created",
		zap.String("order_number", o.Number),
		zap.String("user_id", userID),
		zap.String("payment_method", string(o.Method)),
	)

	respondSuccess(c, http.StatusCreated, "Order created", api.CreateOrderResponse{
		OrderID:     o.ID,
		OrderNumber: o.Number,
	})
}

func (s *Server) handleCreateInvoice(c *gin.Context) {
	o, ok := s.ownedOrder(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if o.Method != api.PaymentQPay {
		respondError(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Order is not payable by QPay")
		return
	}
	if o.InvoiceID == "" {
		o.InvoiceID = uuid.NewString()
	}

	qrText := fmt.Sprintf("QPAY:%s:%s", o.Number, o.Total.String())
	respondSuccess(c, http.StatusCreated, "Invoice created", api.Invoice{
		InvoiceID: o.InvoiceID,
		QRText:    qrText,
		QRImage:   "data:image/png;base64,iVBORw0KGgo=",
		Deeplinks: []api.BankDeeplink{
			{Name: "Khan Bank", Link: "khanbank://q?qPay_QRcode=" + qrText},
			{Name: "TDB", Link: "tdbbank://q?qPay_QRcode=" + qrText},
		},
	})
}

func (s *Server) handlePaymentStatus(c *gin.Context) {
	o, ok := s.ownedOrder(c)
	if !ok {
		return
	}

	s.mu.Lock()
	if o.PaymentStatus == api.PaymentStatePending {
		o.Polls++
		if s.cfg.PaidAfterPolls > 0 && o.Polls >= s.cfg.PaidAfterPolls {
			o.PaymentStatus = api.PaymentStatePaid
		}
	}
	status := o.PaymentStatus
	s.mu.Unlock()

	respondSuccess(c, http.StatusOK, "", api.PaymentStatusResponse{PaymentStatus: status})
}

// handleMarkPaid is the out-of-band settlement hook: it plays the role of the
// gateway's webhook so demos and tests can confirm a payment on demand.
func (s *Server) handleMarkPaid(c *gin.Context) {
	o, ok := s.ownedOrder(c)
	if !ok {
		return
	}

	s.mu.Lock()
	o.PaymentStatus = api.PaymentStatePaid
	s.mu.Unlock()

	respondSuccess(c, http.StatusOK, "Order marked paid", api.PaymentStatusResponse{
		PaymentStatus: api.PaymentStatePaid,
	})
}

func (s *Server) ownedOrder(c *gin.Context) (*order, bool) {
	s.mu.Lock()
	o, ok := s.orders[c.Param("id")]
	s.mu.Unlock()

	if !ok || o.UserID != currentUserID(c) {
		respondError(c, http.StatusNotFound, apperror.CodeNotFound, "Order not found")
		return nil, false
	}
	return o, true
}
