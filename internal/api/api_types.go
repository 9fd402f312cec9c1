package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          Role            `json:"role"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
}

type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// ==================== AUTH ====================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ==================== WISHLIST ====================

// WishlistEntry is the canonical client-side shape. The backend is
// inconsistent about the product field: list responses populate the full
// object while mutation responses may return the bare product id. Both decode
// into the same struct here so membership logic has exactly one check.
type WishlistEntry struct {
	ID        string
	ProductID string
	Product   *Product // nil when the server sent a bare id
}

func (e *WishlistEntry) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID      string          `json:"id"`
		Product json.RawMessage `json:"product"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	e.ID = raw.ID
	e.Product = nil
	e.ProductID = ""

	if len(raw.Product) == 0 || string(raw.Product) == "null" {
		return nil
	}

	if raw.Product[0] == '"' {
		return json.Unmarshal(raw.Product, &e.ProductID)
	}

	var p Product
	if err := json.Unmarshal(raw.Product, &p); err != nil {
		return err
	}
	e.Product = &p
	e.ProductID = p.ID
	return nil
}

// ==================== ORDERS & PAYMENT ====================

type ShippingInfo struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
	Notes   string `json:"notes"`
}

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type PaymentMethod string

const (
	PaymentWallet PaymentMethod = "wallet"
	PaymentQPay   PaymentMethod = "qpay"
	PaymentCash   PaymentMethod = "cash"
)

type CreateOrderRequest struct {
	Items         []OrderItemInput `json:"items"`
	Shipping      ShippingInfo     `json:"shipping"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	Total         decimal.Decimal  `json:"total"`
}

type CreateOrderResponse struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

type BankDeeplink struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Invoice is the QPay-side record tied to one order: the QR payload the user
// scans plus bank app deep links.
type Invoice struct {
	InvoiceID string         `json:"invoiceId"`
	QRImage   string         `json:"qrImage"`
	QRText    string         `json:"qrText"`
	Deeplinks []BankDeeplink `json:"deeplinks"`
}

type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStatePaid    PaymentState = "paid"
)

type PaymentStatusResponse struct {
	PaymentStatus PaymentState `json:"paymentStatus"`
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
