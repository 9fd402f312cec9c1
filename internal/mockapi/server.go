package mockapi

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-printshop-storefront/internal/api"
)

// Server is an in-memory implementation of the storefront backend contract:
// auth, wishlist, orders, QPay invoice simulation and wallet top-up. It backs
// the demo binary and the engine's integration tests; it is a test double,
// not a product.
type Server struct {
	mu sync.Mutex

	cfg     Config
	logger  *zap.Logger
	limiter *rate.Limiter

	usersByEmail map[string]*user
	usersByID    map[string]*user
	products     map[string]api.Product
	wishlists    map[string][]wishlistItem
	orders       map[string]*order
}

type Config struct {
	JWTSecret string
	// PaidAfterPolls flips a qpay order to paid once its status has been
	// polled this many times. Zero keeps orders pending until the mark-paid
	// hook is called.
	PaidAfterPolls int
	RateLimit      rate.Limit
	RateBurst      int
}

func (c Config) withDefaults() Config {
	if c.JWTSecret == "" {
		c.JWTSecret = "mockapi-secret"
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 50
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 100
	}
	return c
}

type user struct {
	ID           string
	Name         string
	Email        string
	Role         api.Role
	Wallet       decimal.Decimal
	passwordHash []byte
}

type wishlistItem struct {
	ID      string
	Product api.Product
}

type order struct {
	ID            string
	Number        string
	UserID        string
	Items         []api.OrderItemInput
	Shipping      api.ShippingInfo
	Method        api.PaymentMethod
	Total         decimal.Decimal
	PaymentStatus api.PaymentState
	InvoiceID     string
	Polls         int
	CreatedAt     time.Time
}

func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:          cfg,
		logger:       logger,
		limiter:      rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		usersByEmail: make(map[string]*user),
		usersByID:    make(map[string]*user),
		products:     make(map[string]api.Product),
		wishlists:    make(map[string][]wishlistItem),
		orders:       make(map[string]*order),
	}
	s.seed()
	return s
}

// Router builds the gin engine with the full route table. Extra middleware
// (CORS in cmd/mockapi) has to be passed here: gin fixes each route's handler
// chain at registration time, so anything attached after Router returns never
// runs for the registered routes.
func (s *Server) Router(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.rateLimitMiddleware())
	r.Use(middleware...)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/auth/login", s.handleLogin)
		apiGroup.POST("/auth/register", s.handleRegister)
		apiGroup.GET("/products", s.handleListProducts)

		authed := apiGroup.Group("")
		authed.Use(s.authMiddleware())
		{
			authed.GET("/auth/me", s.handleMe)

			authed.GET("/wishlist", s.handleWishlistList)
			authed.POST("/wishlist/:productId", s.handleWishlistAdd)
			authed.DELETE("/wishlist/:productId", s.handleWishlistRemove)

			authed.POST("/orders", s.handleCreateOrder)
			authed.POST("/orders/:id/invoice", s.handleCreateInvoice)
			authed.GET("/orders/:id/payment-status", s.handlePaymentStatus)
			authed.POST("/orders/:id/mark-paid", s.handleMarkPaid)

			authed.POST("/wallet/topup", s.handleTopUp)
		}
	}

	return r
}

func (s *Server) userResponse(u *user) api.User {
	return api.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		WalletBalance: u.Wallet,
	}
}
