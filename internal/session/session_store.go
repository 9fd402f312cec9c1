package session

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/apperror"
	"go-printshop-storefront/internal/storage"
)

// tokenKey is the single fixed storage key for the bearer credential.
const tokenKey = "auth_token"

// API is the slice of the backend contract the session store depends on.
type API interface {
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (api.AuthResponse, error)
	Me(ctx context.Context) (api.User, error)
}

// Result is the discriminated outcome of login/register. Expected failures
// (bad credentials, connectivity) never surface as Go errors to the caller.
type Result struct {
	Success bool
	Message string
	User    *api.User
}

// Store holds the current user and bearer token. It is constructed once at
// application start and handed to whatever needs it; cart and wishlist react
// to login/logout through OnChange rather than any ambient global.
type Store struct {
	mu        sync.Mutex
	api       API
	storage   storage.Store
	logger    *zap.Logger
	user      *api.User
	token     string
	listeners []func(*api.User)
}

type Deps struct {
	API     API
	Storage storage.Store
	Logger  *zap.Logger
}

func NewStore(deps Deps) *Store {
	if deps.API == nil {
		panic("session: api cannot be nil")
	}
	if deps.Storage == nil {
		panic("session: storage cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Store{
		api:     deps.API,
		storage: deps.Storage,
		logger:  deps.Logger,
	}
}

// OnChange registers a listener invoked with the new user after every session
// transition (nil on logout). Registration happens during wiring, before any
// login can run.
func (s *Store) OnChange(fn func(user *api.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) Current() (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.Role == api.RoleAdmin
}

func (s *Store) Login(ctx context.Context, email, password string) Result {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		return Result{Success: false, Message: apperror.UserMessage(err)}
	}

	s.establish(ctx, resp)
	return Result{Success: true, Message: "Logged in successfully", User: &resp.User}
}

func (s *Store) Register(ctx context.Context, name, email, password string) Result {
	resp, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		s.logger.Warn("registration failed", zap.String("email", email), zap.Error(err))
		return Result{Success: false, Message: apperror.UserMessage(err)}
	}

	// A successful registration authenticates immediately.
	s.establish(ctx, resp)
	return Result{Success: true, Message: "Account created successfully", User: &resp.User}
}

// Restore picks up a persisted token at startup and fetches the authoritative
// profile. A token that no longer resolves to a user is treated as no session
// at all: the store fully clears.
func (s *Store) Restore(ctx context.Context) {
	raw, ok, err := s.storage.Get(ctx, tokenKey)
	if err != nil {
		s.logger.Warn("token restore read failed", zap.Error(err))
		return
	}
	if !ok || len(raw) == 0 {
		return
	}

	s.mu.Lock()
	s.token = string(raw)
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Warn("session restore rejected, forcing logout", zap.Error(err))
		s.Logout()
		return
	}

	s.mu.Lock()
	s.user = &user
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(&user)
	}
}

// Logout clears token and user synchronously. No network call. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	wasActive := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if err := s.storage.Delete(context.Background(), tokenKey); err != nil {
		s.logger.Warn("token delete failed", zap.Error(err))
	}

	if !wasActive {
		return
	}
	for _, fn := range listeners {
		fn(nil)
	}
}

// UpdateWalletBalance mutates only the cached user's wallet field; it never
// re-fetches from the server.
func (s *Store) UpdateWalletBalance(balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.user.WalletBalance = balance
}

func (s *Store) establish(ctx context.Context, resp api.AuthResponse) {
	s.mu.Lock()
	s.token = resp.Token
	user := resp.User
	s.user = &user
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if err := s.storage.Set(ctx, tokenKey, []byte(resp.Token)); err != nil {
		s.logger.Warn("token persist failed", zap.Error(err))
	}

	for _, fn := range listeners {
		fn(&user)
	}
}

func (s *Store) snapshotListeners() []func(*api.User) {
	out := make([]func(*api.User), len(s.listeners))
	copy(out, s.listeners)
	return out
}
