package wishlist

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/apperror"
)

// API is the slice of the backend contract the wishlist store depends on.
// Every mutation response is the new authoritative full list.
type API interface {
	Wishlist(ctx context.Context) ([]api.WishlistEntry, error)
	WishlistAdd(ctx context.Context, productID string) ([]api.WishlistEntry, error)
	WishlistRemove(ctx context.Context, productID string) ([]api.WishlistEntry, error)
}

type Result struct {
	Success bool
	Message string
}

// Store maintains the signed-in user's saved products. The server is the
// source of truth: local state is always a whole-list replacement, never a
// patch. A monotonic sequence counter enforces the last-response-wins rule:
// a response from a superseded request is discarded instead of clobbering
// newer state.
type Store struct {
	mu      sync.Mutex
	api     API
	logger  *zap.Logger
	entries []api.WishlistEntry
	enabled bool
	seq     uint64
}

func NewStore(a API, logger *zap.Logger) *Store {
	if a == nil {
		panic("wishlist: api cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{api: a, logger: logger}
}

// HandleSessionChange is wired to the session store's OnChange: a login loads
// the remote list once, a logout forces the list empty without any remote
// call.
func (s *Store) HandleSessionChange(ctx context.Context, user *api.User) {
	if user == nil {
		s.mu.Lock()
		s.enabled = false
		s.entries = nil
		s.seq++ // in-flight responses for the old user are now stale
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
	s.Load(ctx)
}

// Load fetches the full wishlist and replaces local state. Failure leaves an
// empty list and is logged, not surfaced: callers of this internal routine
// never see an error.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return
	}
	s.seq++
	mySeq := s.seq
	s.mu.Unlock()

	entries, err := s.api.Wishlist(ctx)
	if err != nil {
		s.logger.Warn("wishlist load failed", zap.Error(err))
		entries = nil
	}
	s.apply(mySeq, entries)
}

func (s *Store) Add(ctx context.Context, productID string) Result {
	return s.mutate(ctx, productID, s.api.WishlistAdd, "Added to wishlist")
}

func (s *Store) Remove(ctx context.Context, productID string) Result {
	return s.mutate(ctx, productID, s.api.WishlistRemove, "Removed from wishlist")
}

// Toggle dispatches to add or remove based on current membership.
func (s *Store) Toggle(ctx context.Context, productID string) Result {
	if s.Contains(productID) {
		return s.Remove(ctx, productID)
	}
	return s.Add(ctx, productID)
}

// Contains reports membership. Entries are normalized at the API boundary so
// a populated product object and a bare id are the same identity here.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *Store) Entries() []api.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.WishlistEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) mutate(
	ctx context.Context,
	productID string,
	call func(context.Context, string) ([]api.WishlistEntry, error),
	successMessage string,
) Result {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return Result{Success: false, Message: "Please sign in to use the wishlist"}
	}
	s.seq++
	mySeq := s.seq
	s.mu.Unlock()

	entries, err := call(ctx, productID)
	if err != nil {
		s.logger.Warn("wishlist update failed", zap.String("product_id", productID), zap.Error(err))
		return Result{Success: false, Message: apperror.UserMessage(err)}
	}

	s.apply(mySeq, entries)
	return Result{Success: true, Message: successMessage}
}

// apply installs a response only if no later request has started since.
func (s *Store) apply(seq uint64, entries []api.WishlistEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq || !s.enabled {
		s.logger.Debug("discarding superseded wishlist response", zap.Uint64("seq", seq))
		return
	}
	s.entries = entries
}
