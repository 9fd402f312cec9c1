package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-printshop-storefront/internal/api"
	"go-printshop-storefront/internal/storage"
)

// guestKey namespaces the cart when nobody is signed in. A user's persisted
// cart is never deleted by somebody else logging in or out; only the visible
// namespace switches.
const guestKey = "guest"

// Item is one cart row: a product snapshot plus the requested quantity.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

// Store maintains the current user's cart. In-memory state is the truth;
// every mutation writes a JSON snapshot to durable storage under the active
// namespace so the cart survives restarts.
type Store struct {
	mu      sync.Mutex
	items   []Item
	userKey string
	storage storage.Store
	logger  *zap.Logger
}

func NewStore(st storage.Store, logger *zap.Logger) *Store {
	if st == nil {
		panic("cart: storage cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		userKey: guestKey,
		storage: st,
		logger:  logger,
	}
	s.mu.Lock()
	s.reload(context.Background())
	s.mu.Unlock()
	return s
}

// SetUser switches the visible cart to the given user's namespace, replacing
// in-memory contents with whatever is persisted there. An empty id selects
// the guest namespace.
func (s *Store) SetUser(ctx context.Context, userID string) {
	key := guestKey
	if userID != "" {
		key = userID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.userKey {
		return
	}
	s.userKey = key
	s.reload(ctx)
}

// Add merges into an existing line item when the product is already present,
// incrementing its quantity; otherwise it appends a new line item. Snapshots
// of other rows are never touched.
func (s *Store) Add(ctx context.Context, p api.Product, qty int64) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == p.ID {
			s.items[i].Quantity += qty
			s.persist(ctx)
			return
		}
	}

	s.items = append(s.items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
		ImageURL:  p.ImageURL,
	})
	s.persist(ctx)
}

// Remove drops the line item with that product id; absent ids are a no-op.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, productID)
}

// SetQuantity sets the item's quantity. Anything below 1 behaves exactly like
// Remove.
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 1 {
		s.removeLocked(ctx, productID)
		return
	}

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = qty
			s.persist(ctx)
			return
		}
	}
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist(ctx)
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total recomputes the sum of unit price times quantity on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total
}

// Count is the total quantity across all line items, distinct from the number
// of line items.
func (s *Store) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) removeLocked(ctx context.Context, productID string) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

func (s *Store) storageKey() string {
	return "cart_" + s.userKey
}

func (s *Store) reload(ctx context.Context) {
	s.items = nil

	raw, ok, err := s.storage.Get(ctx, s.storageKey())
	if err != nil {
		s.logger.Warn("cart load failed", zap.String("key", s.storageKey()), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("cart decode failed, starting empty", zap.String("key", s.storageKey()), zap.Error(err))
		return
	}
	s.items = items
}

// persist is best-effort: storage trouble keeps the in-memory cart intact and
// is only logged.
func (s *Store) persist(ctx context.Context) {
	raw, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Warn("cart encode failed", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, s.storageKey(), raw); err != nil {
		s.logger.Warn("cart persist failed", zap.String("key", s.storageKey()), zap.Error(err))
	}
}
